package consoleapi

import (
	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
)

func registerFirewall(r fiber.Router, d Deps) {
	g := r.Group("/firewall", d.withSession)

	g.Get("/status", func(c *fiber.Ctx) error {
		status, err := d.Firewall.Status(c.Context())
		if err != nil {
			return err
		}
		return c.JSON(status)
	})

	g.Get("/rules", func(c *fiber.Ctx) error {
		rules, err := d.Firewall.Rules(c.Context())
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"rules": rules})
	})

	g.Get("/logs", func(c *fiber.Ctx) error {
		logs, err := d.Firewall.Logs(c.Context())
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"logs": logs})
	})

	g.Post("/enable", d.adminOnly, func(c *fiber.Ctx) error {
		out, err := d.Firewall.Enable(c.Context())
		if err != nil {
			return err
		}
		log.WithField("by", currentAccount(c).Username).Info("firewall enabled")
		return c.JSON(fiber.Map{"message": "firewall enabled successfully", "output": out.Output})
	})

	g.Post("/disable", d.adminOnly, func(c *fiber.Ctx) error {
		out, err := d.Firewall.Disable(c.Context())
		if err != nil {
			return err
		}
		log.WithField("by", currentAccount(c).Username).Info("firewall disabled")
		return c.JSON(fiber.Map{"message": "firewall disabled successfully", "output": out.Output})
	})

	g.Post("/reset", d.adminOnly, func(c *fiber.Ctx) error {
		out, err := d.Firewall.Reset(c.Context())
		if err != nil {
			return err
		}
		log.WithField("by", currentAccount(c).Username).Warn("firewall reset")
		return c.JSON(fiber.Map{"message": "firewall reset successfully", "output": out.Output})
	})

	type ruleReq struct {
		Port     string `json:"port"`
		Protocol string `json:"protocol"`
		From     string `json:"from"`
	}
	g.Post("/allow", d.adminOnly, func(c *fiber.Ctx) error {
		var req ruleReq
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid body")
		}
		if req.Port == "" {
			return fiber.NewError(fiber.StatusBadRequest, "port is required")
		}
		out, err := d.Firewall.Allow(c.Context(), req.Port, req.Protocol, req.From)
		if err != nil {
			return err
		}
		log.WithFields(log.Fields{"port": req.Port, "by": currentAccount(c).Username}).
			Info("firewall allow rule added")
		return c.JSON(fiber.Map{"message": "rule added successfully", "output": out.Output})
	})

	g.Post("/deny", d.adminOnly, func(c *fiber.Ctx) error {
		var req ruleReq
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid body")
		}
		if req.Port == "" {
			return fiber.NewError(fiber.StatusBadRequest, "port is required")
		}
		out, err := d.Firewall.Deny(c.Context(), req.Port, req.Protocol, req.From)
		if err != nil {
			return err
		}
		log.WithFields(log.Fields{"port": req.Port, "by": currentAccount(c).Username}).
			Info("firewall deny rule added")
		return c.JSON(fiber.Map{"message": "deny rule added successfully", "output": out.Output})
	})

	g.Delete("/rules/:number", d.adminOnly, func(c *fiber.Ctx) error {
		number, err := c.ParamsInt("number")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid rule number")
		}
		out, err := d.Firewall.DeleteRule(c.Context(), number)
		if err != nil {
			return err
		}
		log.WithFields(log.Fields{"rule": number, "by": currentAccount(c).Username}).
			Info("firewall rule deleted")
		return c.JSON(fiber.Map{"message": "rule deleted successfully", "output": out.Output})
	})
}
