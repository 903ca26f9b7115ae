package consoleapi

import (
	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
)

func registerProcesses(r fiber.Router, d Deps) {
	g := r.Group("/processes", d.withSession)

	g.Get("/", func(c *fiber.Ctx) error {
		list, err := d.Procs.List(c.Context(), c.Query("sort", "cpu"), c.QueryInt("limit"))
		if err != nil {
			return err
		}
		return c.JSON(list)
	})

	// Literal paths before the :pid route so they are not shadowed.
	g.Get("/stats", func(c *fiber.Ctx) error {
		stats, err := d.Procs.Stats(c.Context())
		if err != nil {
			return err
		}
		return c.JSON(stats)
	})

	g.Get("/search/:query", func(c *fiber.Ctx) error {
		res, err := d.Procs.Search(c.Context(), c.Params("query"), c.QueryInt("limit"))
		if err != nil {
			return err
		}
		return c.JSON(res)
	})

	g.Get("/user/:username", func(c *fiber.Ctx) error {
		res, err := d.Procs.ByUser(c.Context(), c.Params("username"))
		if err != nil {
			return err
		}
		return c.JSON(res)
	})

	g.Get("/:pid", func(c *fiber.Ctx) error {
		pid, err := c.ParamsInt("pid")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid pid")
		}
		info, err := d.Procs.Get(c.Context(), int32(pid))
		if err != nil {
			return err
		}
		return c.JSON(info)
	})

	type killReq struct {
		Signal string `json:"signal"`
	}
	g.Post("/:pid/kill", d.adminOnly, func(c *fiber.Ctx) error {
		pid, err := c.ParamsInt("pid")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid pid")
		}
		var req killReq
		// The body is optional; TERM is the default signal.
		_ = c.BodyParser(&req)
		res, err := d.Procs.Kill(c.Context(), int32(pid), req.Signal)
		if err != nil {
			return err
		}
		log.WithFields(log.Fields{"pid": res.Pid, "signal": res.Signal, "by": currentAccount(c).Username}).
			Info("signal delivered to process")
		return c.JSON(fiber.Map{
			"message": "signal sent successfully",
			"pid":     res.Pid,
			"signal":  res.Signal,
		})
	})
}
