package consoleapi

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"github.com/brandyscotchland/timminet/session"
)

func registerAuth(r fiber.Router, d Deps) {
	g := r.Group("/auth")

	type loginReq struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	g.Post("/login", func(c *fiber.Ctx) error {
		var req loginReq
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid body")
		}
		req.Username = strings.TrimSpace(req.Username)
		if req.Username == "" || req.Password == "" {
			return fiber.NewError(fiber.StatusBadRequest, "username and password are required")
		}

		acct, err := d.Auth.Authenticate(req.Username, req.Password)
		if err != nil {
			return err
		}
		if acct == nil {
			return session.UnauthenticatedError("invalid credentials")
		}
		if !acct.IsActive {
			return session.ForbiddenError("account is disabled")
		}
		if err = d.Sessions.Login(c, acct); err != nil {
			return err
		}
		log.WithField("username", acct.Username).Info("operator logged in")
		return c.JSON(fiber.Map{"message": "login successful", "user": acct})
	})

	g.Post("/logout", func(c *fiber.Ctx) error {
		if err := d.Sessions.Logout(c); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"message": "logout successful"})
	})

	g.Get("/me", d.withSession, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"user": currentAccount(c)})
	})

	type changePasswordReq struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	g.Post("/change-password", d.withSession, func(c *fiber.Ctx) error {
		var req changePasswordReq
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid body")
		}
		if req.CurrentPassword == "" || req.NewPassword == "" {
			return fiber.NewError(fiber.StatusBadRequest, "current and new passwords are required")
		}
		if err := d.Auth.ChangePassword(
			currentAccount(c).Username, req.CurrentPassword, req.NewPassword,
		); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"message": "password changed successfully"})
	})
}
