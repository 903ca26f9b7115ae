package consoleapi

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"github.com/brandyscotchland/timminet/storage/model"
)

// minUsernameLength is the lower bound on console account names.
const minUsernameLength = 3

func registerAccounts(r fiber.Router, d Deps) {
	g := r.Group("/accounts", d.withSession, d.adminOnly)

	g.Get("/", func(c *fiber.Ctx) error {
		table, err := d.Accounts.Load()
		if err != nil {
			return err
		}
		accounts := make([]model.Account, 0, len(table))
		for _, a := range table {
			accounts = append(accounts, a)
		}
		return c.JSON(fiber.Map{"accounts": accounts})
	})

	type createReq struct {
		Username string     `json:"username"`
		Password string     `json:"password"`
		Role     model.Role `json:"role"`
	}
	g.Post("/", func(c *fiber.Ctx) error {
		var req createReq
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid body")
		}
		req.Username = strings.TrimSpace(req.Username)
		if req.Username == "" || req.Password == "" {
			return fiber.NewError(fiber.StatusBadRequest, "username and password are required")
		}
		if len(req.Username) < minUsernameLength {
			return fiber.NewError(fiber.StatusBadRequest, "username must be at least 3 characters long")
		}
		if req.Role == "" {
			req.Role = model.RoleUser
		}
		if !req.Role.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "invalid role")
		}
		acct, err := d.Auth.Create(req.Username, req.Password, req.Role)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "account created successfully", "user": acct})
	})

	// System accounts and login sessions of the underlying host,
	// registered before the :username routes so the literal paths win.
	g.Get("/system", func(c *fiber.Ctx) error {
		users, err := d.Host.SystemUsers(c.Context())
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"system_users": users, "total": len(users)})
	})

	g.Get("/sessions", func(c *fiber.Ctx) error {
		active, past, err := d.Host.Sessions(c.Context())
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"active_sessions": active, "last_sessions": past})
	})

	type updateReq struct {
		Role     *model.Role `json:"role"`
		IsActive *bool       `json:"is_active"`
	}
	g.Put("/:username", func(c *fiber.Ctx) error {
		username := c.Params("username")
		if username == currentAccount(c).Username {
			return fiber.NewError(fiber.StatusBadRequest, "cannot modify your own account")
		}
		var req updateReq
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid body")
		}
		if req.Role != nil && !req.Role.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "invalid role")
		}
		var updated model.Account
		if err := d.Accounts.Update(
			username, func(a *model.Account) error {
				if req.Role != nil {
					a.Role = *req.Role
				}
				if req.IsActive != nil {
					a.IsActive = *req.IsActive
				}
				updated = *a
				return nil
			},
		); err != nil {
			return err
		}
		log.WithFields(log.Fields{"username": username, "by": currentAccount(c).Username}).
			Info("updated account")
		return c.JSON(fiber.Map{"message": "account updated successfully", "user": updated})
	})

	g.Delete("/:username", func(c *fiber.Ctx) error {
		username := c.Params("username")
		if username == currentAccount(c).Username {
			return fiber.NewError(fiber.StatusBadRequest, "cannot delete your own account")
		}
		if err := d.Accounts.Delete(username); err != nil {
			return err
		}
		log.WithFields(log.Fields{"username": username, "by": currentAccount(c).Username}).
			Info("deleted account")
		return c.JSON(fiber.Map{"message": "account deleted successfully"})
	})

	g.Post("/:username/unlock", func(c *fiber.Ctx) error {
		username := c.Params("username")
		if err := d.Auth.Unlock(username); err != nil {
			return err
		}
		log.WithFields(log.Fields{"username": username, "by": currentAccount(c).Username}).
			Info("unlocked account")
		return c.JSON(fiber.Map{"message": "account unlocked successfully"})
	})
}
