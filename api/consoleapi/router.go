// Package consoleapi mounts the console's HTTP surface: authentication,
// account administration and the privileged host-control endpoints.
package consoleapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/brandyscotchland/timminet/auth"
	"github.com/brandyscotchland/timminet/firewall"
	"github.com/brandyscotchland/timminet/hostinfo"
	"github.com/brandyscotchland/timminet/procs"
	"github.com/brandyscotchland/timminet/session"
	"github.com/brandyscotchland/timminet/storage/model"
)

// accountLocal is the fiber locals key under which the guards store the
// resolved account.
const accountLocal = "account"

// Deps bundles what the handlers operate on.
type Deps struct {
	Accounts model.AccountStore
	Auth     *auth.Service
	Sessions *session.Authority
	Firewall *firewall.Manager
	Procs    *procs.Manager
	Host     *hostinfo.Collector
}

// Register mounts all console API routes under the provided group.
func Register(r fiber.Router, d Deps) {
	registerAuth(r, d)
	registerAccounts(r, d)
	registerFirewall(r, d)
	registerProcesses(r, d)
}

// withSession resolves the session to its account and stores it in the
// request locals. Requests without a valid session never reach the
// handler.
func (d Deps) withSession(c *fiber.Ctx) error {
	acct, err := d.Sessions.RequireSession(c)
	if err != nil {
		return err
	}
	c.Locals(accountLocal, acct)
	return c.Next()
}

// adminOnly requires the session account to hold the admin role; it must
// run after withSession.
func (d Deps) adminOnly(c *fiber.Ctx) error {
	if err := d.Sessions.RequireRole(currentAccount(c), model.RoleAdmin); err != nil {
		return err
	}
	return c.Next()
}

func currentAccount(c *fiber.Ctx) *model.Account {
	acct, _ := c.Locals(accountLocal).(*model.Account)
	return acct
}
