// Package session binds successful authentications to server-side
// session identities and exposes the two guards every protected request
// passes through: RequireSession and RequireRole.
package session

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/brandyscotchland/timminet/storage/model"
)

// DefaultLifetime bounds a session when no lifetime is configured. It
// matches the original console's login timeout.
const DefaultLifetime = 30 * time.Minute

const (
	cookieName  = "timminet_session"
	usernameKey = "username"
)

// Config controls session lifetime and cookie attributes.
type Config struct {
	// Lifetime is the idle expiration; zero means DefaultLifetime.
	Lifetime time.Duration
	// CookieSecure marks the session cookie Secure; set when serving TLS.
	CookieSecure bool
	// Storage optionally persists sessions (see NewBadgerStorage); nil
	// keeps them in memory.
	Storage fiber.Storage
}

// Authority owns the session store. Sessions are opaque server-side
// tokens bound to exactly one username; the bound account is re-checked
// against the account store on every guarded request.
type Authority struct {
	store    *session.Store
	accounts model.AccountStore
}

// NewAuthority returns an Authority over the given account store.
func NewAuthority(accounts model.AccountStore, cfg Config) *Authority {
	lifetime := cfg.Lifetime
	if lifetime == 0 {
		lifetime = DefaultLifetime
	}
	return &Authority{
		store: session.New(
			session.Config{
				Expiration:     lifetime,
				KeyLookup:      "cookie:" + cookieName,
				KeyGenerator:   uuid.NewString,
				CookieHTTPOnly: true,
				CookieSameSite: "Strict",
				CookieSecure:   cfg.CookieSecure,
				Storage:        cfg.Storage,
			},
		),
		accounts: accounts,
	}
}

// Login creates a session bound to the authenticated account. The
// session id is regenerated so a pre-login cookie can never be fixated
// onto the new identity.
func (a *Authority) Login(c *fiber.Ctx, acct *model.Account) error {
	sess, err := a.store.Get(c)
	if err != nil {
		return errors.Wrap(err, "failed to open session")
	}
	if err = sess.Regenerate(); err != nil {
		return errors.Wrap(err, "failed to regenerate session")
	}
	sess.Set(usernameKey, acct.Username)
	return errors.Wrap(sess.Save(), "failed to save session")
}

// Logout destroys the session. It succeeds even if the session handle is
// already gone.
func (a *Authority) Logout(c *fiber.Ctx) error {
	sess, err := a.store.Get(c)
	if err != nil {
		return nil
	}
	if err = sess.Destroy(); err != nil {
		log.WithError(err).Debug("session already gone on logout")
	}
	return nil
}

// RequireSession resolves the request's session to its bound account. It
// fails with an UnauthenticatedError when no valid session is present or
// when the bound account has been deleted or deactivated; in the latter
// case the stale session is invalidated as a side effect.
func (a *Authority) RequireSession(c *fiber.Ctx) (*model.Account, error) {
	sess, err := a.store.Get(c)
	if err != nil {
		return nil, UnauthenticatedError("authentication required")
	}
	username, ok := sess.Get(usernameKey).(string)
	if !ok || username == "" {
		return nil, UnauthenticatedError("authentication required")
	}
	acct, err := a.accounts.Find(username)
	if err != nil {
		var notFound model.NotFoundError
		if errors.As(err, &notFound) {
			_ = sess.Destroy()
			return nil, UnauthenticatedError("invalid session")
		}
		// The account table being unreadable is a server-side failure,
		// not an authentication verdict; keep the session intact.
		return nil, err
	}
	if !acct.IsActive {
		_ = sess.Destroy()
		return nil, UnauthenticatedError("invalid session")
	}
	return acct, nil
}

// RequireRole fails with a ForbiddenError unless the identity holds the
// required role.
func (a *Authority) RequireRole(acct *model.Account, role model.Role) error {
	if acct == nil || acct.Role != role {
		return ForbiddenError("admin access required")
	}
	return nil
}
