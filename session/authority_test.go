package session

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brandyscotchland/timminet/storage/model"
)

// fakeAccounts serves a fixed table; findErr, when set, makes every Find
// fail with it.
type fakeAccounts struct {
	accounts map[string]model.Account
	findErr  error
}

func (f *fakeAccounts) Load() (map[string]model.Account, error) {
	return f.accounts, nil
}

func (f *fakeAccounts) Find(username string) (*model.Account, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	a, ok := f.accounts[username]
	if !ok {
		return nil, model.NotFoundErrorFmt("account not found: %s", username)
	}
	return &a, nil
}

func (f *fakeAccounts) Put(acct model.Account) error {
	f.accounts[acct.Username] = acct
	return nil
}

func (f *fakeAccounts) Delete(username string) error {
	delete(f.accounts, username)
	return nil
}

func (f *fakeAccounts) Update(username string, mutate func(*model.Account) error) error {
	a, ok := f.accounts[username]
	if !ok {
		return model.NotFoundErrorFmt("account not found: %s", username)
	}
	if err := mutate(&a); err != nil {
		return err
	}
	f.accounts[username] = a
	return nil
}

// newGuardedApp mounts a login route and a RequireSession-guarded route,
// translating the guard's error taxonomy into statuses the assertions
// can read.
func newGuardedApp(accounts *fakeAccounts) *fiber.App {
	authority := NewAuthority(accounts, Config{})
	app := fiber.New(
		fiber.Config{
			ErrorHandler: func(c *fiber.Ctx, err error) error {
				var (
					unauthenticated UnauthenticatedError
					storageFailed   *model.StorageError
				)
				switch {
				case errors.As(err, &unauthenticated):
					return c.SendStatus(fiber.StatusUnauthorized)
				case errors.As(err, &storageFailed):
					return c.SendStatus(fiber.StatusInternalServerError)
				default:
					return c.SendStatus(fiber.StatusTeapot)
				}
			},
		},
	)
	app.Post("/login/:username", func(c *fiber.Ctx) error {
		acct, err := accounts.Find(c.Params("username"))
		if err != nil {
			return err
		}
		return authority.Login(c, acct)
	})
	app.Get("/me", func(c *fiber.Ctx) error {
		acct, err := authority.RequireSession(c)
		if err != nil {
			return err
		}
		return c.JSON(acct)
	})
	return app
}

func loginCookies(t *testing.T, app *fiber.App, username string) []*http.Cookie {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/login/"+username, nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cookies := resp.Cookies()
	require.NotEmpty(t, cookies)
	return cookies
}

func guardedRequest(t *testing.T, app *fiber.App, cookies []*http.Cookie) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestRequireSessionWithoutCookie(t *testing.T) {
	app := newGuardedApp(&fakeAccounts{accounts: map[string]model.Account{}})
	assert.Equal(t, http.StatusUnauthorized, guardedRequest(t, app, nil))
}

func TestRequireSessionDeletedAccount(t *testing.T) {
	accounts := &fakeAccounts{accounts: map[string]model.Account{
		"alice": {Username: "alice", IsActive: true, Role: model.RoleUser},
	}}
	app := newGuardedApp(accounts)
	cookies := loginCookies(t, app, "alice")
	require.Equal(t, http.StatusOK, guardedRequest(t, app, cookies))

	require.NoError(t, accounts.Delete("alice"))
	assert.Equal(t, http.StatusUnauthorized, guardedRequest(t, app, cookies))

	// The stale session was destroyed, so restoring the account does not
	// revive it.
	require.NoError(t, accounts.Put(model.Account{Username: "alice", IsActive: true}))
	assert.Equal(t, http.StatusUnauthorized, guardedRequest(t, app, cookies))
}

func TestRequireSessionDeactivatedAccount(t *testing.T) {
	accounts := &fakeAccounts{accounts: map[string]model.Account{
		"alice": {Username: "alice", IsActive: true, Role: model.RoleUser},
	}}
	app := newGuardedApp(accounts)
	cookies := loginCookies(t, app, "alice")

	require.NoError(
		t, accounts.Update(
			"alice", func(a *model.Account) error {
				a.IsActive = false
				return nil
			},
		),
	)
	assert.Equal(t, http.StatusUnauthorized, guardedRequest(t, app, cookies))
}

// An unreadable account table is a server-side failure, not an
// authentication verdict: the guard must surface the storage error and
// must not discard the session.
func TestRequireSessionStorageFailure(t *testing.T) {
	accounts := &fakeAccounts{accounts: map[string]model.Account{
		"alice": {Username: "alice", IsActive: true, Role: model.RoleUser},
	}}
	app := newGuardedApp(accounts)
	cookies := loginCookies(t, app, "alice")

	accounts.findErr = model.StorageFailure(errors.New("disk gone"), "failed to read account table")
	assert.Equal(t, http.StatusInternalServerError, guardedRequest(t, app, cookies))

	// Once the table is readable again the same session still works.
	accounts.findErr = nil
	assert.Equal(t, http.StatusOK, guardedRequest(t, app, cookies))
}
