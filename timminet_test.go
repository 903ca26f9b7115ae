package timminet

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/brandyscotchland/timminet/api/consoleapi"
	"github.com/brandyscotchland/timminet/auth"
	"github.com/brandyscotchland/timminet/firewall"
	"github.com/brandyscotchland/timminet/hostexec"
	"github.com/brandyscotchland/timminet/hostinfo"
	"github.com/brandyscotchland/timminet/procs"
	"github.com/brandyscotchland/timminet/session"
	"github.com/brandyscotchland/timminet/storage"
	"github.com/brandyscotchland/timminet/storage/model"
)

const testPassword = "Valid1Password!"

type scriptedRunner struct {
	calls  [][]string
	stdout string
}

func (f *scriptedRunner) Run(_ context.Context, name string, args ...string) (hostexec.Result, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	return hostexec.Result{Stdout: f.stdout}, nil
}

type scriptedLister struct {
	infos []procs.Info
}

func (f *scriptedLister) Snapshot(context.Context) ([]procs.Info, error) {
	return append([]procs.Info(nil), f.infos...), nil
}

func (f *scriptedLister) Exists(_ context.Context, pid int32) (bool, error) {
	for _, p := range f.infos {
		if p.Pid == pid {
			return true, nil
		}
	}
	return false, nil
}

type testConsole struct {
	console *Console
	svc     *auth.Service
	runner  *scriptedRunner
}

func newTestConsole(t *testing.T) *testConsole {
	t.Helper()
	store, err := storage.NewFileAccountStorage(t.TempDir())
	require.NoError(t, err)
	svc, err := auth.NewService(store, auth.PasswordPolicy{HashCost: bcrypt.MinCost})
	require.NoError(t, err)

	runner := &scriptedRunner{stdout: "Status: active\n"}
	lister := &scriptedLister{
		infos: []procs.Info{
			{Pid: 1, Name: "systemd", User: "root"},
			{Pid: 100, Name: "nginx", User: "www-data", CPU: 1.5},
		},
	}
	console := NewConsole(
		ServerConf{}, consoleapi.Deps{
			Accounts: store,
			Auth:     svc,
			Sessions: session.NewAuthority(store, session.Config{}),
			Firewall: firewall.NewManager(runner),
			Procs:    procs.NewManager(lister, runner),
			Host:     hostinfo.NewCollector(runner),
		},
	)
	return &testConsole{console: console, svc: svc, runner: runner}
}

func (tc *testConsole) request(
	t *testing.T, method, path string, body any, cookies []*http.Cookie,
) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp, err := tc.console.server.Test(req, -1)
	require.NoError(t, err)

	var decoded map[string]any
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(data) > 0 {
		_ = json.Unmarshal(data, &decoded)
	}
	return resp, decoded
}

func (tc *testConsole) login(t *testing.T, username, password string) []*http.Cookie {
	t.Helper()
	resp, _ := tc.request(
		t, http.MethodPost, "/api/auth/login",
		map[string]string{"username": username, "password": password}, nil,
	)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cookies := resp.Cookies()
	require.NotEmpty(t, cookies)
	return cookies
}

func TestHealthEndpoint(t *testing.T) {
	tc := newTestConsole(t)
	resp, body := tc.request(t, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}

func TestLoginFlow(t *testing.T) {
	tc := newTestConsole(t)
	_, err := tc.svc.Create("admin", testPassword, model.RoleAdmin)
	require.NoError(t, err)

	resp, body := tc.request(
		t, http.MethodPost, "/api/auth/login",
		map[string]string{"username": "admin", "password": "Wrong1Password!"}, nil,
	)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "unauthenticated", body["error"])

	resp, _ = tc.request(
		t, http.MethodPost, "/api/auth/login",
		map[string]string{"username": "", "password": "x"}, nil,
	)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	cookies := tc.login(t, "admin", testPassword)

	resp, body = tc.request(t, http.MethodGet, "/api/auth/me", nil, cookies)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	user, ok := body["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "admin", user["username"])
	assert.NotContains(t, user, "PasswordHash")
	assert.NotContains(t, user, "password_hash")

	resp, _ = tc.request(t, http.MethodPost, "/api/auth/logout", nil, cookies)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = tc.request(t, http.MethodGet, "/api/auth/me", nil, cookies)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRequestsWithoutSession(t *testing.T) {
	tc := newTestConsole(t)
	for _, path := range []string{
		"/api/auth/me",
		"/api/firewall/status",
		"/api/processes",
		"/api/accounts",
	} {
		resp, body := tc.request(t, http.MethodGet, path, nil, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
		assert.Equal(t, "unauthenticated", body["error"], path)
	}
}

func TestLockoutViaAPI(t *testing.T) {
	tc := newTestConsole(t)
	tc.svc.MaxAttempts = 2
	_, err := tc.svc.Create("admin", testPassword, model.RoleAdmin)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		resp, _ := tc.request(
			t, http.MethodPost, "/api/auth/login",
			map[string]string{"username": "admin", "password": "Wrong1Password!"}, nil,
		)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}

	// Locked now; even the correct password is refused.
	resp, body := tc.request(
		t, http.MethodPost, "/api/auth/login",
		map[string]string{"username": "admin", "password": testPassword}, nil,
	)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "account_locked", body["error"])
}

func TestRoleGate(t *testing.T) {
	tc := newTestConsole(t)
	_, err := tc.svc.Create("viewer", testPassword, model.RoleUser)
	require.NoError(t, err)
	cookies := tc.login(t, "viewer", testPassword)

	// Read access works for any authenticated operator.
	resp, body := tc.request(t, http.MethodGet, "/api/firewall/status", nil, cookies)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["active"])

	resp, _ = tc.request(t, http.MethodGet, "/api/processes", nil, cookies)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Mutations and account administration require the admin role.
	for _, probe := range []struct{ method, path string }{
		{http.MethodPost, "/api/firewall/enable"},
		{http.MethodPost, "/api/firewall/allow"},
		{http.MethodDelete, "/api/firewall/rules/1"},
		{http.MethodPost, "/api/processes/100/kill"},
		{http.MethodGet, "/api/accounts"},
	} {
		resp, body := tc.request(t, probe.method, probe.path, nil, cookies)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode, probe.path)
		assert.Equal(t, "forbidden", body["error"], probe.path)
	}
}

func TestAccountAdministration(t *testing.T) {
	tc := newTestConsole(t)
	_, err := tc.svc.Create("admin", testPassword, model.RoleAdmin)
	require.NoError(t, err)
	cookies := tc.login(t, "admin", testPassword)

	resp, _ := tc.request(
		t, http.MethodPost, "/api/accounts",
		map[string]string{"username": "bob", "password": testPassword, "role": "user"}, cookies,
	)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := tc.request(
		t, http.MethodPost, "/api/accounts",
		map[string]string{"username": "bob", "password": testPassword}, cookies,
	)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "duplicate_account", body["error"])

	resp, body = tc.request(
		t, http.MethodPost, "/api/accounts",
		map[string]string{"username": "carol", "password": "weak"}, cookies,
	)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "weak_password", body["error"])

	// Self-modification and self-deletion are refused.
	resp, _ = tc.request(
		t, http.MethodPut, "/api/accounts/admin",
		map[string]any{"is_active": false}, cookies,
	)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp, _ = tc.request(t, http.MethodDelete, "/api/accounts/admin", nil, cookies)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Deactivating another account kills its future sessions.
	resp, _ = tc.request(
		t, http.MethodPut, "/api/accounts/bob",
		map[string]any{"is_active": false}, cookies,
	)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, body = tc.request(
		t, http.MethodPost, "/api/auth/login",
		map[string]string{"username": "bob", "password": testPassword}, nil,
	)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "forbidden", body["error"])

	resp, _ = tc.request(t, http.MethodDelete, "/api/accounts/bob", nil, cookies)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, body = tc.request(t, http.MethodDelete, "/api/accounts/bob", nil, cookies)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "not_found", body["error"])
}

func TestKillInitRefusedViaAPI(t *testing.T) {
	tc := newTestConsole(t)
	_, err := tc.svc.Create("admin", testPassword, model.RoleAdmin)
	require.NoError(t, err)
	cookies := tc.login(t, "admin", testPassword)

	resp, body := tc.request(t, http.MethodPost, "/api/processes/1/kill", nil, cookies)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "forbidden_target", body["error"])

	resp, body = tc.request(
		t, http.MethodPost, "/api/processes/100/kill",
		map[string]string{"signal": "SEGV"}, cookies,
	)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid_input", body["error"])

	resp, body = tc.request(t, http.MethodPost, "/api/processes/100/kill", nil, cookies)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "TERM", body["signal"])
}

func TestChangePasswordViaAPI(t *testing.T) {
	tc := newTestConsole(t)
	_, err := tc.svc.Create("admin", testPassword, model.RoleAdmin)
	require.NoError(t, err)
	cookies := tc.login(t, "admin", testPassword)

	resp, body := tc.request(
		t, http.MethodPost, "/api/auth/change-password",
		map[string]string{"current_password": "Wrong1Password!", "new_password": "Fresh1Password!"}, cookies,
	)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "unauthenticated", body["error"])

	resp, _ = tc.request(
		t, http.MethodPost, "/api/auth/change-password",
		map[string]string{"current_password": testPassword, "new_password": "Fresh1Password!"}, cookies,
	)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	tc.login(t, "admin", "Fresh1Password!")
}
