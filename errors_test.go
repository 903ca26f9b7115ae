package timminet

import (
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/brandyscotchland/timminet/auth"
	"github.com/brandyscotchland/timminet/hostexec"
	"github.com/brandyscotchland/timminet/session"
	"github.com/brandyscotchland/timminet/storage/model"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		kind   string
	}{
		{"fiber error", fiber.NewError(fiber.StatusBadRequest, "bad"), 400, "invalid_input"},
		{"account locked", &auth.AccountLockedError{Until: time.Now()}, 403, "account_locked"},
		{"weak password", auth.WeakPasswordError("too weak"), 400, "weak_password"},
		{"invalid credentials", auth.ErrInvalidCredentials, 401, "unauthenticated"},
		{"duplicate account", model.AlreadyExistsError("account already exists: a"), 409, "duplicate_account"},
		{"account not found", model.NotFoundError("account not found: a"), 404, "not_found"},
		{"unauthenticated", session.UnauthenticatedError("authentication required"), 401, "unauthenticated"},
		{"role forbidden", session.ForbiddenError("admin access required"), 403, "forbidden"},
		{"invalid input", hostexec.InvalidInputError("invalid port"), 400, "invalid_input"},
		{"os forbidden", hostexec.ForbiddenError("permission denied"), 403, "forbidden"},
		{"forbidden target", hostexec.ForbiddenTargetError("cannot signal the init process"), 403, "forbidden_target"},
		{"process not found", hostexec.NotFoundError("no such process"), 404, "not_found"},
		{"execution failed", &hostexec.ExecutionError{Cmd: "ufw"}, 500, "execution_failed"},
		{"storage failure", model.StorageFailure(errors.New("disk full"), "write failed"), 500, "storage_failure"},
		{"wrapped domain error", errors.Wrap(hostexec.NotFoundError("no such process"), "kill"), 404, "not_found"},
		{"unknown", errors.New("boom"), 500, "server_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, kind, _ := classifyError(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.kind, kind)
		})
	}
}

func TestClassifyErrorHidesInternalDetail(t *testing.T) {
	_, _, desc := classifyError(model.StorageFailure(errors.New("open /var/lib/timminet/users.json: permission denied"), "x"))
	assert.NotContains(t, desc, "users.json")

	_, _, desc = classifyError(&hostexec.ExecutionError{Cmd: "ufw", Timeout: true})
	assert.Contains(t, desc, "timed out")
}
