package timminet

import (
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/brandyscotchland/timminet/auth"
	"github.com/brandyscotchland/timminet/hostexec"
	"github.com/brandyscotchland/timminet/session"
	"github.com/brandyscotchland/timminet/storage/model"
)

// handleError is the central fiber ErrorHandler. It maps the error
// taxonomy to HTTP statuses and machine-distinguishable kinds; full
// detail of storage and execution failures stays in the server log, the
// caller only ever sees the kind plus a bounded description.
func handleError(c *fiber.Ctx, err error) error {
	status, kind, description := classifyError(err)
	if status >= fiber.StatusInternalServerError {
		log.WithError(err).WithFields(
			log.Fields{"method": c.Method(), "path": c.Path()},
		).Error("request failed")
	}
	return c.Status(status).JSON(fiber.Map{"error": kind, "error_description": description})
}

func classifyError(err error) (status int, kind, description string) {
	var (
		fiberErr        *fiber.Error
		locked          *auth.AccountLockedError
		weak            auth.WeakPasswordError
		exists          model.AlreadyExistsError
		storeNotFound   model.NotFoundError
		storageFailed   *model.StorageError
		unauthenticated session.UnauthenticatedError
		roleForbidden   session.ForbiddenError
		invalidInput    hostexec.InvalidInputError
		execForbidden   hostexec.ForbiddenError
		forbiddenTarget hostexec.ForbiddenTargetError
		execNotFound    hostexec.NotFoundError
		execFailed      *hostexec.ExecutionError
	)
	switch {
	case errors.As(err, &fiberErr):
		return fiberErr.Code, kindFromStatus(fiberErr.Code), fiberErr.Message
	case errors.As(err, &locked):
		return fiber.StatusForbidden, "account_locked", locked.Error()
	case errors.As(err, &weak):
		return fiber.StatusBadRequest, "weak_password", weak.Error()
	case errors.Is(err, auth.ErrInvalidCredentials):
		return fiber.StatusUnauthorized, "unauthenticated", err.Error()
	case errors.As(err, &exists):
		return fiber.StatusConflict, "duplicate_account", exists.Error()
	case errors.As(err, &storeNotFound):
		return fiber.StatusNotFound, "not_found", storeNotFound.Error()
	case errors.As(err, &unauthenticated):
		return fiber.StatusUnauthorized, "unauthenticated", unauthenticated.Error()
	case errors.As(err, &roleForbidden):
		return fiber.StatusForbidden, "forbidden", roleForbidden.Error()
	case errors.As(err, &invalidInput):
		return fiber.StatusBadRequest, "invalid_input", invalidInput.Error()
	case errors.As(err, &execForbidden):
		return fiber.StatusForbidden, "forbidden", execForbidden.Error()
	case errors.As(err, &forbiddenTarget):
		return fiber.StatusForbidden, "forbidden_target", forbiddenTarget.Error()
	case errors.As(err, &execNotFound):
		return fiber.StatusNotFound, "not_found", execNotFound.Error()
	case errors.As(err, &execFailed):
		description = "command execution failed"
		if execFailed.Timeout {
			description = "command execution timed out"
		}
		return fiber.StatusInternalServerError, "execution_failed", description
	case errors.As(err, &storageFailed):
		return fiber.StatusInternalServerError, "storage_failure", "credential storage unavailable"
	default:
		return fiber.StatusInternalServerError, "server_error", "internal server error"
	}
}

func kindFromStatus(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return "invalid_input"
	case fiber.StatusUnauthorized:
		return "unauthenticated"
	case fiber.StatusForbidden:
		return "forbidden"
	case fiber.StatusNotFound:
		return "not_found"
	case fiber.StatusConflict:
		return "duplicate_account"
	default:
		return "server_error"
	}
}
