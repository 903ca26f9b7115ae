package auth

import (
	"fmt"
	"time"
)

// AccountLockedError signals that authentication was refused because the
// account's lockout is active. It is returned before any credential
// comparison, so a locked account never leaks whether the supplied
// password was correct.
type AccountLockedError struct {
	Until time.Time
}

// Error implements the error interface
func (e *AccountLockedError) Error() string {
	return fmt.Sprintf("account is temporarily locked until %s", e.Until.Format(time.RFC3339))
}

// WeakPasswordError signals a password rejected by the PasswordPolicy.
type WeakPasswordError string

// Error implements the error interface
func (e WeakPasswordError) Error() string {
	return string(e)
}

// errWeakPassword is the single policy message, matching the rule in
// PasswordPolicy.Validate.
var errWeakPassword = WeakPasswordError(
	"password must be at least 12 characters long and contain uppercase, lowercase, numbers, and symbols",
)

// ErrInvalidCredentials signals that re-authentication with the current
// password failed during a password change.
var ErrInvalidCredentials = fmt.Errorf("current password is incorrect")
