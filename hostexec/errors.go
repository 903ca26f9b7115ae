package hostexec

import (
	"fmt"
)

// InvalidInputError signals a parameter that failed shape validation
// before any command was built.
type InvalidInputError string

// Error implements the error interface
func (e InvalidInputError) Error() string {
	return string(e)
}

// InvalidInputErrorFmt returns an InvalidInputError from the passed format string and parameters
func InvalidInputErrorFmt(format string, params ...any) InvalidInputError {
	return InvalidInputError(fmt.Sprintf(format, params...))
}

// ForbiddenError signals an OS-level permission denial while running a
// privileged command.
type ForbiddenError string

// Error implements the error interface
func (e ForbiddenError) Error() string {
	return string(e)
}

// ForbiddenTargetError signals an operation against a target that is
// never allowed, such as signaling PID 1.
type ForbiddenTargetError string

// Error implements the error interface
func (e ForbiddenTargetError) Error() string {
	return string(e)
}

// NotFoundError signals that the command's target (a process, a rule)
// does not exist.
type NotFoundError string

// Error implements the error interface
func (e NotFoundError) Error() string {
	return string(e)
}

// NotFoundErrorFmt returns a NotFoundError from the passed format string and parameters
func NotFoundErrorFmt(format string, params ...any) NotFoundError {
	return NotFoundError(fmt.Sprintf(format, params...))
}

// ExecutionError carries the diagnostics of a command failure that is
// not a permission or missing-target condition. Output holds captured
// stderr for server-side logging; it is never forwarded verbatim to
// unauthenticated callers.
type ExecutionError struct {
	Cmd     string
	Output  string
	Timeout bool
}

// Error implements the error interface
func (e *ExecutionError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("command %q timed out", e.Cmd)
	}
	return fmt.Sprintf("command %q failed: %s", e.Cmd, e.Output)
}
