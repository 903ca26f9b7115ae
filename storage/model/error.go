package model

import (
	"fmt"

	"github.com/pkg/errors"
)

// NotFoundError is an error signaling that something was not found in the
// account store
type NotFoundError string

// Error implements the error interface
func (e NotFoundError) Error() string {
	return string(e)
}

// NotFoundErrorFmt returns a NotFoundError from the passed format string and parameters
func NotFoundErrorFmt(format string, params ...any) NotFoundError {
	return NotFoundError(fmt.Sprintf(format, params...))
}

// AlreadyExistsError is an error signaling that a record with the same
// key is already present
type AlreadyExistsError string

// Error implements the error interface
func (e AlreadyExistsError) Error() string {
	return string(e)
}

// AlreadyExistsErrorFmt returns an AlreadyExistsError from the passed format string and parameters
func AlreadyExistsErrorFmt(format string, params ...any) AlreadyExistsError {
	return AlreadyExistsError(fmt.Sprintf(format, params...))
}

// StorageError signals that the account table could not be read or
// written. It is surfaced to callers as a fatal condition and never
// retried automatically.
type StorageError struct {
	Err error
}

// Error implements the error interface
func (e *StorageError) Error() string {
	return e.Err.Error()
}

// Unwrap exposes the underlying cause
func (e *StorageError) Unwrap() error {
	return e.Err
}

// StorageFailure wraps err with msg into a StorageError; nil stays nil.
func StorageFailure(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &StorageError{Err: errors.Wrap(err, msg)}
}

// Backends bundles the storage backends used by the console.
type Backends struct {
	Accounts AccountStore
}
