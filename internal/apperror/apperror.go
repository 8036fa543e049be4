// Package apperror defines the domain error kinds shared across the
// application. Services and repositories return these; the HTTP layer maps
// them to status codes. Sentinel errors support errors.Is checks through the
// AppError wrapper's Unwrap.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrDuplicateEmail     = errors.New("email already exists")
	ErrValidation         = errors.New("validation failed")
	ErrForbidden          = errors.New("forbidden")
	ErrIndexNotConfigured = errors.New("index not configured")

	// ErrStoreUnavailable marks transient backing-store failures. Callers
	// may retry with backoff; nothing in this module retries internally.
	ErrStoreUnavailable = errors.New("backing store unavailable")

	// ErrStoreRejected marks non-retryable backing-store failures
	// (malformed expressions, missing tables, permission errors).
	ErrStoreRejected = errors.New("backing store rejected request")
)

type AppError struct {
	Err     error  // sentinel identifying the error kind
	Message string // human-readable message
	Field   string // optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func DuplicateUsername(username string) *AppError {
	return &AppError{
		Err:     ErrDuplicateUsername,
		Message: fmt.Sprintf("username %q is already taken", username),
		Field:   "username",
	}
}

func DuplicateEmail(email string) *AppError {
	return &AppError{
		Err:     ErrDuplicateEmail,
		Message: fmt.Sprintf("email %q is already registered", email),
		Field:   "email",
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

func IndexNotConfigured(table, index string) *AppError {
	return &AppError{
		Err:     ErrIndexNotConfigured,
		Message: fmt.Sprintf("table %s has no index %q configured", table, index),
	}
}

func StoreUnavailable(op string, cause error) *AppError {
	return &AppError{
		Err:     ErrStoreUnavailable,
		Message: fmt.Sprintf("store %s failed (transient): %v", op, cause),
	}
}

func StoreRejected(op string, cause error) *AppError {
	return &AppError{
		Err:     ErrStoreRejected,
		Message: fmt.Sprintf("store %s rejected: %v", op, cause),
	}
}

// Retryable reports whether err is a transient store failure the caller may
// retry. Only ErrStoreUnavailable qualifies.
func Retryable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}
