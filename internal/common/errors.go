// Package common defines shared constants and sentinel errors used across
// the server layers of vidtube. Callers should use errors.Is to match these
// values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorInternal         = errors.New("internal error")
	ErrorUnauthorized     = errors.New("unauthorized")
	ErrorValidation       = errors.New("validation error")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrorTooLarge         = errors.New("request body too large")

	// Token errors. Verification failures are always reported to clients as
	// ErrorUnauthorized; these exist for logs and tests.
	ErrTokenMissing   = errors.New("token missing")
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenMalformed = errors.New("token malformed")

	// ErrRefreshTokenReused means a refresh token was presented that is no
	// longer the principal's current one.
	ErrRefreshTokenReused = errors.New("refresh token reused")
)

// ValidationError reports a missing or malformed input field.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError returns a *ValidationError for field.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Is makes every ValidationError match ErrorValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrorValidation
}

// Unauthorized wraps cause so that it matches both ErrorUnauthorized and cause.
func Unauthorized(cause error) error {
	if cause == nil {
		return ErrorUnauthorized
	}
	return fmt.Errorf("%w: %w", ErrorUnauthorized, cause)
}
