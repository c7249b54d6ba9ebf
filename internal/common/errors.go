// Package common defines shared constants and sentinel errors used across
// the server layers of garagekeeper. Callers should use errors.Is to match
// these values.
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
	ErrorInternal              = errors.New("internal error")
	ErrorValidation            = errors.New("validation error")
	ErrorInvalidCredentials    = errors.New("invalid credentials")
	ErrorInsufficientPrivilege = errors.New("insufficient privilege")

	// ErrorTokenRejected is the parent of every token rejection reason below.
	ErrorTokenRejected = errors.New("token rejected")

	ErrTokenMissing          = fmt.Errorf("%w: missing", ErrorTokenRejected)
	ErrTokenMalformed        = fmt.Errorf("%w: malformed", ErrorTokenRejected)
	ErrTokenInvalidSignature = fmt.Errorf("%w: invalid signature", ErrorTokenRejected)
	ErrTokenExpired          = fmt.Errorf("%w: expired", ErrorTokenRejected)
)

// ValidationError is a request problem the caller can fix. Message is safe
// to show to end users.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrorValidation
}

// DuplicateError reports a collision on a unique field such as username.
type DuplicateError struct {
	Field string
}

func (e *DuplicateError) Error() string {
	return e.Field + " already exists"
}

func (e *DuplicateError) Unwrap() error {
	return ErrorAlreadyExists
}
