// Package errs defines the error taxonomy shared by the store, service and HTTP layers.
// Every typed error unwraps to one of the kind sentinels so callers can branch with errors.Is.
package errs

import (
	"errors"
	"fmt"
)

// Error kinds.
var (
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrStore        = errors.New("store unavailable")
)

// ValidationError reports malformed or missing input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Validation builds a ValidationError for a single field.
func Validation(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// AuthError reports bad credentials or a missing, invalid or expired token.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string { return e.Message }

func (e *AuthError) Unwrap() error { return ErrUnauthorized }

var (
	// ErrInvalidCredentials is returned for both an unknown email and a wrong password.
	ErrInvalidCredentials = &AuthError{Message: "invalid email or password"}
	// ErrMissingToken is returned when no bearer token accompanies a request.
	ErrMissingToken = &AuthError{Message: "authorization header is required"}
	// ErrInvalidToken covers malformed, wrongly signed and expired tokens alike.
	ErrInvalidToken = &AuthError{Message: "invalid or expired token"}
)

// NotFoundError reports a resource that does not exist or is not owned by the caller.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string { return e.Resource + " not found" }

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

var (
	ErrTaskNotFound = &NotFoundError{Resource: "task"}
	ErrUserNotFound = &NotFoundError{Resource: "user"}
)

// StoreError wraps a failure of the underlying persistence layer.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() []error { return []error{ErrStore, e.Err} }

// Store wraps err as a StoreError for operation op. A nil err stays nil.
func Store(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}
