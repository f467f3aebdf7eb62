// Package apperrors defines the error classes resolvers and the gateway share.
package apperrors

import "errors"

var (
	// ErrValidationFailed marks malformed or insufficient input. Nothing was written.
	ErrValidationFailed = errors.New("validation failed")
	// ErrPermissionDenied marks an authenticated caller lacking the required role.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrUnauthenticated marks a request without valid credentials.
	ErrUnauthenticated = errors.New("authentication required")
)

// CustomError carries a client-facing message on top of one of the sentinel errors.
type CustomError struct {
	Err     error
	Message string
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewValidationError returns a validation error with a client-facing message.
func NewValidationError(message string) error {
	return &CustomError{Err: ErrValidationFailed, Message: message}
}

// NewForbiddenError returns a permission error with a client-facing message.
func NewForbiddenError(message string) error {
	return &CustomError{Err: ErrPermissionDenied, Message: message}
}

// NewUnauthenticatedError returns an authentication error with a client-facing message.
func NewUnauthenticatedError(message string) error {
	return &CustomError{Err: ErrUnauthenticated, Message: message}
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidationFailed)
}

// IsForbidden reports whether err is a permission error.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrPermissionDenied)
}

// IsUnauthenticated reports whether err is an authentication error.
func IsUnauthenticated(err error) bool {
	return errors.Is(err, ErrUnauthenticated)
}
