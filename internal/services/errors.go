package services

import "errors"

// ValidationError carries field-level messages back to the handler layer.
// Nothing has been persisted when one of these is returned.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "validation failed"
}

func newValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

// ErrInvalidCredentials is returned on login when the username is unknown
// or the password does not match; the two cases are not distinguished.
var ErrInvalidCredentials = errors.New("invalid username or password")
