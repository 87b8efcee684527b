package services

import (
	"errors"
	"fmt"
)

var (
	// ErrAccessDenied is returned when the actor's role lacks the capability
	// an operation requires. Nothing is read from or written to the store.
	ErrAccessDenied = errors.New("access denied")

	// ErrNotFound is returned when a referenced record id does not exist.
	ErrNotFound = errors.New("record not found")

	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError reports missing or malformed input. Err holds the
// underlying parse error, if any, so errors.As can reach a
// *hours.FormatError through it.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(field, message string, err error) *ValidationError {
	return &ValidationError{Field: field, Message: message, Err: err}
}
