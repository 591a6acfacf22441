package models

import "errors"

var (
	// ErrNotFound is returned when an article (or admin) does not exist.
	ErrNotFound = errors.New("not found")
	// ErrValidation is matched by every ValidationError via errors.Is.
	ErrValidation = errors.New("validation failed")
)

// ValidationError carries a message that is safe to show to API clients.
type ValidationError struct {
	Message string
}

func NewValidationError(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }
