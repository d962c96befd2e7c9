package domain

import "fmt"

// ValidationError reports a client input problem. Its message is safe to
// return to the caller verbatim.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NewValidationError builds a ValidationError from a format string.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// MissingField is the validation error for an absent required field.
func MissingField(field string) *ValidationError {
	return NewValidationError("Missing required field: %s", field)
}
