package core

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports that a referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is reserved for a strict-uniqueness mode where a second
	// payment for an occupied week key would be rejected instead of replacing
	// the earlier one. The current upsert policy never returns it.
	ErrConflict = errors.New("conflict")

	// ErrDependency reports that the underlying store is unreachable. Callers
	// surface it without retrying; retry policy belongs to the transport layer.
	ErrDependency = errors.New("store unavailable")
)

// ValidationError reports a missing or malformed input field with enough
// detail for the caller to correct it.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
