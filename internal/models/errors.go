package models

import (
	"errors"
	"fmt"
)

// ValidationError reports bad input to an operation. The operation is
// aborted and no state is changed.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError builds a ValidationError for field with a formatted message.
func NewValidationError(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is, or wraps, a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IntegrityError reports an item that references a participant missing
// from the roster. It indicates a broken invariant and is never repaired.
type IntegrityError struct {
	ItemID        string
	ParticipantID string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("integrity violation: item %s assigned to unknown participant %s", e.ItemID, e.ParticipantID)
}

// IsIntegrity reports whether err is, or wraps, an IntegrityError.
func IsIntegrity(err error) bool {
	var v *IntegrityError
	return errors.As(err, &v)
}
