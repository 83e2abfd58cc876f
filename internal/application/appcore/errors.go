package appcore

import (
	"errors"
	"fmt"

	"github.com/lllypuk/reviewguard/internal/domain/errs"
)

// Common application errors
var (
	ErrValidationFailed = errors.New("validation failed")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("forbidden")
	ErrNotFound         = errors.New("resource not found")
	ErrDatabaseError    = errors.New("database error")
)

// ValidationError represents a validation error with context
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// Unwrap lets callers match validation failures with errs.ErrInvalidInput.
func (e ValidationError) Unwrap() error {
	return errs.ErrInvalidInput
}

// NewValidationError creates a ValidationError
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
