package appcore

import (
	"fmt"
	"unicode/utf8"
)

// ValidateRequired checks that the string is not empty.
func ValidateRequired(field, value string) error {
	if value == "" {
		return NewValidationError(field, "is required")
	}
	return nil
}

// ValidateMaxLength checks the maximum length in runes.
func ValidateMaxLength(field, value string, maxLength int) error {
	if utf8.RuneCountInString(value) > maxLength {
		return NewValidationError(field, fmt.Sprintf("must be at most %d characters", maxLength))
	}
	return nil
}

// ValidatePositive checks that the number is positive.
func ValidatePositive(field string, value int) error {
	if value <= 0 {
		return NewValidationError(field, "must be positive")
	}
	return nil
}
