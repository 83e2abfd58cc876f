// Package errs holds the sentinel errors shared by the domain and the store adapters.
package errs

import "errors"

var (
	// ErrNotFound is returned when a review does not exist
	ErrNotFound = errors.New("resource not found")

	// ErrAlreadyExists is returned when an insert hits a unique constraint
	ErrAlreadyExists = errors.New("resource already exists")

	// ErrInvalidInput is returned when input data is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized is returned when no caller identity could be resolved
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden is returned when an atomic predicate rejected the caller
	ErrForbidden = errors.New("forbidden")

	// ErrUnavailable is returned when the backing store could not be reached
	ErrUnavailable = errors.New("store unavailable")
)
