package review

import (
	"errors"
	"net/http"

	"github.com/lllypuk/reviewguard/internal/domain/errs"
)

// Kind classifies a review operation failure.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindAuthentication
	KindAuthorization
	KindNotFound
	KindStore
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	case KindStore:
		return "store"
	default:
		return "unknown"
	}
}

// Error is the failure type returned by every review use case.
// It implements httpserver.HTTPError.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

// Unwrap exposes the wrapped cause and the matching errs sentinel.
func (e *Error) Unwrap() []error {
	unwrapped := make([]error, 0, 2) //nolint:mnd // cause + sentinel
	if e.cause != nil {
		unwrapped = append(unwrapped, e.cause)
	}
	if sentinel := e.sentinel(); sentinel != nil {
		unwrapped = append(unwrapped, sentinel)
	}
	return unwrapped
}

func (e *Error) sentinel() error {
	switch e.Kind {
	case KindValidation:
		return errs.ErrInvalidInput
	case KindAuthentication:
		return errs.ErrUnauthorized
	case KindAuthorization:
		return errs.ErrForbidden
	case KindNotFound:
		return errs.ErrNotFound
	case KindStore:
		return errs.ErrUnavailable
	default:
		return nil
	}
}

// HTTPStatus maps the kind to a status code.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// HTTPCode returns the machine-readable error code.
func (e *Error) HTTPCode() string {
	return e.Code
}

// HTTPMessage returns the client-facing message. Store failures never expose
// their cause.
func (e *Error) HTTPMessage() string {
	if e.Kind == KindStore {
		return "internal error"
	}
	return e.Message
}

// IsKind reports whether err is a review *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var reviewErr *Error
	return errors.As(err, &reviewErr) && reviewErr.Kind == kind
}

// NewValidationError creates a validation failure.
func NewValidationError(message string) *Error {
	return &Error{Kind: KindValidation, Code: "VALIDATION_ERROR", Message: message}
}

// NewStoreError wraps a store failure.
func NewStoreError(cause error) *Error {
	return &Error{Kind: KindStore, Code: "STORE_ERROR", Message: "store unavailable", cause: cause}
}

var (
	// ErrUnauthenticated is returned when no caller identity was resolved.
	ErrUnauthenticated = &Error{
		Kind:    KindAuthentication,
		Code:    "UNAUTHORIZED",
		Message: "authentication required",
	}

	// ErrReviewNotFound is returned when the target review does not exist.
	ErrReviewNotFound = &Error{
		Kind:    KindNotFound,
		Code:    "REVIEW_NOT_FOUND",
		Message: "review not found",
	}

	// ErrNotOwner is returned when the ownership predicate matched nothing.
	ErrNotOwner = &Error{
		Kind:    KindAuthorization,
		Code:    "NOT_AUTHOR",
		Message: "only the review author can edit it",
	}

	// ErrAlreadyLiked is returned when the caller is already in the like-set.
	ErrAlreadyLiked = &Error{
		Kind:    KindAuthorization,
		Code:    "ALREADY_LIKED",
		Message: "not allowed to like more than once",
	}

	// ErrInvalidReviewID is returned for missing or malformed review ids.
	ErrInvalidReviewID = &Error{
		Kind:    KindValidation,
		Code:    "INVALID_REVIEW_ID",
		Message: "invalid review id",
	}
)

const (
	// DefaultLimit is the default page size for review listings.
	DefaultLimit = 20
	// MaxLimit caps the page size.
	MaxLimit = 100
)
