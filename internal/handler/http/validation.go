// Package httphandler holds the echo handlers for the review API.
package httphandler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// requestValidate validates request DTOs through their `validate` tags.
var requestValidate = validator.New(validator.WithRequiredStructEnabled())

// validateRequest returns a client-safe description of the first failed rule,
// or nil when req is valid.
func validateRequest(req any) error {
	err := requestValidate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return errors.New("invalid request")
	}

	fe := fieldErrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s is required", field)
	case "max":
		return fmt.Errorf("%s must be at most %s characters", field, fe.Param())
	case "gte", "min":
		return fmt.Errorf("%s must be at least %s", field, fe.Param())
	case "lte":
		return fmt.Errorf("%s must be at most %s", field, fe.Param())
	default:
		return fmt.Errorf("%s is invalid", field)
	}
}

// requestError is a malformed-request failure that renders through httpserver.RespondError.
type requestError struct {
	code    string
	message string
}

func (e *requestError) Error() string       { return e.message }
func (e *requestError) HTTPStatus() int     { return http.StatusBadRequest }
func (e *requestError) HTTPCode() string    { return e.code }
func (e *requestError) HTTPMessage() string { return e.message }

// ErrInvalidRequestBody is returned when the body cannot be decoded, for
// example when a string field arrives as an object.
var ErrInvalidRequestBody = &requestError{code: "INVALID_REQUEST", message: "invalid request body"}
