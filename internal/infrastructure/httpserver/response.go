package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lllypuk/reviewguard/internal/domain/errs"
)

// Response represents a standard API response.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   *Error `json:"error,omitempty"`
}

// Error represents an error in the API response.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HTTPError interface allows application errors to define their HTTP representation.
// Errors implementing this interface will be automatically mapped to proper HTTP responses.
type HTTPError interface {
	error
	HTTPStatus() int
	HTTPCode() string
	HTTPMessage() string
}

// RespondJSON sends a successful JSON response.
func RespondJSON(c echo.Context, code int, data any) error {
	return c.JSON(code, Response{
		Success: true,
		Data:    data,
	})
}

// RespondOK sends a 200 OK response with data.
func RespondOK(c echo.Context, data any) error {
	return RespondJSON(c, http.StatusOK, data)
}

// RespondCreated sends a 201 Created response with data.
func RespondCreated(c echo.Context, data any) error {
	return RespondJSON(c, http.StatusCreated, data)
}

// RespondNoContent sends a 204 No Content response.
func RespondNoContent(c echo.Context) error {
	return c.NoContent(http.StatusNoContent)
}

// RespondError sends an error JSON response based on the error type.
func RespondError(c echo.Context, err error) error {
	statusCode, apiError := mapError(err)
	return c.JSON(statusCode, Response{
		Success: false,
		Error:   apiError,
	})
}

// RespondErrorWithCode sends an error JSON response with a specific HTTP status code.
func RespondErrorWithCode(c echo.Context, code int, errorCode, message string) error {
	return c.JSON(code, Response{
		Success: false,
		Error: &Error{
			Code:    errorCode,
			Message: message,
		},
	})
}

// mapError maps application and domain errors to HTTP status codes and API errors.
func mapError(err error) (int, *Error) {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.HTTPStatus(), &Error{
			Code:    httpErr.HTTPCode(),
			Message: httpErr.HTTPMessage(),
		}
	}

	switch {
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound, &Error{Code: "NOT_FOUND", Message: "review not found"}
	case errors.Is(err, errs.ErrAlreadyExists):
		return http.StatusConflict, &Error{Code: "ALREADY_EXISTS", Message: "review already exists"}
	case errors.Is(err, errs.ErrInvalidInput):
		return http.StatusBadRequest, &Error{Code: "VALIDATION_ERROR", Message: "invalid input"}
	case errors.Is(err, errs.ErrUnauthorized):
		return http.StatusUnauthorized, &Error{Code: "UNAUTHENTICATED", Message: "authentication required"}
	case errors.Is(err, errs.ErrForbidden):
		return http.StatusForbidden, &Error{Code: "FORBIDDEN", Message: "not allowed"}
	case errors.Is(err, errs.ErrUnavailable):
		return http.StatusServiceUnavailable, &Error{Code: "UNAVAILABLE", Message: "service unavailable"}
	default:
		return http.StatusInternalServerError, &Error{Code: "INTERNAL_ERROR", Message: "internal error"}
	}
}

// ErrorHandler returns an echo.HTTPErrorHandler that renders framework errors
// (unknown routes, wrong methods, oversized bodies) in the API envelope.
func ErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var he *echo.HTTPError
		if errors.As(err, &he) {
			message := http.StatusText(he.Code)
			if m, ok := he.Message.(string); ok && he.Code < http.StatusInternalServerError {
				message = m
			}
			_ = RespondErrorWithCode(c, he.Code, echoErrorCode(he.Code), message)
			return
		}

		status, apiErr := mapError(err)
		if status >= http.StatusInternalServerError {
			logger.ErrorContext(c.Request().Context(), "unhandled error",
				slog.String("error", err.Error()),
				slog.String("path", c.Request().URL.Path),
			)
		}
		_ = c.JSON(status, Response{Success: false, Error: apiErr})
	}
}

func echoErrorCode(status int) string {
	switch status {
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case http.StatusRequestEntityTooLarge:
		return "PAYLOAD_TOO_LARGE"
	case http.StatusUnsupportedMediaType:
		return "UNSUPPORTED_MEDIA_TYPE"
	case http.StatusBadRequest:
		return "BAD_REQUEST"
	default:
		if status >= http.StatusInternalServerError {
			return "INTERNAL_ERROR"
		}
		return "ERROR"
	}
}
