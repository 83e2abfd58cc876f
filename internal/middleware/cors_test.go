package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/lllypuk/reviewguard/internal/middleware"
)

func corsRequest(t *testing.T, mw echo.MiddlewareFunc, method, origin string) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	e.Use(mw)
	e.PATCH("/api/v1/products/reviews", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(method, "/api/v1/products/reviews", nil)
	req.Header.Set(echo.HeaderOrigin, origin)
	if method == http.MethodOptions {
		req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodPatch)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestCORS_Wildcard(t *testing.T) {
	rec := corsRequest(t, middleware.CORS(), http.MethodPatch, "https://shop.example.com")

	assert.Equal(t, "*", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	assert.Empty(t, rec.Header().Get(echo.HeaderAccessControlAllowCredentials))
}

func TestCORS_ExplicitOrigins(t *testing.T) {
	mw := middleware.CORS("https://shop.example.com")

	t.Run("allowed origin", func(t *testing.T) {
		rec := corsRequest(t, mw, http.MethodPatch, "https://shop.example.com")

		assert.Equal(t, "https://shop.example.com", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
		assert.Equal(t, "true", rec.Header().Get(echo.HeaderAccessControlAllowCredentials))
		assert.Contains(t, rec.Header().Get(echo.HeaderAccessControlExposeHeaders), middleware.RequestIDHeader)
	})

	t.Run("foreign origin", func(t *testing.T) {
		rec := corsRequest(t, mw, http.MethodPatch, "https://evil.example.com")

		assert.Empty(t, rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	})
}

func TestCORS_Preflight(t *testing.T) {
	rec := corsRequest(t, middleware.CORS("https://shop.example.com"), http.MethodOptions, "https://shop.example.com")

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderAccessControlAllowMethods), http.MethodPatch)
	assert.Contains(t, rec.Header().Get(echo.HeaderAccessControlAllowHeaders), echo.HeaderAuthorization)
}
