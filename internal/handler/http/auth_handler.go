package httphandler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lllypuk/reviewguard/internal/infrastructure/httpserver"
	"github.com/lllypuk/reviewguard/internal/middleware"
)

// TokenRevoker revokes tokens by their jti until they would have expired anyway.
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
}

// MeResponse describes the authenticated caller.
type MeResponse struct {
	Identity  string `json:"identity"`
	Subject   string `json:"subject"`
	ExpiresAt string `json:"expires_at,omitempty"`
}

// AuthHandler handles session endpoints for already issued tokens.
type AuthHandler struct {
	revoker TokenRevoker
	now     func() time.Time
}

// NewAuthHandler creates a new AuthHandler. A nil revoker disables logout.
func NewAuthHandler(revoker TokenRevoker) *AuthHandler {
	return &AuthHandler{
		revoker: revoker,
		now:     time.Now,
	}
}

// RegisterRoutes registers auth routes with the router.
func (h *AuthHandler) RegisterRoutes(r *httpserver.Router) {
	r.Auth().GET("/auth/me", h.Me)
	if h.revoker != nil {
		r.Auth().POST("/auth/logout", h.Logout)
	}
}

// Me handles GET /api/v1/auth/me.
func (h *AuthHandler) Me(c echo.Context) error {
	resp := MeResponse{
		Identity: middleware.GetIdentity(c),
		Subject:  middleware.GetSubject(c),
	}
	if exp := middleware.GetTokenExpiry(c); !exp.IsZero() {
		resp.ExpiresAt = exp.UTC().Format(time.RFC3339)
	}
	return httpserver.RespondOK(c, resp)
}

// Logout handles POST /api/v1/auth/logout.
// The presented token stays revoked for the rest of its lifetime.
func (h *AuthHandler) Logout(c echo.Context) error {
	tokenID := middleware.GetTokenID(c)
	if tokenID == "" {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "TOKEN_NOT_REVOCABLE", "token has no id and cannot be revoked")
	}

	ttl := middleware.GetTokenExpiry(c).Sub(h.now())
	if ttl <= 0 {
		return httpserver.RespondNoContent(c)
	}

	if err := h.revoker.Revoke(c.Request().Context(), tokenID, ttl); err != nil {
		return httpserver.RespondErrorWithCode(
			c, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "logout temporarily unavailable")
	}

	return httpserver.RespondNoContent(c)
}
