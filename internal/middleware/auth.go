package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lllypuk/reviewguard/internal/application/appcore"
)

// Context keys for authentication data.
type contextKey string

const (
	// ContextKeyIdentity is the context key for the caller identity (the token's email claim).
	ContextKeyIdentity contextKey = "identity"

	// ContextKeySubject is the context key for the token subject.
	ContextKeySubject contextKey = "subject"

	// ContextKeyTokenID is the context key for the token's jti claim.
	ContextKeyTokenID contextKey = "token_id"

	// ContextKeyTokenExpiry is the context key for the token expiration time.
	ContextKeyTokenExpiry contextKey = "token_expiry"
)

// Auth errors.
var (
	ErrMissingAuthHeader = errors.New("missing authorization header")
	ErrInvalidAuthHeader = errors.New("invalid authorization header format")
	ErrInvalidToken      = errors.New("invalid token")
	ErrTokenExpired      = errors.New("token expired")
	ErrMissingIdentity   = errors.New("token carries no identity")
	ErrTokenRevoked      = errors.New("token revoked")
	ErrAuthUnavailable   = errors.New("authentication backend unavailable")
)

// TokenClaims represents the claims extracted from a validated token.
type TokenClaims struct {
	// Subject is the provider's user identifier.
	Subject string

	// Email identifies the caller for authorship and likes.
	Email string

	// TokenID is the jti claim used for revocation.
	TokenID string

	// ExpiresAt is the token expiration time.
	ExpiresAt time.Time
}

// TokenValidator defines the interface for validating bearer tokens.
type TokenValidator interface {
	// ValidateToken validates a token and returns the claims.
	ValidateToken(ctx context.Context, token string) (*TokenClaims, error)
}

// RevocationChecker reports whether a token ID has been revoked.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	// Logger is the structured logger for auth events.
	Logger *slog.Logger

	// TokenValidator validates bearer tokens.
	TokenValidator TokenValidator

	// Revocations is consulted for tokens carrying a jti. Optional.
	Revocations RevocationChecker

	// SkipPaths are paths that don't require authentication.
	SkipPaths []string

	// SessionCookieName is checked when no Authorization header is present.
	SessionCookieName string
}

// DefaultAuthConfig returns an AuthConfig with sensible defaults.
func DefaultAuthConfig() AuthConfig {
	return AuthConfig{
		Logger:    slog.Default(),
		SkipPaths: []string{"/health", "/ready", "/health/details", "/metrics"},
	}
}

// Auth returns an authentication middleware with the given configuration.
// The identity is resolved from the token only and attached to both the echo
// context and the request context.
func Auth(config AuthConfig) echo.MiddlewareFunc {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	skipPaths := make(map[string]struct{}, len(config.SkipPaths))
	for _, path := range config.SkipPaths {
		skipPaths[path] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path

			if _, ok := skipPaths[path]; ok {
				return next(c)
			}

			token, tokenErr := extractTokenFromRequest(c, config)
			if tokenErr != nil {
				return respondAuthError(c, tokenErr)
			}

			if config.TokenValidator == nil {
				config.Logger.Error("token validator not configured")
				return respondAuthError(c, ErrInvalidToken)
			}

			ctx := c.Request().Context()
			claims, validateErr := config.TokenValidator.ValidateToken(ctx, token)
			if validateErr != nil {
				config.Logger.Warn("token validation failed",
					slog.String("error", validateErr.Error()),
					slog.String("path", path),
					slog.String("remote_ip", c.RealIP()),
				)
				return respondAuthError(c, validateErr)
			}

			if claims.Email == "" {
				config.Logger.Warn("token without email claim",
					slog.String("subject", claims.Subject),
					slog.String("path", path),
				)
				return respondAuthError(c, ErrMissingIdentity)
			}

			if revokeErr := checkRevocation(ctx, config, claims); revokeErr != nil {
				return respondAuthError(c, revokeErr)
			}

			enrichContext(c, claims)

			config.Logger.Debug("caller authenticated",
				slog.String("identity", claims.Email),
				slog.String("path", path),
			)

			return next(c)
		}
	}
}

func checkRevocation(ctx context.Context, config AuthConfig, claims *TokenClaims) error {
	if config.Revocations == nil || claims.TokenID == "" {
		return nil
	}

	revoked, err := config.Revocations.IsRevoked(ctx, claims.TokenID)
	if err != nil {
		config.Logger.Error("revocation lookup failed",
			slog.String("error", err.Error()),
			slog.String("token_id", claims.TokenID),
		)
		return ErrAuthUnavailable
	}
	if revoked {
		return ErrTokenRevoked
	}
	return nil
}

// extractTokenFromRequest reads the Authorization header, falling back to the session cookie.
func extractTokenFromRequest(c echo.Context, config AuthConfig) (string, error) {
	if authHeader := c.Request().Header.Get(echo.HeaderAuthorization); authHeader != "" {
		return extractBearerToken(authHeader)
	}

	if config.SessionCookieName != "" {
		cookie, cookieErr := c.Cookie(config.SessionCookieName)
		if cookieErr == nil && cookie.Value != "" {
			return cookie.Value, nil
		}
	}

	return "", ErrMissingAuthHeader
}

// extractBearerToken extracts the token from a Bearer authorization header.
func extractBearerToken(authHeader string) (string, error) {
	const bearerPrefix = "Bearer "
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return "", ErrInvalidAuthHeader
	}

	token := strings.TrimSpace(strings.TrimPrefix(authHeader, bearerPrefix))
	if token == "" {
		return "", ErrInvalidAuthHeader
	}

	return token, nil
}

// enrichContext adds caller information to the echo and request contexts.
func enrichContext(c echo.Context, claims *TokenClaims) {
	c.Set(string(ContextKeyIdentity), claims.Email)
	c.Set(string(ContextKeySubject), claims.Subject)
	c.Set(string(ContextKeyTokenID), claims.TokenID)
	c.Set(string(ContextKeyTokenExpiry), claims.ExpiresAt)

	req := c.Request()
	c.SetRequest(req.WithContext(appcore.WithIdentity(req.Context(), claims.Email)))
}

// respondAuthError sends an authentication error response.
func respondAuthError(c echo.Context, err error) error {
	code := "UNAUTHORIZED"
	message := "Authentication required"
	status := http.StatusUnauthorized

	switch {
	case errors.Is(err, ErrMissingAuthHeader):
		message = "Missing authorization header"
	case errors.Is(err, ErrInvalidAuthHeader):
		message = "Invalid authorization header format"
	case errors.Is(err, ErrTokenExpired):
		message = "Token has expired"
		code = "TOKEN_EXPIRED"
	case errors.Is(err, ErrTokenRevoked):
		message = "Token has been revoked"
		code = "TOKEN_REVOKED"
	case errors.Is(err, ErrMissingIdentity):
		message = "Token carries no identity"
	case errors.Is(err, ErrAuthUnavailable):
		message = "Authentication temporarily unavailable"
		code = "SERVICE_UNAVAILABLE"
		status = http.StatusServiceUnavailable
	case errors.Is(err, ErrInvalidToken):
		message = "Invalid token"
	}

	return c.JSON(status, map[string]any{
		"success": false,
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

// GetIdentity extracts the caller identity from the echo context.
func GetIdentity(c echo.Context) string {
	if identity, ok := c.Get(string(ContextKeyIdentity)).(string); ok {
		return identity
	}
	return ""
}

// GetSubject extracts the token subject from the echo context.
func GetSubject(c echo.Context) string {
	if sub, ok := c.Get(string(ContextKeySubject)).(string); ok {
		return sub
	}
	return ""
}

// GetTokenID extracts the token's jti from the echo context.
func GetTokenID(c echo.Context) string {
	if id, ok := c.Get(string(ContextKeyTokenID)).(string); ok {
		return id
	}
	return ""
}

// GetTokenExpiry extracts the token expiration time from the echo context.
func GetTokenExpiry(c echo.Context) time.Time {
	if exp, ok := c.Get(string(ContextKeyTokenExpiry)).(time.Time); ok {
		return exp
	}
	return time.Time{}
}
