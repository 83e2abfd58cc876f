// Package keycloak validates access tokens issued by a Keycloak realm
// against the realm's published signing keys.
package keycloak

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/MicahParks/jwkset"
	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

// Validation errors. Every failure wraps exactly one of them.
var (
	ErrInvalidToken    = errors.New("invalid token")
	ErrInvalidClaims   = errors.New("invalid claims")
	ErrMissingSubject  = errors.New("missing subject claim")
	ErrTokenExpired    = errors.New("token expired")
	ErrInvalidIssuer   = errors.New("invalid issuer")
	ErrInvalidAudience = errors.New("invalid audience")
	ErrJWKSFetchFailed = errors.New("failed to fetch JWKS")
)

// Realm keys are asymmetric; HMAC and "none" tokens never reach the keyfunc.
var signingMethods = []string{"RS256", "RS384", "RS512", "PS256", "ES256"}

// TokenClaims is the subset of an access token the review service relies on.
type TokenClaims struct {
	UserID        string
	Email         string
	EmailVerified bool
	Username      string
	TokenID       string
	IssuedAt      time.Time
	ExpiresAt     time.Time
}

// Identity is the reviewer identity carried by the token: the account email,
// lower-cased and trimmed. Empty when the token has no email.
func (c *TokenClaims) Identity() string {
	return strings.ToLower(strings.TrimSpace(c.Email))
}

// JWTValidator validates realm access tokens.
type JWTValidator interface {
	Validate(ctx context.Context, tokenString string) (*TokenClaims, error)

	// Close stops background JWKS refresh.
	Close() error
}

// JWTValidatorConfig configures NewJWTValidator.
type JWTValidatorConfig struct {
	KeycloakURL     string
	Realm           string
	ClientID        string // expected audience; empty accepts any
	Leeway          time.Duration
	RefreshInterval time.Duration
	Logger          *slog.Logger
}

const (
	DefaultLeeway          = 30 * time.Second
	DefaultRefreshInterval = 1 * time.Hour
)

// realmClaims is the token body as Keycloak issues it.
type realmClaims struct {
	jwt.RegisteredClaims

	Email             string `json:"email"`
	EmailVerified     bool   `json:"email_verified"`
	PreferredUsername string `json:"preferred_username"`
}

type jwtValidator struct {
	jwks      keyfunc.Keyfunc
	parser    *jwt.Parser
	logger    *slog.Logger
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// NewJWTValidator fetches the realm JWKS once and keeps it refreshed in the
// background until Close.
func NewJWTValidator(config JWTValidatorConfig) (JWTValidator, error) {
	if config.KeycloakURL == "" {
		return nil, fmt.Errorf("%w: KeycloakURL is required", ErrJWKSFetchFailed)
	}
	if config.Realm == "" {
		return nil, fmt.Errorf("%w: Realm is required", ErrJWKSFetchFailed)
	}
	if config.Leeway == 0 {
		config.Leeway = DefaultLeeway
	}
	if config.RefreshInterval == 0 {
		config.RefreshInterval = DefaultRefreshInterval
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	issuerURL := strings.TrimRight(config.KeycloakURL, "/") + "/realms/" + config.Realm
	jwksURL := issuerURL + "/protocol/openid-connect/certs"

	logger.Info("initializing JWT validator",
		slog.String("jwks_url", jwksURL),
		slog.Duration("refresh_interval", config.RefreshInterval),
	)

	ctx, cancel := context.WithCancel(context.Background())

	storage, err := jwkset.NewStorageFromHTTP(jwksURL, jwkset.HTTPClientStorageOptions{
		Ctx:             ctx,
		RefreshInterval: config.RefreshInterval,
		RefreshErrorHandler: func(_ context.Context, refreshErr error) {
			logger.Error("failed to refresh JWKS", slog.Any("error", refreshErr))
		},
	})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("%w: %w", ErrJWKSFetchFailed, err)
	}

	jwks, err := keyfunc.New(keyfunc.Options{Ctx: ctx, Storage: storage})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("%w: %w", ErrJWKSFetchFailed, err)
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods(signingMethods),
		jwt.WithLeeway(config.Leeway),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(issuerURL),
	}
	if config.ClientID != "" {
		parserOpts = append(parserOpts, jwt.WithAudience(config.ClientID))
	}

	return &jwtValidator{
		jwks:   jwks,
		parser: jwt.NewParser(parserOpts...),
		logger: logger,
		cancel: cancel,
	}, nil
}

// parseErrors maps jwt failures onto the package errors; first match wins.
var parseErrors = []struct {
	jwtErr error
	ours   error
}{
	{jwt.ErrTokenExpired, ErrTokenExpired},
	{jwt.ErrTokenInvalidIssuer, ErrInvalidIssuer},
	{jwt.ErrTokenInvalidAudience, ErrInvalidAudience},
	{jwt.ErrTokenInvalidClaims, ErrInvalidClaims},
}

func (v *jwtValidator) Validate(_ context.Context, tokenString string) (*TokenClaims, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	var claims realmClaims
	token, err := v.parser.ParseWithClaims(tokenString, &claims, v.jwks.Keyfunc)
	if err != nil {
		for _, pe := range parseErrors {
			if errors.Is(err, pe.jwtErr) && !errors.Is(err, jwt.ErrTokenRequiredClaimMissing) {
				return nil, fmt.Errorf("%w: %w", pe.ours, err)
			}
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, ErrMissingSubject
	}

	tc := &TokenClaims{
		UserID:        claims.Subject,
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
		Username:      claims.PreferredUsername,
		TokenID:       claims.ID,
	}
	if claims.IssuedAt != nil {
		tc.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		tc.ExpiresAt = claims.ExpiresAt.Time
	}
	return tc, nil
}

func (v *jwtValidator) Close() error {
	v.closeOnce.Do(func() {
		v.logger.Info("closing JWT validator")
		v.cancel()
	})
	return nil
}
