package middleware

import (
	"context"
	"errors"

	"github.com/lllypuk/reviewguard/internal/infrastructure/auth"
	"github.com/lllypuk/reviewguard/internal/infrastructure/keycloak"
)

// KeycloakValidatorAdapter adapts keycloak.JWTValidator to the TokenValidator interface.
type KeycloakValidatorAdapter struct {
	validator           keycloak.JWTValidator
	requireVerifiedMail bool
}

// AdapterOption configures KeycloakValidatorAdapter.
type AdapterOption func(*KeycloakValidatorAdapter)

// WithVerifiedEmailOnly drops the identity of tokens whose email is not verified.
func WithVerifiedEmailOnly() AdapterOption {
	return func(a *KeycloakValidatorAdapter) {
		a.requireVerifiedMail = true
	}
}

// NewKeycloakValidatorAdapter creates a new adapter around a Keycloak JWKS validator.
func NewKeycloakValidatorAdapter(validator keycloak.JWTValidator, opts ...AdapterOption) *KeycloakValidatorAdapter {
	if validator == nil {
		panic("keycloak validator is required")
	}

	adapter := &KeycloakValidatorAdapter{validator: validator}
	for _, opt := range opts {
		opt(adapter)
	}

	return adapter
}

// ValidateToken implements TokenValidator.
func (a *KeycloakValidatorAdapter) ValidateToken(ctx context.Context, token string) (*TokenClaims, error) {
	kc, err := a.validator.Validate(ctx, token)
	if err != nil {
		return nil, mapKeycloakError(err)
	}

	email := kc.Identity()
	if a.requireVerifiedMail && !kc.EmailVerified {
		email = ""
	}

	return &TokenClaims{
		Subject:   kc.UserID,
		Email:     email,
		TokenID:   kc.TokenID,
		ExpiresAt: kc.ExpiresAt,
	}, nil
}

func mapKeycloakError(err error) error {
	switch {
	case errors.Is(err, keycloak.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, keycloak.ErrInvalidToken),
		errors.Is(err, keycloak.ErrInvalidClaims),
		errors.Is(err, keycloak.ErrMissingSubject),
		errors.Is(err, keycloak.ErrInvalidIssuer),
		errors.Is(err, keycloak.ErrInvalidAudience):
		return ErrInvalidToken
	default:
		return errors.Join(ErrInvalidToken, err)
	}
}

// Close closes the underlying keycloak validator.
func (a *KeycloakValidatorAdapter) Close() error {
	return a.validator.Close()
}

// HMACValidatorAdapter adapts auth.HMACValidator to the TokenValidator interface.
type HMACValidatorAdapter struct {
	validator *auth.HMACValidator
}

// NewHMACValidatorAdapter creates a new adapter around a shared-secret validator.
func NewHMACValidatorAdapter(validator *auth.HMACValidator) *HMACValidatorAdapter {
	if validator == nil {
		panic("hmac validator is required")
	}
	return &HMACValidatorAdapter{validator: validator}
}

// ValidateToken implements TokenValidator.
func (a *HMACValidatorAdapter) ValidateToken(ctx context.Context, token string) (*TokenClaims, error) {
	claims, err := a.validator.Validate(ctx, token)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	return &TokenClaims{
		Subject:   claims.Subject,
		Email:     claims.Identity(),
		TokenID:   claims.TokenID,
		ExpiresAt: claims.ExpiresAt,
	}, nil
}
