package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Validation errors.
var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token expired")
	ErrMissingSubject = errors.New("missing subject claim")
	ErrWeakSecret     = errors.New("jwt secret must be at least 32 bytes")
)

const (
	minSecretLength = 32
	defaultLeeway   = 30 * time.Second
)

// Claims are the fields read from a locally signed token.
type Claims struct {
	Subject   string
	Email     string
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Identity is the reviewer identity carried by the token: the email,
// lower-cased and trimmed the same way realm tokens are.
func (c *Claims) Identity() string {
	return strings.ToLower(strings.TrimSpace(c.Email))
}

type signedClaims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// HMACValidator validates HS256 tokens signed with a shared secret. It backs
// deployments without Keycloak and local development.
type HMACValidator struct {
	secret []byte
	issuer string
	leeway time.Duration
}

// HMACOption configures HMACValidator.
type HMACOption func(*HMACValidator)

// WithIssuer requires tokens to carry the given iss claim.
func WithIssuer(issuer string) HMACOption {
	return func(v *HMACValidator) {
		v.issuer = issuer
	}
}

// WithLeeway sets the clock skew tolerance.
func WithLeeway(d time.Duration) HMACOption {
	return func(v *HMACValidator) {
		v.leeway = d
	}
}

// NewHMACValidator creates a validator for the given secret.
func NewHMACValidator(secret string, opts ...HMACOption) (*HMACValidator, error) {
	if len(secret) < minSecretLength {
		return nil, ErrWeakSecret
	}

	v := &HMACValidator{
		secret: []byte(secret),
		leeway: defaultLeeway,
	}
	for _, opt := range opts {
		opt(v)
	}

	return v, nil
}

// Validate parses and verifies tokenString.
func (v *HMACValidator) Validate(_ context.Context, tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(v.leeway),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(v.issuer))
	}

	parsed := &signedClaims{}
	token, err := jwt.ParseWithClaims(tokenString, parsed, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, parserOpts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %w", ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if parsed.Subject == "" {
		return nil, ErrMissingSubject
	}

	claims := &Claims{
		Subject: parsed.Subject,
		Email:   parsed.Email,
		TokenID: parsed.ID,
	}
	if parsed.IssuedAt != nil {
		claims.IssuedAt = parsed.IssuedAt.Time
	}
	if parsed.ExpiresAt != nil {
		claims.ExpiresAt = parsed.ExpiresAt.Time
	}

	return claims, nil
}

// Issue signs a token for subject and email valid for ttl. Token issuance
// belongs to the identity provider; this exists for development tooling and tests.
func (v *HMACValidator) Issue(subject, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := signedClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
