package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lllypuk/reviewguard/internal/infrastructure/auth"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestNewHMACValidator_RejectsShortSecret(t *testing.T) {
	_, err := auth.NewHMACValidator("short")
	require.ErrorIs(t, err, auth.ErrWeakSecret)
}

func TestHMACValidator_IssueAndValidate(t *testing.T) {
	v, err := auth.NewHMACValidator(testSecret, auth.WithIssuer("reviewguard"))
	require.NoError(t, err)

	token, err := v.Issue("user-1", "u1@example.com", time.Hour)
	require.NoError(t, err)

	claims, err := v.Validate(context.Background(), token)

	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "u1@example.com", claims.Email)
	assert.NotEmpty(t, claims.TokenID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt, 2*time.Second)
}

func TestHMACValidator_Validate_Failures(t *testing.T) {
	v, err := auth.NewHMACValidator(testSecret, auth.WithIssuer("reviewguard"), auth.WithLeeway(0))
	require.NoError(t, err)
	ctx := context.Background()

	signWith := func(t *testing.T, method jwt.SigningMethod, key any, claims jwt.MapClaims) string {
		t.Helper()
		s, signErr := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, signErr)
		return s
	}
	base := func() jwt.MapClaims {
		return jwt.MapClaims{
			"sub":   "user-1",
			"email": "u1@example.com",
			"iss":   "reviewguard",
			"iat":   time.Now().Unix(),
			"exp":   time.Now().Add(time.Hour).Unix(),
		}
	}

	t.Run("empty token", func(t *testing.T) {
		_, err := v.Validate(ctx, "")
		require.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		c := base()
		c["exp"] = time.Now().Add(-time.Minute).Unix()
		_, err := v.Validate(ctx, signWith(t, jwt.SigningMethodHS256, []byte(testSecret), c))
		require.ErrorIs(t, err, auth.ErrTokenExpired)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token := signWith(t, jwt.SigningMethodHS256, []byte("ffffffffffffffffffffffffffffffff"), base())
		_, err := v.Validate(ctx, token)
		require.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("other algorithm", func(t *testing.T) {
		token := signWith(t, jwt.SigningMethodHS512, []byte(testSecret), base())
		_, err := v.Validate(ctx, token)
		require.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("unsigned token", func(t *testing.T) {
		token := signWith(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, base())
		_, err := v.Validate(ctx, token)
		require.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		c := base()
		c["iss"] = "elsewhere"
		_, err := v.Validate(ctx, signWith(t, jwt.SigningMethodHS256, []byte(testSecret), c))
		require.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("missing subject", func(t *testing.T) {
		c := base()
		delete(c, "sub")
		_, err := v.Validate(ctx, signWith(t, jwt.SigningMethodHS256, []byte(testSecret), c))
		require.ErrorIs(t, err, auth.ErrMissingSubject)
	})
}

func TestClaims_Identity(t *testing.T) {
	claims := auth.Claims{Email: "  U1@Example.com\n"}
	assert.Equal(t, "u1@example.com", claims.Identity())

	assert.Empty(t, (&auth.Claims{}).Identity())
}
