package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrTokenIDRequired is returned when an operation is called without a token ID.
var ErrTokenIDRequired = errors.New("tokenID is required")

const (
	defaultKeyPrefix = "auth:revoked:"
	revokedValue     = "revoked"
)

// RevocationStore tracks revoked access tokens in Redis, keyed by the token's jti claim.
// Entries expire together with the token they revoke.
type RevocationStore struct {
	client    *redis.Client
	keyPrefix string
}

// RevocationStoreConfig contains configuration for RevocationStore.
type RevocationStoreConfig struct {
	Client    *redis.Client
	KeyPrefix string
}

// NewRevocationStore creates a new Redis-based revocation store.
func NewRevocationStore(cfg RevocationStoreConfig) *RevocationStore {
	keyPrefix := cfg.KeyPrefix
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}

	return &RevocationStore{
		client:    cfg.Client,
		keyPrefix: keyPrefix,
	}
}

func (s *RevocationStore) key(tokenID string) string {
	return s.keyPrefix + tokenID
}

// Revoke marks a token ID as revoked for ttl. A non-positive ttl means the token
// has already expired and there is nothing to record.
func (s *RevocationStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if tokenID == "" {
		return ErrTokenIDRequired
	}
	if ttl <= 0 {
		return nil
	}

	if err := s.client.Set(ctx, s.key(tokenID), revokedValue, ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	return nil
}

// IsRevoked reports whether a token ID has been revoked.
func (s *RevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if tokenID == "" {
		return false, ErrTokenIDRequired
	}

	exists, err := s.client.Exists(ctx, s.key(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}

	return exists > 0, nil
}
