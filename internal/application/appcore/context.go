package appcore

import (
	"context"
	"errors"
)

type contextKey string

const (
	identityKey      contextKey = "identity"
	correlationIDKey contextKey = "correlationID"
)

var (
	ErrIdentityNotFound      = errors.New("identity not found in context")
	ErrCorrelationIDNotFound = errors.New("correlation ID not found in context")
)

// GetIdentity extracts the caller identity from the context.
func GetIdentity(ctx context.Context) (string, error) {
	identity, ok := ctx.Value(identityKey).(string)
	if !ok || identity == "" {
		return "", ErrIdentityNotFound
	}
	return identity, nil
}

// WithIdentity stores the caller identity in the context.
func WithIdentity(ctx context.Context, identity string) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// GetCorrelationID extracts the correlation ID from the context.
func GetCorrelationID(ctx context.Context) (string, error) {
	correlationID, ok := ctx.Value(correlationIDKey).(string)
	if !ok {
		return "", ErrCorrelationIDNotFound
	}
	return correlationID, nil
}

// WithCorrelationID adds the correlation ID to the context.
func WithCorrelationID(ctx context.Context, correlationID string) context.Context {
	return context.WithValue(ctx, correlationIDKey, correlationID)
}
