package review

import (
	"context"

	"github.com/lllypuk/reviewguard/internal/domain/anomaly"
)

// AnomalySignaler receives diagnostic signals. Implementations must not block
// the caller for long and must never fail the operation that raised them.
type AnomalySignaler interface {
	Signal(ctx context.Context, sig anomaly.Signal)
}

// NoopSignaler discards every signal.
type NoopSignaler struct{}

// Signal implements AnomalySignaler.
func (NoopSignaler) Signal(context.Context, anomaly.Signal) {}

// Sanitizer strips markup from user-supplied text.
type Sanitizer interface {
	Sanitize(s string) string
}
