// Package anomaly provides the AnomalySignaler implementations: logging,
// Prometheus counters, Redis publishing, fan-out and a non-blocking wrapper.
package anomaly

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/lllypuk/reviewguard/internal/domain/anomaly"
	"github.com/lllypuk/reviewguard/internal/infrastructure/metrics"
)

// Signaler mirrors reviewapp.AnomalySignaler.
type Signaler interface {
	Signal(ctx context.Context, sig anomaly.Signal)
}

// Publisher sends a signal to an external channel.
type Publisher interface {
	Publish(ctx context.Context, sig anomaly.Signal) error
}

// LogSignaler writes observed anomalies as warnings.
type LogSignaler struct {
	logger *slog.Logger
}

// NewLogSignaler creates a LogSignaler.
func NewLogSignaler(logger *slog.Logger) *LogSignaler {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSignaler{logger: logger}
}

// Signal implements Signaler.
func (s *LogSignaler) Signal(ctx context.Context, sig anomaly.Signal) {
	if !sig.Observed {
		return
	}
	s.logger.WarnContext(ctx, "anomaly observed",
		slog.String("condition", string(sig.Condition)),
		slog.String("review_id", sig.ReviewID),
		slog.String("identity", sig.Identity),
	)
}

// MetricsSignaler counts every evaluation.
type MetricsSignaler struct {
	metrics *metrics.ReviewMetrics
}

// NewMetricsSignaler creates a MetricsSignaler.
func NewMetricsSignaler(m *metrics.ReviewMetrics) *MetricsSignaler {
	return &MetricsSignaler{metrics: m}
}

// Signal implements Signaler.
func (s *MetricsSignaler) Signal(_ context.Context, sig anomaly.Signal) {
	s.metrics.AnomalySignalsTotal.
		WithLabelValues(string(sig.Condition), strconv.FormatBool(sig.Observed)).
		Inc()
}

// PublishSignaler forwards observed signals to a Publisher. Failures are
// logged and swallowed.
type PublishSignaler struct {
	publisher Publisher
	logger    *slog.Logger
}

// NewPublishSignaler creates a PublishSignaler.
func NewPublishSignaler(publisher Publisher, logger *slog.Logger) *PublishSignaler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PublishSignaler{publisher: publisher, logger: logger}
}

// Signal implements Signaler.
func (s *PublishSignaler) Signal(ctx context.Context, sig anomaly.Signal) {
	if !sig.Observed {
		return
	}
	if err := s.publisher.Publish(ctx, sig); err != nil {
		s.logger.WarnContext(ctx, "failed to publish anomaly signal",
			slog.String("condition", string(sig.Condition)),
			slog.String("error", err.Error()),
		)
	}
}

// Multi fans a signal out to several signalers in order.
type Multi []Signaler

// Signal implements Signaler.
func (m Multi) Signal(ctx context.Context, sig anomaly.Signal) {
	for _, s := range m {
		s.Signal(ctx, sig)
	}
}
