// Package worker holds the long-running background jobs of the worker process.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	reviewapp "github.com/lllypuk/reviewguard/internal/application/review"
	"github.com/lllypuk/reviewguard/internal/domain/anomaly"
)

// Default configuration values for the consistency sweep.
const (
	defaultSweepInterval = 5 * time.Minute
	defaultSweepTimeout  = 30 * time.Second
)

// ConsistencySweepConfig contains configuration for the consistency sweep worker.
type ConsistencySweepConfig struct {
	// Interval is the time between sweeps.
	Interval time.Duration

	// Timeout bounds a single sweep.
	Timeout time.Duration

	// Tolerance is the number of inconsistent reviews accepted before an
	// anomaly is raised.
	Tolerance int64

	// Enabled determines if the worker should run.
	Enabled bool
}

// DefaultConsistencySweepConfig returns sensible default configuration.
func DefaultConsistencySweepConfig() ConsistencySweepConfig {
	return ConsistencySweepConfig{
		Interval: defaultSweepInterval,
		Timeout:  defaultSweepTimeout,
		Enabled:  true,
	}
}

// Signaler receives the anomaly raised by a failed sweep.
type Signaler interface {
	Signal(ctx context.Context, sig anomaly.Signal)
}

// SweepResult contains the outcome of one sweep.
type SweepResult struct {
	Inconsistent int64
	Observed     bool
	Duration     time.Duration
}

// ConsistencySweepWorker periodically counts reviews whose likesCount differs
// from the size of likedBy and raises likeRaceAnomaly when the count exceeds
// the tolerance.
type ConsistencySweepWorker struct {
	counter  reviewapp.ConsistencyCounter
	signaler Signaler
	gauge    prometheus.Gauge
	logger   *slog.Logger
	config   ConsistencySweepConfig
}

// NewConsistencySweepWorker creates a new consistency sweep worker.
// signaler and gauge are optional.
func NewConsistencySweepWorker(
	counter reviewapp.ConsistencyCounter,
	signaler Signaler,
	gauge prometheus.Gauge,
	logger *slog.Logger,
	config ConsistencySweepConfig,
) *ConsistencySweepWorker {
	if logger == nil {
		logger = slog.Default()
	}
	if config.Interval <= 0 {
		config.Interval = defaultSweepInterval
	}
	if config.Timeout <= 0 {
		config.Timeout = defaultSweepTimeout
	}

	return &ConsistencySweepWorker{
		counter:  counter,
		signaler: signaler,
		gauge:    gauge,
		logger:   logger,
		config:   config,
	}
}

// Run sweeps immediately and then on every interval until ctx is cancelled.
func (w *ConsistencySweepWorker) Run(ctx context.Context) error {
	if !w.config.Enabled {
		w.logger.InfoContext(ctx, "consistency sweep worker is disabled")
		return nil
	}

	w.logger.InfoContext(ctx, "starting consistency sweep worker",
		slog.Duration("interval", w.config.Interval),
		slog.Int64("tolerance", w.config.Tolerance),
	)

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	if _, err := w.Sweep(ctx); err != nil {
		w.logger.ErrorContext(ctx, "initial consistency sweep failed", slog.String("error", err.Error()))
	}

	for {
		select {
		case <-ctx.Done():
			w.logger.InfoContext(ctx, "consistency sweep worker stopped")
			return ctx.Err()
		case <-ticker.C:
			if _, err := w.Sweep(ctx); err != nil {
				w.logger.ErrorContext(ctx, "consistency sweep failed", slog.String("error", err.Error()))
			}
		}
	}
}

// Sweep runs a single count.
func (w *ConsistencySweepWorker) Sweep(ctx context.Context) (SweepResult, error) {
	start := time.Now()

	sweepCtx, cancel := context.WithTimeout(ctx, w.config.Timeout)
	defer cancel()

	count, err := w.counter.CountInconsistent(sweepCtx)
	if err != nil {
		return SweepResult{}, fmt.Errorf("count inconsistent reviews: %w", err)
	}

	if w.gauge != nil {
		w.gauge.Set(float64(count))
	}

	result := SweepResult{
		Inconsistent: count,
		Observed:     count > w.config.Tolerance,
		Duration:     time.Since(start),
	}

	if result.Observed {
		w.logger.WarnContext(ctx, "reviews with diverged like counters found",
			slog.Int64("inconsistent", count),
			slog.Int64("tolerance", w.config.Tolerance),
		)
		if w.signaler != nil {
			w.signaler.Signal(ctx, anomaly.NewSignal(anomaly.LikeRaceAnomaly, true))
		}
	} else {
		w.logger.DebugContext(ctx, "consistency sweep completed",
			slog.Int64("inconsistent", count),
			slog.Duration("duration", result.Duration),
		)
	}

	return result, nil
}
