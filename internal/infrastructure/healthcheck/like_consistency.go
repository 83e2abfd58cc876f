// Package healthcheck provides health check implementations for monitoring review consistency.
package healthcheck

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/lllypuk/reviewguard/internal/application/appcore"
	"github.com/lllypuk/reviewguard/internal/application/review"
)

// LikeConsistencyChecker counts stored reviews whose like counter differs from
// the size of their like-set. The atomic like path never produces such a review;
// a non-zero count means the race simulation ran or the store was edited out of band.
type LikeConsistencyChecker struct {
	counter   review.ConsistencyCounter
	gauge     prometheus.Gauge
	tolerance int64
}

// LikeConsistencyOption configures LikeConsistencyChecker.
type LikeConsistencyOption func(*LikeConsistencyChecker)

// WithInconsistencyGauge publishes each observed count to gauge.
func WithInconsistencyGauge(gauge prometheus.Gauge) LikeConsistencyOption {
	return func(c *LikeConsistencyChecker) {
		c.gauge = gauge
	}
}

// WithTolerance sets how many inconsistent reviews are accepted before reporting.
func WithTolerance(n int64) LikeConsistencyOption {
	return func(c *LikeConsistencyChecker) {
		c.tolerance = n
	}
}

// NewLikeConsistencyChecker creates a new like consistency health checker.
func NewLikeConsistencyChecker(counter review.ConsistencyCounter, opts ...LikeConsistencyOption) *LikeConsistencyChecker {
	c := &LikeConsistencyChecker{counter: counter}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the name of this health checker.
func (c *LikeConsistencyChecker) Name() string {
	return "like_consistency"
}

// Check performs the health check.
func (c *LikeConsistencyChecker) Check(ctx context.Context) appcore.HealthStatus {
	count, err := c.counter.CountInconsistent(ctx)
	if err != nil {
		return appcore.FailedHealthStatus("failed to count inconsistent reviews", err)
	}

	if c.gauge != nil {
		c.gauge.Set(float64(count))
	}

	return appcore.NewHealthStatus(count <= c.tolerance,
		fmt.Sprintf("inconsistent reviews: %d", count),
		map[string]any{
			"inconsistent_reviews": count,
			"tolerance":            c.tolerance,
		},
	)
}
