package healthcheck

import (
	"context"
	"time"

	"github.com/lllypuk/reviewguard/internal/application/appcore"
)

// PingFunc probes a backing service.
type PingFunc func(ctx context.Context) error

// PingChecker wraps a connectivity probe such as a MongoDB or Redis ping.
type PingChecker struct {
	name    string
	ping    PingFunc
	timeout time.Duration
}

const defaultPingTimeout = 2 * time.Second

// NewPingChecker creates a checker named name that calls ping with a bounded timeout.
func NewPingChecker(name string, ping PingFunc) *PingChecker {
	return &PingChecker{
		name:    name,
		ping:    ping,
		timeout: defaultPingTimeout,
	}
}

// Name returns the name of this health checker.
func (c *PingChecker) Name() string {
	return c.name
}

// Check performs the health check.
func (c *PingChecker) Check(ctx context.Context) appcore.HealthStatus {
	if c.ping == nil {
		return appcore.FailedHealthStatus("not initialized", nil)
	}

	pingCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	if err := c.ping(pingCtx); err != nil {
		return appcore.FailedHealthStatus("ping failed", err)
	}

	return appcore.NewHealthStatus(true, "", map[string]any{"latency": time.Since(start).String()})
}
