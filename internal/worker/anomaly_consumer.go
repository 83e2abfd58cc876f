package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/lllypuk/reviewguard/internal/domain/anomaly"
	"github.com/lllypuk/reviewguard/internal/infrastructure/eventbus"
)

// SignalBus is the subscriber side of the anomaly channel.
type SignalBus interface {
	Subscribe(handler eventbus.SignalHandler) error
	Start(ctx context.Context) error
	Shutdown() error
}

// AnomalyConsumer feeds signals published by API instances to its handlers.
type AnomalyConsumer struct {
	bus      SignalBus
	handlers []eventbus.SignalHandler
	logger   *slog.Logger
}

// NewAnomalyConsumer creates a consumer that dispatches every received signal
// to handlers.
func NewAnomalyConsumer(bus SignalBus, logger *slog.Logger, handlers ...eventbus.SignalHandler) *AnomalyConsumer {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnomalyConsumer{
		bus:      bus,
		handlers: handlers,
		logger:   logger,
	}
}

// Run subscribes the handlers and blocks until ctx is cancelled.
func (c *AnomalyConsumer) Run(ctx context.Context) error {
	if len(c.handlers) == 0 {
		return errors.New("anomaly consumer has no handlers")
	}

	for _, h := range c.handlers {
		if err := c.bus.Subscribe(h); err != nil {
			return fmt.Errorf("subscribe handler: %w", err)
		}
	}

	c.logger.InfoContext(ctx, "starting anomaly consumer", slog.Int("handlers", len(c.handlers)))

	runErr := c.bus.Start(ctx)
	if shutdownErr := c.bus.Shutdown(); shutdownErr != nil {
		c.logger.ErrorContext(ctx, "anomaly consumer shutdown failed", slog.String("error", shutdownErr.Error()))
	}

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return fmt.Errorf("anomaly consumer: %w", runErr)
	}

	c.logger.InfoContext(ctx, "anomaly consumer stopped")
	return ctx.Err()
}

// NewConsumedCounter registers the counter of signals received from the channel.
func NewConsumedCounter(registerer prometheus.Registerer) *prometheus.CounterVec {
	counter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reviewguard_worker_signals_consumed_total",
			Help: "Anomaly signals received from the anomaly channel",
		},
		[]string{"condition", "observed"},
	)
	registerer.MustRegister(counter)
	return counter
}

// CountingHandler increments counter for every received signal.
func CountingHandler(counter *prometheus.CounterVec) eventbus.SignalHandler {
	return func(_ context.Context, sig anomaly.Signal) error {
		counter.WithLabelValues(string(sig.Condition), strconv.FormatBool(sig.Observed)).Inc()
		return nil
	}
}
