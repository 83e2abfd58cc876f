// Package eventbus delivers anomaly signals over Redis Pub/Sub.
package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lllypuk/reviewguard/internal/domain/anomaly"
)

// Default retry configuration constants.
const (
	defaultMaxRetries     = 3
	defaultInitialBackoff = 100 * time.Millisecond
	defaultMaxBackoff     = 5 * time.Second
	defaultBackoffFactor  = 2.0
	defaultChannel        = "anomalies"
)

// SignalHandler handles a received anomaly signal.
type SignalHandler func(ctx context.Context, sig anomaly.Signal) error

// RetryConfig configures retry behavior for signal handling.
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	BackoffFactor  float64
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     defaultMaxRetries,
		InitialBackoff: defaultInitialBackoff,
		MaxBackoff:     defaultMaxBackoff,
		BackoffFactor:  defaultBackoffFactor,
	}
}

// RedisEventBus publishes and consumes anomaly signals on one Redis channel.
type RedisEventBus struct {
	client      *redis.Client
	pubsub      *redis.PubSub
	pubsubMu    sync.RWMutex
	handlers    []SignalHandler
	handlersMu  sync.RWMutex
	running     bool
	runningMu   sync.RWMutex
	shutdown    chan struct{}
	wg          sync.WaitGroup
	logger      *slog.Logger
	retryConfig RetryConfig
	channel     string
}

// Option configures a RedisEventBus.
type Option func(*RedisEventBus)

// WithLogger sets the logger for the event bus.
func WithLogger(logger *slog.Logger) Option {
	return func(b *RedisEventBus) {
		b.logger = logger
	}
}

// WithRetryConfig sets the retry configuration for signal handling.
func WithRetryConfig(config RetryConfig) Option {
	return func(b *RedisEventBus) {
		b.retryConfig = config
	}
}

// WithChannel sets the Redis channel name.
func WithChannel(channel string) Option {
	return func(b *RedisEventBus) {
		if channel != "" {
			b.channel = channel
		}
	}
}

// NewRedisEventBus creates a new Redis-based signal bus.
func NewRedisEventBus(client *redis.Client, opts ...Option) *RedisEventBus {
	b := &RedisEventBus{
		client:      client,
		shutdown:    make(chan struct{}),
		logger:      slog.Default(),
		retryConfig: DefaultRetryConfig(),
		channel:     defaultChannel,
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Channel returns the Redis channel name.
func (b *RedisEventBus) Channel() string {
	return b.channel
}

// Publish publishes a signal to the channel.
func (b *RedisEventBus) Publish(ctx context.Context, sig anomaly.Signal) error {
	if !sig.Condition.IsValid() {
		return fmt.Errorf("unknown anomaly condition %q", sig.Condition)
	}

	data, err := json.Marshal(sig)
	if err != nil {
		return fmt.Errorf("failed to marshal signal: %w", err)
	}

	if publishErr := b.client.Publish(ctx, b.channel, data).Err(); publishErr != nil {
		return fmt.Errorf("failed to publish signal to Redis: %w", publishErr)
	}

	b.logger.DebugContext(ctx, "signal published",
		slog.String("signal_id", sig.ID),
		slog.String("condition", string(sig.Condition)),
		slog.Bool("observed", sig.Observed),
		slog.String("channel", b.channel),
	)

	return nil
}

// Subscribe registers a handler. Handlers run concurrently per signal.
func (b *RedisEventBus) Subscribe(handler SignalHandler) error {
	if handler == nil {
		return errors.New("handler cannot be nil")
	}

	b.handlersMu.Lock()
	defer b.handlersMu.Unlock()

	b.handlers = append(b.handlers, handler)

	return nil
}

// HandlerCount returns the number of registered handlers.
func (b *RedisEventBus) HandlerCount() int {
	b.handlersMu.RLock()
	defer b.handlersMu.RUnlock()
	return len(b.handlers)
}

// Start begins listening on the channel.
// This method blocks until Shutdown is called or the context is cancelled.
func (b *RedisEventBus) Start(ctx context.Context) error {
	b.runningMu.Lock()
	if b.running {
		b.runningMu.Unlock()
		return errors.New("event bus is already running")
	}
	b.running = true
	b.runningMu.Unlock()

	pubsub := b.client.Subscribe(ctx, b.channel)

	// Wait for subscription confirmation
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return fmt.Errorf("failed to subscribe to channel: %w", err)
	}

	b.pubsubMu.Lock()
	b.pubsub = pubsub
	b.pubsubMu.Unlock()

	b.logger.InfoContext(ctx, "event bus started", slog.String("channel", b.channel))

	msgCh := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			b.logger.InfoContext(ctx, "event bus stopping due to context cancellation")
			return ctx.Err()

		case <-b.shutdown:
			b.logger.InfoContext(ctx, "event bus stopping due to shutdown signal")
			return nil

		case msg, ok := <-msgCh:
			if !ok {
				b.logger.WarnContext(ctx, "message channel closed")
				return nil
			}
			b.handleMessage(ctx, msg)
		}
	}
}

// Shutdown gracefully stops the bus and waits for pending handlers.
func (b *RedisEventBus) Shutdown() error {
	b.runningMu.Lock()
	if !b.running {
		b.runningMu.Unlock()
		return nil
	}
	b.running = false
	b.runningMu.Unlock()

	close(b.shutdown)

	b.wg.Wait()

	b.pubsubMu.Lock()
	pubsub := b.pubsub
	b.pubsub = nil
	b.pubsubMu.Unlock()

	if pubsub != nil {
		if err := pubsub.Close(); err != nil {
			return fmt.Errorf("failed to close pubsub: %w", err)
		}
	}

	return nil
}

// IsRunning returns true if the bus is currently running.
func (b *RedisEventBus) IsRunning() bool {
	b.runningMu.RLock()
	defer b.runningMu.RUnlock()
	return b.running
}

func (b *RedisEventBus) handleMessage(ctx context.Context, msg *redis.Message) {
	var sig anomaly.Signal
	if err := json.Unmarshal([]byte(msg.Payload), &sig); err != nil {
		b.logger.ErrorContext(ctx, "failed to unmarshal signal",
			slog.String("channel", msg.Channel),
			slog.String("error", err.Error()),
		)
		return
	}

	b.handlersMu.RLock()
	handlers := b.handlers
	b.handlersMu.RUnlock()

	for i, handler := range handlers {
		b.wg.Add(1)
		go b.executeHandler(ctx, handler, sig, i)
	}
}

// executeHandler runs a single handler with retry logic.
func (b *RedisEventBus) executeHandler(
	ctx context.Context,
	handler SignalHandler,
	sig anomaly.Signal,
	handlerIndex int,
) {
	defer b.wg.Done()

	var lastErr error
	backoff := b.retryConfig.InitialBackoff

	for attempt := 0; attempt <= b.retryConfig.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				b.logger.WarnContext(ctx, "handler retry cancelled",
					slog.String("condition", string(sig.Condition)),
					slog.String("error", ctx.Err().Error()),
				)
				return
			case <-time.After(backoff):
			}

			backoff = time.Duration(float64(backoff) * b.retryConfig.BackoffFactor)
			if backoff > b.retryConfig.MaxBackoff {
				backoff = b.retryConfig.MaxBackoff
			}
		}

		if err := handler(ctx, sig); err != nil {
			lastErr = err
			b.logger.WarnContext(ctx, "signal handler failed",
				slog.String("condition", string(sig.Condition)),
				slog.Int("handler_index", handlerIndex),
				slog.Int("attempt", attempt),
				slog.String("error", err.Error()),
			)
			continue
		}
		return
	}

	b.logger.ErrorContext(ctx, "signal handler failed after all retries",
		slog.String("condition", string(sig.Condition)),
		slog.String("signal_id", sig.ID),
		slog.Int("handler_index", handlerIndex),
		slog.Int("max_retries", b.retryConfig.MaxRetries),
		slog.String("error", lastErr.Error()),
	)
}
