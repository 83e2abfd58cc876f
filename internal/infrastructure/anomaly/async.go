package anomaly

import (
	"context"
	"sync"
	"time"

	"github.com/lllypuk/reviewguard/internal/domain/anomaly"
)

const (
	defaultAsyncTimeout     = 2 * time.Second
	defaultAsyncConcurrency = 64
)

// AsyncSignaler delivers signals on background goroutines so the request
// path never waits on telemetry. When all slots are busy the signal is
// dropped and onDrop is called.
type AsyncSignaler struct {
	next    Signaler
	timeout time.Duration
	slots   chan struct{}
	onDrop  func()
	wg      sync.WaitGroup
}

// AsyncOption configures an AsyncSignaler.
type AsyncOption func(*AsyncSignaler)

// WithTimeout bounds each delivery.
func WithTimeout(timeout time.Duration) AsyncOption {
	return func(s *AsyncSignaler) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

// WithConcurrency sets the number of in-flight deliveries.
func WithConcurrency(n int) AsyncOption {
	return func(s *AsyncSignaler) {
		if n > 0 {
			s.slots = make(chan struct{}, n)
		}
	}
}

// WithDropHandler is called whenever a signal is dropped.
func WithDropHandler(onDrop func()) AsyncOption {
	return func(s *AsyncSignaler) {
		s.onDrop = onDrop
	}
}

// NewAsyncSignaler wraps next.
func NewAsyncSignaler(next Signaler, opts ...AsyncOption) *AsyncSignaler {
	s := &AsyncSignaler{
		next:    next,
		timeout: defaultAsyncTimeout,
		slots:   make(chan struct{}, defaultAsyncConcurrency),
		onDrop:  func() {},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Signal implements Signaler. It returns immediately.
func (s *AsyncSignaler) Signal(ctx context.Context, sig anomaly.Signal) {
	select {
	case s.slots <- struct{}{}:
	default:
		s.onDrop()
		return
	}

	// Detached from request cancellation; the response may already be sent.
	deliveryCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()
		defer func() { <-s.slots }()
		s.next.Signal(deliveryCtx, sig)
	}()
}

// Wait blocks until in-flight deliveries finish or ctx is done.
func (s *AsyncSignaler) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
