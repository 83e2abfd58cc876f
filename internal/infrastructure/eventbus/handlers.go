package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/lllypuk/reviewguard/internal/domain/anomaly"
)

const (
	journalKey           = "anomalies:journal"
	defaultMaxJournal    = 1000
	defaultJournalLength = 10
)

// LoggingHandler logs received signals. Observed anomalies are warnings.
type LoggingHandler struct {
	logger *slog.Logger
}

// NewLoggingHandler creates a new LoggingHandler.
func NewLoggingHandler(logger *slog.Logger) *LoggingHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingHandler{
		logger: logger,
	}
}

// Handle logs the signal.
func (h *LoggingHandler) Handle(ctx context.Context, sig anomaly.Signal) error {
	attrs := []any{
		slog.String("signal_id", sig.ID),
		slog.String("condition", string(sig.Condition)),
		slog.Bool("observed", sig.Observed),
		slog.Time("occurred_at", sig.OccurredAt),
	}
	if sig.ReviewID != "" {
		attrs = append(attrs, slog.String("review_id", sig.ReviewID))
	}
	if sig.Identity != "" {
		attrs = append(attrs, slog.String("identity", sig.Identity))
	}

	if sig.Observed {
		h.logger.WarnContext(ctx, "anomaly observed", attrs...)
	} else {
		h.logger.DebugContext(ctx, "anomaly check", attrs...)
	}
	return nil
}

// AsSignalHandler converts LoggingHandler to the SignalHandler function type.
func (h *LoggingHandler) AsSignalHandler() SignalHandler {
	return h.Handle
}

// JournalHandler keeps the most recent observed anomalies in a capped Redis list.
type JournalHandler struct {
	client     *redis.Client
	logger     *slog.Logger
	key        string
	maxEntries int64
}

// JournalHandlerOption configures JournalHandler.
type JournalHandlerOption func(*JournalHandler)

// WithJournalKey sets a custom list key.
func WithJournalKey(key string) JournalHandlerOption {
	return func(h *JournalHandler) {
		h.key = key
	}
}

// WithJournalLogger sets the logger.
func WithJournalLogger(logger *slog.Logger) JournalHandlerOption {
	return func(h *JournalHandler) {
		h.logger = logger
	}
}

// WithMaxJournalEntries sets how many entries are kept.
func WithMaxJournalEntries(maxEntries int64) JournalHandlerOption {
	return func(h *JournalHandler) {
		h.maxEntries = maxEntries
	}
}

// NewJournalHandler creates a new JournalHandler.
func NewJournalHandler(client *redis.Client, opts ...JournalHandlerOption) *JournalHandler {
	h := &JournalHandler{
		client:     client,
		logger:     slog.Default(),
		key:        journalKey,
		maxEntries: defaultMaxJournal,
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Handle records observed signals and ignores the rest.
func (h *JournalHandler) Handle(ctx context.Context, sig anomaly.Signal) error {
	if !sig.Observed {
		return nil
	}

	data, err := json.Marshal(sig)
	if err != nil {
		return fmt.Errorf("failed to marshal journal entry: %w", err)
	}

	if err = h.client.LPush(ctx, h.key, string(data)).Err(); err != nil {
		return fmt.Errorf("failed to push journal entry: %w", err)
	}

	if trimErr := h.client.LTrim(ctx, h.key, 0, h.maxEntries-1).Err(); trimErr != nil {
		h.logger.WarnContext(ctx, "failed to trim anomaly journal",
			slog.String("error", trimErr.Error()),
		)
	}
	return nil
}

// AsSignalHandler converts JournalHandler to the SignalHandler function type.
func (h *JournalHandler) AsSignalHandler() SignalHandler {
	return h.Handle
}

// Entries returns the newest entries first.
func (h *JournalHandler) Entries(ctx context.Context, count int64) ([]anomaly.Signal, error) {
	if count <= 0 {
		count = defaultJournalLength
	}

	data, err := h.client.LRange(ctx, h.key, 0, count-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read anomaly journal: %w", err)
	}

	entries := make([]anomaly.Signal, 0, len(data))
	for _, d := range data {
		var sig anomaly.Signal
		if unmarshalErr := json.Unmarshal([]byte(d), &sig); unmarshalErr != nil {
			h.logger.WarnContext(ctx, "failed to unmarshal journal entry",
				slog.String("error", unmarshalErr.Error()),
			)
			continue
		}
		entries = append(entries, sig)
	}

	return entries, nil
}

// Length returns the number of journal entries.
func (h *JournalHandler) Length(ctx context.Context) (int64, error) {
	return h.client.LLen(ctx, h.key).Result()
}

// Clear removes all journal entries.
func (h *JournalHandler) Clear(ctx context.Context) error {
	return h.client.Del(ctx, h.key).Err()
}
