package review

import (
	"context"
	"log/slog"
	"time"

	"github.com/lllypuk/reviewguard/internal/domain/anomaly"
)

const (
	// DefaultRaceDelay is the pause between the two like phases.
	DefaultRaceDelay = 150 * time.Millisecond
	// DefaultRaceThreshold is the occurrence count above which a race is reported.
	DefaultRaceThreshold = 2
)

// SimulateLikeRaceUseCase reproduces the historic two-phase like: a membership
// check, an unconditional counter increment, a pause, then an unconditional
// append. Concurrent calls by one identity can be credited several times,
// which is what it exists to demonstrate. It is only wired when explicitly
// enabled in configuration.
type SimulateLikeRaceUseCase struct {
	store     RaceSimulationStore
	signaler  AnomalySignaler
	logger    *slog.Logger
	delay     time.Duration
	threshold int
}

// NewSimulateLikeRaceUseCase creates a new SimulateLikeRaceUseCase.
// Non-positive delay and threshold fall back to the defaults.
func NewSimulateLikeRaceUseCase(
	store RaceSimulationStore,
	signaler AnomalySignaler,
	logger *slog.Logger,
	delay time.Duration,
	threshold int,
) *SimulateLikeRaceUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	if delay <= 0 {
		delay = DefaultRaceDelay
	}
	if threshold <= 0 {
		threshold = DefaultRaceThreshold
	}
	return &SimulateLikeRaceUseCase{
		store:     store,
		signaler:  signaler,
		logger:    logger,
		delay:     delay,
		threshold: threshold,
	}
}

// Execute runs both phases and signals likeRaceAnomaly when the caller occurs
// in likedBy more often than the threshold.
func (uc *SimulateLikeRaceUseCase) Execute(ctx context.Context, cmd SimulateLikeRaceCommand) (Result, error) {
	if err := requireReviewID(cmd.ReviewID); err != nil {
		return Result{}, err
	}
	if err := requireCaller(cmd.Caller); err != nil {
		return Result{}, err
	}

	existing, err := loadReview(ctx, uc.store, cmd.ReviewID)
	if err != nil {
		return Result{}, err
	}
	if existing.HasLiked(cmd.Caller) {
		return Result{}, ErrAlreadyLiked
	}

	if err = uc.store.IncrementLikes(ctx, cmd.ReviewID); err != nil {
		return Result{}, NewStoreError(err)
	}

	timer := time.NewTimer(uc.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return Result{}, NewStoreError(ctx.Err())
	case <-timer.C:
	}

	if err = uc.store.AppendLiker(ctx, cmd.ReviewID, cmd.Caller); err != nil {
		return Result{}, NewStoreError(err)
	}

	current, err := loadReview(ctx, uc.store, cmd.ReviewID)
	if err != nil {
		return Result{}, err
	}

	count := current.Occurrences(cmd.Caller)
	observed := count > uc.threshold
	if observed {
		uc.logger.WarnContext(ctx, "like race reproduced",
			slog.String("review_id", cmd.ReviewID.String()),
			slog.String("caller", cmd.Caller.String()),
			slog.Int("occurrences", count),
		)
	}
	uc.signaler.Signal(ctx, anomaly.NewSignal(anomaly.LikeRaceAnomaly, observed).
		WithReview(cmd.ReviewID.String()).
		WithIdentity(cmd.Caller.String()))

	return Result{Value: current}, nil
}
