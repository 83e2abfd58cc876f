package review

import (
	"context"
	"errors"
	"log/slog"

	"github.com/lllypuk/reviewguard/internal/application/appcore"
	"github.com/lllypuk/reviewguard/internal/domain/anomaly"
	"github.com/lllypuk/reviewguard/internal/domain/errs"
)

// LikeReviewUseCase credits a like at most once per identity.
type LikeReviewUseCase struct {
	appcore.BaseUseCase

	store    Store
	signaler AnomalySignaler
	logger   *slog.Logger
}

// NewLikeReviewUseCase creates a new LikeReviewUseCase.
func NewLikeReviewUseCase(store Store, signaler AnomalySignaler, logger *slog.Logger) *LikeReviewUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &LikeReviewUseCase{
		store:    store,
		signaler: signaler,
		logger:   logger,
	}
}

// Execute adds the caller to the like-set and bumps the counter in one
// conditional step. A caller already in the set matches nothing.
func (uc *LikeReviewUseCase) Execute(ctx context.Context, cmd LikeReviewCommand) (Result, error) {
	if err := requireReviewID(cmd.ReviewID); err != nil {
		return Result{}, err
	}
	if err := requireCaller(cmd.Caller); err != nil {
		return Result{}, err
	}

	if _, err := loadReview(ctx, uc.store, cmd.ReviewID); err != nil {
		return Result{}, err
	}

	if ctxErr := uc.ValidateContext(ctx); ctxErr != nil {
		return Result{}, NewStoreError(ctxErr)
	}

	caller := cmd.Caller
	updated, err := uc.store.ConditionalUpdateAndFetch(ctx, cmd.ReviewID,
		Predicate{NotLikedBy: &caller},
		Mutation{AddLiker: &caller},
	)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return Result{}, ErrAlreadyLiked
		}
		uc.logger.ErrorContext(ctx, "failed to like review",
			slog.String("review_id", cmd.ReviewID.String()),
			slog.String("error", err.Error()),
		)
		return Result{}, NewStoreError(err)
	}

	inconsistent := !updated.IsConsistent()
	if inconsistent {
		uc.logger.WarnContext(ctx, "like-set and counter diverged",
			slog.String("review_id", cmd.ReviewID.String()),
			slog.Int("likes_count", updated.LikesCount()),
			slog.Int("liked_by", len(updated.LikedBy())),
		)
	}
	uc.signaler.Signal(ctx, anomaly.NewSignal(anomaly.LikeRaceAnomaly, inconsistent).
		WithReview(cmd.ReviewID.String()).
		WithIdentity(caller.String()))

	uc.logger.DebugContext(ctx, "review liked",
		slog.String("review_id", cmd.ReviewID.String()),
		slog.Int("likes_count", updated.LikesCount()),
	)
	return Result{Value: updated}, nil
}

var _ appcore.UseCase[LikeReviewCommand, Result] = (*LikeReviewUseCase)(nil)
