package review

import (
	"context"
	"log/slog"

	"github.com/lllypuk/reviewguard/internal/application/appcore"
	"github.com/lllypuk/reviewguard/internal/domain/anomaly"
)

// UpdateReviewUseCase replaces a review message when the caller is its author.
type UpdateReviewUseCase struct {
	appcore.BaseUseCase

	store     Store
	sanitizer Sanitizer
	signaler  AnomalySignaler
	logger    *slog.Logger
}

// NewUpdateReviewUseCase creates a new UpdateReviewUseCase.
func NewUpdateReviewUseCase(
	store Store,
	sanitizer Sanitizer,
	signaler AnomalySignaler,
	logger *slog.Logger,
) *UpdateReviewUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &UpdateReviewUseCase{
		store:     store,
		sanitizer: sanitizer,
		signaler:  signaler,
		logger:    logger,
	}
}

// Execute performs the existence read and then a single conditional update
// whose predicate carries the ownership check.
func (uc *UpdateReviewUseCase) Execute(ctx context.Context, cmd UpdateReviewCommand) (UpdateReviewResult, error) {
	if err := requireReviewID(cmd.ReviewID); err != nil {
		return UpdateReviewResult{}, err
	}
	if err := requireCaller(cmd.Caller); err != nil {
		return UpdateReviewResult{}, err
	}
	message, err := cleanMessage(uc.sanitizer, cmd.Message)
	if err != nil {
		return UpdateReviewResult{}, err
	}

	existing, err := loadReview(ctx, uc.store, cmd.ReviewID)
	if err != nil {
		return UpdateReviewResult{}, err
	}

	caller := cmd.Caller
	res, err := uc.store.ConditionalUpdate(ctx, cmd.ReviewID,
		Predicate{AuthorEquals: &caller},
		Mutation{SetMessage: &message},
	)
	if err != nil {
		uc.logger.ErrorContext(ctx, "failed to update review",
			slog.String("review_id", cmd.ReviewID.String()),
			slog.String("error", err.Error()),
		)
		return UpdateReviewResult{}, NewStoreError(err)
	}
	if res.MatchedCount == 0 {
		return UpdateReviewResult{}, ErrNotOwner
	}

	// The predicate matched, so the stored author is the caller. A different
	// author in the earlier read means the ownership scope failed somewhere.
	forged := !existing.IsAuthoredBy(caller)
	if forged {
		uc.logger.WarnContext(ctx, "update mutated a review not owned by caller",
			slog.String("review_id", cmd.ReviewID.String()),
			slog.String("caller", caller.String()),
		)
	}
	uc.signaler.Signal(ctx, anomaly.NewSignal(anomaly.ForgedReviewUpdate, forged).
		WithReview(cmd.ReviewID.String()).
		WithIdentity(caller.String()))

	result := UpdateReviewResult{
		MatchedCount:  res.MatchedCount,
		ModifiedCount: res.ModifiedCount,
	}

	updated, readErr := uc.store.FindByID(ctx, cmd.ReviewID)
	if readErr != nil {
		uc.logger.WarnContext(ctx, "failed to read back updated review",
			slog.String("review_id", cmd.ReviewID.String()),
			slog.String("error", readErr.Error()),
		)
		return result, nil
	}
	result.Review = updated

	uc.logger.DebugContext(ctx, "review updated",
		slog.String("review_id", cmd.ReviewID.String()),
		slog.Int64("modified", res.ModifiedCount),
	)
	return result, nil
}

var _ appcore.UseCase[UpdateReviewCommand, UpdateReviewResult] = (*UpdateReviewUseCase)(nil)
