package review

import (
	"context"
	"log/slog"
	"strings"

	"github.com/lllypuk/reviewguard/internal/application/appcore"
	"github.com/lllypuk/reviewguard/internal/domain/anomaly"
	"github.com/lllypuk/reviewguard/internal/domain/review"
)

// CreateReviewUseCase persists a new review authored by the caller.
type CreateReviewUseCase struct {
	appcore.BaseUseCase

	store     Store
	sanitizer Sanitizer
	signaler  AnomalySignaler
	logger    *slog.Logger
}

// NewCreateReviewUseCase creates a new CreateReviewUseCase.
func NewCreateReviewUseCase(
	store Store,
	sanitizer Sanitizer,
	signaler AnomalySignaler,
	logger *slog.Logger,
) *CreateReviewUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &CreateReviewUseCase{
		store:     store,
		sanitizer: sanitizer,
		signaler:  signaler,
		logger:    logger,
	}
}

// Execute validates and stores the review. The asserted author only feeds
// the forgedAuthor signal.
func (uc *CreateReviewUseCase) Execute(ctx context.Context, cmd CreateReviewCommand) (Result, error) {
	if err := requireCaller(cmd.Caller); err != nil {
		return Result{}, err
	}

	product, message, err := uc.validate(cmd)
	if err != nil {
		return Result{}, err
	}

	if ctxErr := uc.ValidateContext(ctx); ctxErr != nil {
		return Result{}, NewStoreError(ctxErr)
	}

	r, err := review.NewReview(product, message, cmd.Caller)
	if err != nil {
		return Result{}, NewValidationError("invalid review")
	}

	if _, err = uc.store.Insert(ctx, r); err != nil {
		uc.logger.ErrorContext(ctx, "failed to insert review",
			slog.String("product", product),
			slog.String("error", err.Error()),
		)
		return Result{}, NewStoreError(err)
	}

	forged := cmd.AssertedAuthor != "" && review.Identity(cmd.AssertedAuthor) != cmd.Caller
	if forged {
		uc.logger.WarnContext(ctx, "review created with forged author",
			slog.String("review_id", r.ID().String()),
			slog.String("caller", cmd.Caller.String()),
		)
	}
	uc.signaler.Signal(ctx, anomaly.NewSignal(anomaly.ForgedAuthor, forged).
		WithReview(r.ID().String()).
		WithIdentity(cmd.Caller.String()))

	uc.logger.DebugContext(ctx, "review created",
		slog.String("review_id", r.ID().String()),
		slog.String("product", product),
	)

	return Result{Value: r}, nil
}

func (uc *CreateReviewUseCase) validate(cmd CreateReviewCommand) (string, string, error) {
	if err := appcore.ValidateRequired("product", cmd.Product); err != nil {
		return "", "", NewValidationError(err.Error())
	}
	if err := appcore.ValidateMaxLength("product", cmd.Product, review.MaxProductLength); err != nil {
		return "", "", NewValidationError(err.Error())
	}
	if err := appcore.ValidateMaxLength("author", cmd.AssertedAuthor, review.MaxAuthorLength); err != nil {
		return "", "", NewValidationError(err.Error())
	}

	product := strings.TrimSpace(uc.sanitizer.Sanitize(cmd.Product))
	if product == "" {
		return "", "", NewValidationError("product is empty after sanitization")
	}

	message, err := cleanMessage(uc.sanitizer, cmd.Message)
	if err != nil {
		return "", "", err
	}
	return product, message, nil
}
