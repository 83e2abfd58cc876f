package review

import (
	"context"
)

// GetReviewUseCase fetches a review by id.
type GetReviewUseCase struct {
	store Store
}

// NewGetReviewUseCase creates a new GetReviewUseCase.
func NewGetReviewUseCase(store Store) *GetReviewUseCase {
	return &GetReviewUseCase{store: store}
}

// Execute returns the review or ErrReviewNotFound.
func (uc *GetReviewUseCase) Execute(ctx context.Context, query GetReviewQuery) (Result, error) {
	if err := requireReviewID(query.ReviewID); err != nil {
		return Result{}, err
	}
	r, err := loadReview(ctx, uc.store, query.ReviewID)
	if err != nil {
		return Result{}, err
	}
	return Result{Value: r}, nil
}
