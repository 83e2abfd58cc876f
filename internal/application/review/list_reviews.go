package review

import (
	"context"

	"github.com/lllypuk/reviewguard/internal/application/appcore"
	"github.com/lllypuk/reviewguard/internal/domain/review"
)

// ListReviewsUseCase lists the reviews of a product.
type ListReviewsUseCase struct {
	store Store
}

// NewListReviewsUseCase creates a new ListReviewsUseCase.
func NewListReviewsUseCase(store Store) *ListReviewsUseCase {
	return &ListReviewsUseCase{store: store}
}

// Execute returns one page of reviews, newest first.
func (uc *ListReviewsUseCase) Execute(ctx context.Context, query ListReviewsQuery) (ListResult, error) {
	if err := appcore.ValidateRequired("product", query.Product); err != nil {
		return ListResult{}, NewValidationError(err.Error())
	}
	if err := appcore.ValidateMaxLength("product", query.Product, review.MaxProductLength); err != nil {
		return ListResult{}, NewValidationError(err.Error())
	}
	if query.Offset < 0 {
		return ListResult{}, NewValidationError("offset must not be negative")
	}

	limit := query.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	reviews, err := uc.store.FindByProduct(ctx, query.Product, Pagination{Limit: limit, Offset: query.Offset})
	if err != nil {
		return ListResult{}, NewStoreError(err)
	}
	return ListResult{Value: reviews}, nil
}
