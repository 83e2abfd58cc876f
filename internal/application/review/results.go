package review

import (
	"github.com/lllypuk/reviewguard/internal/application/appcore"
	"github.com/lllypuk/reviewguard/internal/domain/review"
)

// Result is the result for a single review.
type Result = appcore.Result[*review.Review]

// ListResult is the result for a review listing.
type ListResult = appcore.Result[[]*review.Review]

// UpdateReviewResult reports the outcome of an ownership-scoped update.
type UpdateReviewResult struct {
	MatchedCount  int64
	ModifiedCount int64
	// Review is the state read back after the update. It may be nil when the
	// read-back failed; the update itself still happened.
	Review *review.Review
}
