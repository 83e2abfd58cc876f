package review

import "github.com/lllypuk/reviewguard/internal/domain/objectid"

// GetReviewQuery fetches a single review.
type GetReviewQuery struct {
	ReviewID objectid.ID
}

// QueryName returns query name
func (q GetReviewQuery) QueryName() string { return "GetReview" }

// ListReviewsQuery lists reviews of a product, newest first.
type ListReviewsQuery struct {
	Product string
	Limit   int
	Offset  int
}

// QueryName returns query name
func (q ListReviewsQuery) QueryName() string { return "ListReviews" }
