package review

import (
	"github.com/lllypuk/reviewguard/internal/domain/objectid"
	"github.com/lllypuk/reviewguard/internal/domain/review"
)

// CreateReviewCommand creates a review on a product.
type CreateReviewCommand struct {
	Product string
	Message string
	// AssertedAuthor is whatever the client claimed. It is compared with
	// Caller for anomaly detection and otherwise ignored.
	AssertedAuthor string
	Caller         review.Identity
}

// CommandName returns command name
func (c CreateReviewCommand) CommandName() string { return "CreateReview" }

// UpdateReviewCommand replaces the message of a review owned by Caller.
type UpdateReviewCommand struct {
	ReviewID objectid.ID
	Message  string
	Caller   review.Identity
}

// CommandName returns command name
func (c UpdateReviewCommand) CommandName() string { return "UpdateReview" }

// LikeReviewCommand adds Caller to the like-set of a review.
type LikeReviewCommand struct {
	ReviewID objectid.ID
	Caller   review.Identity
}

// CommandName returns command name
func (c LikeReviewCommand) CommandName() string { return "LikeReview" }

// SimulateLikeRaceCommand runs the two-phase like used for race diagnostics.
type SimulateLikeRaceCommand struct {
	ReviewID objectid.ID
	Caller   review.Identity
}

// CommandName returns command name
func (c SimulateLikeRaceCommand) CommandName() string { return "SimulateLikeRace" }
