// Package anomaly describes the diagnostic signals raised by review operations.
// Signals are telemetry only; nothing in the request path branches on them.
package anomaly

import (
	"time"

	"github.com/google/uuid"
)

// Condition names a detectable anomaly.
type Condition string

const (
	// ForgedAuthor: the client asserted an author different from the caller.
	ForgedAuthor Condition = "forgedAuthor"

	// ForgedReviewUpdate: an ownership-scoped update mutated a review whose
	// previously read author is not the caller.
	ForgedReviewUpdate Condition = "forgedReviewUpdate"

	// LikeRaceAnomaly: the like-set and counter diverged, or an identity was
	// credited more than once.
	LikeRaceAnomaly Condition = "likeRaceAnomaly"
)

// Conditions lists every known condition, in a stable order.
func Conditions() []Condition {
	return []Condition{ForgedAuthor, ForgedReviewUpdate, LikeRaceAnomaly}
}

// IsValid reports whether c is a known condition.
func (c Condition) IsValid() bool {
	switch c {
	case ForgedAuthor, ForgedReviewUpdate, LikeRaceAnomaly:
		return true
	default:
		return false
	}
}

// Signal is one evaluation of a condition.
type Signal struct {
	ID         string    `json:"id"`
	Condition  Condition `json:"condition"`
	Observed   bool      `json:"observed"`
	ReviewID   string    `json:"review_id,omitempty"`
	Identity   string    `json:"identity,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewSignal creates a signal stamped with a fresh id and the current time.
func NewSignal(condition Condition, observed bool) Signal {
	return Signal{
		ID:         uuid.New().String(),
		Condition:  condition,
		Observed:   observed,
		OccurredAt: time.Now().UTC(),
	}
}

// WithReview attaches the review id.
func (s Signal) WithReview(reviewID string) Signal {
	s.ReviewID = reviewID
	return s
}

// WithIdentity attaches the caller identity.
func (s Signal) WithIdentity(identity string) Signal {
	s.Identity = identity
	return s
}
