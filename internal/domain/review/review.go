// Package review holds the Review aggregate and its invariants.
package review

import (
	"time"
	"unicode/utf8"

	"github.com/lllypuk/reviewguard/internal/domain/errs"
	"github.com/lllypuk/reviewguard/internal/domain/objectid"
)

const (
	// MaxMessageLength is the maximum review text length in runes.
	MaxMessageLength = 1000

	// MaxAuthorLength bounds the advisory author field sent by clients.
	MaxAuthorLength = 100

	// MaxProductLength bounds the product reference.
	MaxProductLength = 100
)

// Identity is the authenticated caller's stable reference. It is used as the
// review author and as a member of the like-set.
type Identity string

// String returns the identity as a string.
func (i Identity) String() string {
	return string(i)
}

// IsZero reports whether no identity is set.
func (i Identity) IsZero() bool {
	return i == ""
}

// Review is a user-submitted product review.
type Review struct {
	id         objectid.ID
	product    string
	message    string
	author     Identity
	likesCount int
	likedBy    []Identity
	createdAt  time.Time
	updatedAt  time.Time
}

// NewReview creates a review authored by author. The author always comes from
// the resolved caller, never from request data.
func NewReview(product, message string, author Identity) (*Review, error) {
	if product == "" || utf8.RuneCountInString(product) > MaxProductLength {
		return nil, errs.ErrInvalidInput
	}
	if err := ValidateMessage(message); err != nil {
		return nil, err
	}
	if author.IsZero() {
		return nil, errs.ErrInvalidInput
	}

	now := time.Now().UTC()
	return &Review{
		id:         objectid.New(),
		product:    product,
		message:    message,
		author:     author,
		likesCount: 0,
		likedBy:    make([]Identity, 0),
		createdAt:  now,
		updatedAt:  now,
	}, nil
}

// Reconstruct rebuilds a review from persisted state.
func Reconstruct(
	id objectid.ID,
	product string,
	message string,
	author Identity,
	likesCount int,
	likedBy []Identity,
	createdAt time.Time,
	updatedAt time.Time,
) *Review {
	if likedBy == nil {
		likedBy = make([]Identity, 0)
	}
	return &Review{
		id:         id,
		product:    product,
		message:    message,
		author:     author,
		likesCount: likesCount,
		likedBy:    likedBy,
		createdAt:  createdAt,
		updatedAt:  updatedAt,
	}
}

// ValidateMessage checks the message length bounds shared by create and update.
func ValidateMessage(message string) error {
	n := utf8.RuneCountInString(message)
	if n == 0 || n > MaxMessageLength {
		return errs.ErrInvalidInput
	}
	return nil
}

// IsAuthoredBy reports whether identity is the stored author.
func (r *Review) IsAuthoredBy(identity Identity) bool {
	return !identity.IsZero() && r.author == identity
}

// HasLiked reports whether identity is in the like-set.
func (r *Review) HasLiked(identity Identity) bool {
	return r.Occurrences(identity) > 0
}

// Occurrences counts how many times identity appears in likedBy. Anything
// above one means the like-set invariant was broken.
func (r *Review) Occurrences(identity Identity) int {
	count := 0
	for _, liker := range r.likedBy {
		if liker == identity {
			count++
		}
	}
	return count
}

// IsConsistent reports whether likesCount equals the number of distinct likers
// and no liker appears twice.
func (r *Review) IsConsistent() bool {
	seen := make(map[Identity]struct{}, len(r.likedBy))
	for _, liker := range r.likedBy {
		if _, dup := seen[liker]; dup {
			return false
		}
		seen[liker] = struct{}{}
	}
	return r.likesCount == len(r.likedBy)
}

// ID returns the review id.
func (r *Review) ID() objectid.ID {
	return r.id
}

// Product returns the product reference.
func (r *Review) Product() string {
	return r.product
}

// Message returns the review text.
func (r *Review) Message() string {
	return r.message
}

// Author returns the identity that created the review.
func (r *Review) Author() Identity {
	return r.author
}

// LikesCount returns the like counter.
func (r *Review) LikesCount() int {
	return r.likesCount
}

// LikedBy returns a copy of the like-set.
func (r *Review) LikedBy() []Identity {
	likedBy := make([]Identity, len(r.likedBy))
	copy(likedBy, r.likedBy)
	return likedBy
}

// CreatedAt returns the creation time.
func (r *Review) CreatedAt() time.Time {
	return r.createdAt
}

// UpdatedAt returns the last modification time.
func (r *Review) UpdatedAt() time.Time {
	return r.updatedAt
}
