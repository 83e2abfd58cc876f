package review

import (
	"context"

	"github.com/lllypuk/reviewguard/internal/domain/objectid"
	"github.com/lllypuk/reviewguard/internal/domain/review"
)

// Pagination holds page parameters for review listings.
type Pagination struct {
	Limit  int
	Offset int
}

// Predicate narrows a conditional update. All set fields must hold for the
// document to match. An empty predicate matches by id only.
type Predicate struct {
	// AuthorEquals requires author == *AuthorEquals.
	AuthorEquals *review.Identity
	// NotLikedBy requires *NotLikedBy not to be in likedBy.
	NotLikedBy *review.Identity
}

// Mutation is applied atomically to a matched document.
type Mutation struct {
	// SetMessage replaces the message.
	SetMessage *string
	// AddLiker adds the identity to likedBy and increments likesCount by one.
	AddLiker *review.Identity
}

// UpdateResult mirrors the store's matched/modified counters.
type UpdateResult struct {
	MatchedCount  int64
	ModifiedCount int64
}

// Store persists reviews. Every conditional method evaluates its predicate and
// applies its mutation as one atomic step on the store side.
// The interface is declared on the consumer side (application layer).
type Store interface {
	// FindByID returns errs.ErrNotFound when the review does not exist.
	FindByID(ctx context.Context, id objectid.ID) (*review.Review, error)

	// Insert stores a new review and returns its id.
	Insert(ctx context.Context, r *review.Review) (objectid.ID, error)

	// ConditionalUpdate applies m if the review matches p.
	ConditionalUpdate(ctx context.Context, id objectid.ID, p Predicate, m Mutation) (UpdateResult, error)

	// ConditionalUpdateAndFetch applies m if the review matches p and returns
	// the post-update document. No match yields errs.ErrNotFound.
	ConditionalUpdateAndFetch(ctx context.Context, id objectid.ID, p Predicate, m Mutation) (*review.Review, error)

	// FindByProduct lists reviews of a product, newest first.
	FindByProduct(ctx context.Context, product string, pagination Pagination) ([]*review.Review, error)
}

// RaceSimulationStore exposes the unconditional two-step like primitives used
// only by the race simulation. Production paths never call them.
type RaceSimulationStore interface {
	Store

	// IncrementLikes increments likesCount without touching likedBy.
	IncrementLikes(ctx context.Context, id objectid.ID) error

	// AppendLiker appends identity to likedBy without deduplication.
	AppendLiker(ctx context.Context, id objectid.ID, identity review.Identity) error
}

// ConsistencyCounter reports how many stored reviews break the
// likesCount == |likedBy| invariant.
type ConsistencyCounter interface {
	CountInconsistent(ctx context.Context) (int64, error)
}
