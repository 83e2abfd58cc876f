// Package memory provides an in-process review store for mock mode and tests.
package memory

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	reviewapp "github.com/lllypuk/reviewguard/internal/application/review"
	"github.com/lllypuk/reviewguard/internal/domain/errs"
	"github.com/lllypuk/reviewguard/internal/domain/objectid"
	"github.com/lllypuk/reviewguard/internal/domain/review"
)

type document struct {
	id         objectid.ID
	product    string
	message    string
	author     review.Identity
	likesCount int
	likedBy    []review.Identity
	createdAt  time.Time
	updatedAt  time.Time
}

func (d *document) toDomain() *review.Review {
	return review.Reconstruct(
		d.id,
		d.product,
		d.message,
		d.author,
		d.likesCount,
		slices.Clone(d.likedBy),
		d.createdAt,
		d.updatedAt,
	)
}

func (d *document) matches(p reviewapp.Predicate) bool {
	if p.AuthorEquals != nil && d.author != *p.AuthorEquals {
		return false
	}
	if p.NotLikedBy != nil && slices.Contains(d.likedBy, *p.NotLikedBy) {
		return false
	}
	return true
}

// apply mutates d and reports whether anything changed. Like the MongoDB
// store, every mutation touches updatedAt. AddLiker follows $addToSet
// semantics for the set and $inc for the counter.
func (d *document) apply(m reviewapp.Mutation) bool {
	modified := false
	if m.SetMessage != nil {
		d.message = *m.SetMessage
		modified = true
	}
	if m.AddLiker != nil {
		if !slices.Contains(d.likedBy, *m.AddLiker) {
			d.likedBy = append(d.likedBy, *m.AddLiker)
		}
		d.likesCount++
		modified = true
	}
	if modified {
		d.updatedAt = time.Now().UTC()
	}
	return modified
}

// ReviewStore keeps reviews in a map. The mutex stands in for the
// single-document atomicity a real store provides: each method is one
// atomic step, and nothing spans two calls.
type ReviewStore struct {
	mu   sync.Mutex
	docs map[objectid.ID]*document
}

// NewReviewStore creates an empty store.
func NewReviewStore() *ReviewStore {
	return &ReviewStore{docs: make(map[objectid.ID]*document)}
}

// FindByID returns errs.ErrNotFound when the review does not exist.
func (s *ReviewStore) FindByID(ctx context.Context, id objectid.ID) (*review.Review, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return doc.toDomain(), nil
}

// Insert stores a new review.
func (s *ReviewStore) Insert(ctx context.Context, r *review.Review) (objectid.ID, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if r == nil {
		return "", errs.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.docs[r.ID()]; exists {
		return "", errs.ErrAlreadyExists
	}
	s.docs[r.ID()] = &document{
		id:         r.ID(),
		product:    r.Product(),
		message:    r.Message(),
		author:     r.Author(),
		likesCount: r.LikesCount(),
		likedBy:    r.LikedBy(),
		createdAt:  r.CreatedAt(),
		updatedAt:  r.UpdatedAt(),
	}
	return r.ID(), nil
}

// ConditionalUpdate applies m when the review matches p.
func (s *ReviewStore) ConditionalUpdate(
	ctx context.Context,
	id objectid.ID,
	p reviewapp.Predicate,
	m reviewapp.Mutation,
) (reviewapp.UpdateResult, error) {
	if err := ctx.Err(); err != nil {
		return reviewapp.UpdateResult{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[id]
	if !ok || !doc.matches(p) {
		return reviewapp.UpdateResult{}, nil
	}
	result := reviewapp.UpdateResult{MatchedCount: 1}
	if doc.apply(m) {
		result.ModifiedCount = 1
	}
	return result, nil
}

// ConditionalUpdateAndFetch applies m when the review matches p and returns
// the resulting document.
func (s *ReviewStore) ConditionalUpdateAndFetch(
	ctx context.Context,
	id objectid.ID,
	p reviewapp.Predicate,
	m reviewapp.Mutation,
) (*review.Review, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[id]
	if !ok || !doc.matches(p) {
		return nil, errs.ErrNotFound
	}
	doc.apply(m)
	return doc.toDomain(), nil
}

// FindByProduct lists reviews of a product, newest first.
func (s *ReviewStore) FindByProduct(
	ctx context.Context,
	product string,
	pagination reviewapp.Pagination,
) ([]*review.Review, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	matched := make([]*document, 0)
	for _, doc := range s.docs {
		if doc.product == product {
			matched = append(matched, doc)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].createdAt.Equal(matched[j].createdAt) {
			return matched[i].id > matched[j].id
		}
		return matched[i].createdAt.After(matched[j].createdAt)
	})
	result := make([]*review.Review, 0, len(matched))
	for _, doc := range matched {
		result = append(result, doc.toDomain())
	}
	s.mu.Unlock()

	start := pagination.Offset
	if start >= len(result) {
		return []*review.Review{}, nil
	}
	end := len(result)
	if pagination.Limit > 0 && start+pagination.Limit < end {
		end = start + pagination.Limit
	}
	return result[start:end], nil
}

// IncrementLikes bumps likesCount without touching likedBy.
func (s *ReviewStore) IncrementLikes(ctx context.Context, id objectid.ID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[id]
	if !ok {
		return errs.ErrNotFound
	}
	doc.likesCount++
	doc.updatedAt = time.Now().UTC()
	return nil
}

// AppendLiker appends identity to likedBy without deduplication.
func (s *ReviewStore) AppendLiker(ctx context.Context, id objectid.ID, identity review.Identity) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[id]
	if !ok {
		return errs.ErrNotFound
	}
	doc.likedBy = append(doc.likedBy, identity)
	doc.updatedAt = time.Now().UTC()
	return nil
}

// CountInconsistent counts reviews that fail review.IsConsistent: a counter
// that differs from the liker list, or a liker listed twice.
func (s *ReviewStore) CountInconsistent(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	for _, doc := range s.docs {
		if !doc.toDomain().IsConsistent() {
			count++
		}
	}
	return count, nil
}

// Ping always succeeds.
func (s *ReviewStore) Ping(context.Context) error {
	return nil
}

var (
	_ reviewapp.RaceSimulationStore = (*ReviewStore)(nil)
	_ reviewapp.ConsistencyCounter  = (*ReviewStore)(nil)
)
