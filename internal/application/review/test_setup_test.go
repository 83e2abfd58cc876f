package review_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"

	reviewapp "github.com/lllypuk/reviewguard/internal/application/review"
	"github.com/lllypuk/reviewguard/internal/domain/anomaly"
	"github.com/lllypuk/reviewguard/internal/domain/objectid"
	"github.com/lllypuk/reviewguard/internal/domain/review"
	"github.com/lllypuk/reviewguard/internal/infrastructure/repository/memory"
)

const (
	u1 review.Identity = "u1@example.com"
	u2 review.Identity = "u2@example.com"
)

var errStoreDown = errors.New("connection refused")

// tagStripper removes anything between angle brackets.
type tagStripper struct{}

func (tagStripper) Sanitize(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return b.String()
}

type recordingSignaler struct {
	mu      sync.Mutex
	signals []anomaly.Signal
}

func (s *recordingSignaler) Signal(_ context.Context, sig anomaly.Signal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signals = append(s.signals, sig)
}

func (s *recordingSignaler) observed(c anomaly.Condition) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, sig := range s.signals {
		if sig.Condition == c && sig.Observed {
			n++
		}
	}
	return n
}

func (s *recordingSignaler) count(c anomaly.Condition) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, sig := range s.signals {
		if sig.Condition == c {
			n++
		}
	}
	return n
}

// spyStore records every call and can fail on demand.
type spyStore struct {
	*memory.ReviewStore

	mu    sync.Mutex
	calls []string
	err   error
}

func newSpyStore() *spyStore {
	return &spyStore{ReviewStore: memory.NewReviewStore()}
}

func (s *spyStore) record(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, name)
	return s.err
}

func (s *spyStore) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func (s *spyStore) FindByID(ctx context.Context, id objectid.ID) (*review.Review, error) {
	if err := s.record("FindByID"); err != nil {
		return nil, err
	}
	return s.ReviewStore.FindByID(ctx, id)
}

func (s *spyStore) Insert(ctx context.Context, r *review.Review) (objectid.ID, error) {
	if err := s.record("Insert"); err != nil {
		return "", err
	}
	return s.ReviewStore.Insert(ctx, r)
}

func (s *spyStore) ConditionalUpdate(
	ctx context.Context,
	id objectid.ID,
	p reviewapp.Predicate,
	m reviewapp.Mutation,
) (reviewapp.UpdateResult, error) {
	if err := s.record("ConditionalUpdate"); err != nil {
		return reviewapp.UpdateResult{}, err
	}
	return s.ReviewStore.ConditionalUpdate(ctx, id, p, m)
}

func (s *spyStore) ConditionalUpdateAndFetch(
	ctx context.Context,
	id objectid.ID,
	p reviewapp.Predicate,
	m reviewapp.Mutation,
) (*review.Review, error) {
	if err := s.record("ConditionalUpdateAndFetch"); err != nil {
		return nil, err
	}
	return s.ReviewStore.ConditionalUpdateAndFetch(ctx, id, p, m)
}

func (s *spyStore) FindByProduct(
	ctx context.Context,
	product string,
	pagination reviewapp.Pagination,
) ([]*review.Review, error) {
	if err := s.record("FindByProduct"); err != nil {
		return nil, err
	}
	return s.ReviewStore.FindByProduct(ctx, product, pagination)
}

type fixture struct {
	store    *spyStore
	signaler *recordingSignaler
	create   *reviewapp.CreateReviewUseCase
	update   *reviewapp.UpdateReviewUseCase
	like     *reviewapp.LikeReviewUseCase
	get      *reviewapp.GetReviewUseCase
	list     *reviewapp.ListReviewsUseCase
}

func newFixture() *fixture {
	store := newSpyStore()
	signaler := &recordingSignaler{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &fixture{
		store:    store,
		signaler: signaler,
		create:   reviewapp.NewCreateReviewUseCase(store, tagStripper{}, signaler, logger),
		update:   reviewapp.NewUpdateReviewUseCase(store, tagStripper{}, signaler, logger),
		like:     reviewapp.NewLikeReviewUseCase(store, signaler, logger),
		get:      reviewapp.NewGetReviewUseCase(store),
		list:     reviewapp.NewListReviewsUseCase(store),
	}
}

func (f *fixture) seed(product, message string, author review.Identity) *review.Review {
	r, err := review.NewReview(product, message, author)
	if err != nil {
		panic(err)
	}
	if _, err = f.store.ReviewStore.Insert(context.Background(), r); err != nil {
		panic(err)
	}
	return r
}
