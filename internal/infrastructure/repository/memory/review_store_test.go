package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	reviewapp "github.com/lllypuk/reviewguard/internal/application/review"
	"github.com/lllypuk/reviewguard/internal/domain/errs"
	"github.com/lllypuk/reviewguard/internal/domain/objectid"
	"github.com/lllypuk/reviewguard/internal/domain/review"
	"github.com/lllypuk/reviewguard/internal/infrastructure/repository/memory"
)

func seed(t *testing.T, store *memory.ReviewStore, author review.Identity) *review.Review {
	t.Helper()
	r, err := review.NewReview("P1", "Great!", author)
	require.NoError(t, err)
	_, err = store.Insert(context.Background(), r)
	require.NoError(t, err)
	return r
}

func TestReviewStore_InsertAndFind(t *testing.T) {
	store := memory.NewReviewStore()
	r := seed(t, store, "u1")

	found, err := store.FindByID(context.Background(), r.ID())
	require.NoError(t, err)
	assert.Equal(t, r.Message(), found.Message())

	_, err = store.Insert(context.Background(), r)
	require.ErrorIs(t, err, errs.ErrAlreadyExists)

	_, err = store.FindByID(context.Background(), objectid.New())
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestReviewStore_ConditionalUpdate_AuthorPredicate(t *testing.T) {
	store := memory.NewReviewStore()
	r := seed(t, store, "u1")
	msg := "edited"

	other := review.Identity("u2")
	res, err := store.ConditionalUpdate(context.Background(), r.ID(),
		reviewapp.Predicate{AuthorEquals: &other}, reviewapp.Mutation{SetMessage: &msg})
	require.NoError(t, err)
	assert.Equal(t, reviewapp.UpdateResult{}, res)

	owner := review.Identity("u1")
	res, err = store.ConditionalUpdate(context.Background(), r.ID(),
		reviewapp.Predicate{AuthorEquals: &owner}, reviewapp.Mutation{SetMessage: &msg})
	require.NoError(t, err)
	assert.Equal(t, reviewapp.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, res)

	found, err := store.FindByID(context.Background(), r.ID())
	require.NoError(t, err)
	assert.Equal(t, "edited", found.Message())
}

func TestReviewStore_ConditionalUpdateAndFetch_NotLikedBy(t *testing.T) {
	store := memory.NewReviewStore()
	r := seed(t, store, "u1")
	liker := review.Identity("u2")
	p := reviewapp.Predicate{NotLikedBy: &liker}
	m := reviewapp.Mutation{AddLiker: &liker}

	updated, err := store.ConditionalUpdateAndFetch(context.Background(), r.ID(), p, m)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.LikesCount())
	assert.True(t, updated.IsConsistent())

	_, err = store.ConditionalUpdateAndFetch(context.Background(), r.ID(), p, m)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestReviewStore_RacePrimitivesBreakConsistency(t *testing.T) {
	store := memory.NewReviewStore()
	r := seed(t, store, "u1")
	seed(t, store, "u3")

	require.NoError(t, store.IncrementLikes(context.Background(), r.ID()))
	require.NoError(t, store.IncrementLikes(context.Background(), r.ID()))
	require.NoError(t, store.AppendLiker(context.Background(), r.ID(), "u2"))

	count, err := store.CountInconsistent(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestReviewStore_CountInconsistent_RepeatedLikerWithMatchingCounter(t *testing.T) {
	store := memory.NewReviewStore()
	r := seed(t, store, "u1")
	ctx := context.Background()

	for range 2 {
		require.NoError(t, store.IncrementLikes(ctx, r.ID()))
		require.NoError(t, store.AppendLiker(ctx, r.ID(), "u2"))
	}

	found, err := store.FindByID(ctx, r.ID())
	require.NoError(t, err)
	assert.Equal(t, len(found.LikedBy()), found.LikesCount())
	assert.False(t, found.IsConsistent())

	count, err := store.CountInconsistent(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestReviewStore_CanceledContext(t *testing.T) {
	store := memory.NewReviewStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.FindByID(ctx, objectid.New())
	require.ErrorIs(t, err, context.Canceled)
}
