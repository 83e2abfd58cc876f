package review_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	reviewapp "github.com/lllypuk/reviewguard/internal/application/review"
	"github.com/lllypuk/reviewguard/internal/domain/objectid"
	"github.com/lllypuk/reviewguard/internal/domain/review"
)

func TestScenario_CreateThenLikeTwice(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	created, err := f.create.Execute(ctx, reviewapp.CreateReviewCommand{Product: "P1", Message: "Great!", Caller: u1})
	require.NoError(t, err)
	assert.Equal(t, 0, created.Value.LikesCount())
	assert.Empty(t, created.Value.LikedBy())

	liked, err := f.like.Execute(ctx, reviewapp.LikeReviewCommand{ReviewID: created.Value.ID(), Caller: u2})
	require.NoError(t, err)
	assert.Equal(t, 1, liked.Value.LikesCount())
	assert.Equal(t, []review.Identity{u2}, liked.Value.LikedBy())

	_, err = f.like.Execute(ctx, reviewapp.LikeReviewCommand{ReviewID: created.Value.ID(), Caller: u2})
	require.ErrorIs(t, err, reviewapp.ErrAlreadyLiked)

	got, err := f.get.Execute(ctx, reviewapp.GetReviewQuery{ReviewID: created.Value.ID()})
	require.NoError(t, err)
	assert.Equal(t, 1, got.Value.LikesCount())
}

func TestScenario_OnlyOwnerUpdates(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	created, err := f.create.Execute(ctx, reviewapp.CreateReviewCommand{Product: "P1", Message: "Great!", Caller: u1})
	require.NoError(t, err)
	id := created.Value.ID()

	_, err = f.update.Execute(ctx, reviewapp.UpdateReviewCommand{ReviewID: id, Message: "mine now", Caller: u2})
	require.ErrorIs(t, err, reviewapp.ErrNotOwner)

	updated, err := f.update.Execute(ctx, reviewapp.UpdateReviewCommand{ReviewID: id, Message: "Still great", Caller: u1})
	require.NoError(t, err)
	assert.Equal(t, "Still great", updated.Review.Message())
	assert.Equal(t, u1, updated.Review.Author())
}

func TestScenario_UpdateMissingReviewIsNotFound(t *testing.T) {
	f := newFixture()

	_, err := f.update.Execute(context.Background(), reviewapp.UpdateReviewCommand{
		ReviewID: objectid.New(),
		Message:  "hello",
		Caller:   u1,
	})

	assert.True(t, reviewapp.IsKind(err, reviewapp.KindNotFound))
	assert.False(t, reviewapp.IsKind(err, reviewapp.KindAuthorization))
}
