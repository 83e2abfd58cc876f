package review_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	reviewapp "github.com/lllypuk/reviewguard/internal/application/review"
	"github.com/lllypuk/reviewguard/internal/domain/anomaly"
)

func newRaceUseCase(f *fixture, threshold int) *reviewapp.SimulateLikeRaceUseCase {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return reviewapp.NewSimulateLikeRaceUseCase(f.store, f.signaler, logger, 50*time.Millisecond, threshold)
}

func TestSimulateLikeRace_SingleCallIsCreditedOnce(t *testing.T) {
	f := newFixture()
	r := f.seed("P1", "Great!", u1)
	uc := newRaceUseCase(f, reviewapp.DefaultRaceThreshold)

	result, err := uc.Execute(context.Background(), reviewapp.SimulateLikeRaceCommand{ReviewID: r.ID(), Caller: u2})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Value.LikesCount())
	assert.Equal(t, 1, result.Value.Occurrences(u2))
	assert.Equal(t, 0, f.signaler.observed(anomaly.LikeRaceAnomaly))
}

func TestSimulateLikeRace_ConcurrentCallsDoubleCredit(t *testing.T) {
	const attempts = 5

	f := newFixture()
	r := f.seed("P1", "Great!", u1)
	uc := newRaceUseCase(f, reviewapp.DefaultRaceThreshold)

	var wg sync.WaitGroup
	for range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = uc.Execute(context.Background(), reviewapp.SimulateLikeRaceCommand{ReviewID: r.ID(), Caller: u2})
		}()
	}
	wg.Wait()

	stored, err := f.store.ReviewStore.FindByID(context.Background(), r.ID())
	require.NoError(t, err)
	assert.Greater(t, stored.Occurrences(u2), reviewapp.DefaultRaceThreshold)
	assert.Positive(t, f.signaler.observed(anomaly.LikeRaceAnomaly))

	// Each double credit bumps the counter too, so only the repeated liker
	// gives the review away.
	assert.Equal(t, len(stored.LikedBy()), stored.LikesCount())
	assert.False(t, stored.IsConsistent())
	inconsistent, err := f.store.CountInconsistent(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), inconsistent)
}

func TestSimulateLikeRace_AlreadyLiked(t *testing.T) {
	f := newFixture()
	r := f.seed("P1", "Great!", u1)
	uc := newRaceUseCase(f, reviewapp.DefaultRaceThreshold)

	_, err := f.like.Execute(context.Background(), reviewapp.LikeReviewCommand{ReviewID: r.ID(), Caller: u2})
	require.NoError(t, err)

	_, err = uc.Execute(context.Background(), reviewapp.SimulateLikeRaceCommand{ReviewID: r.ID(), Caller: u2})
	require.ErrorIs(t, err, reviewapp.ErrAlreadyLiked)
}

func TestSimulateLikeRace_ContextCanceledDuringDelay(t *testing.T) {
	f := newFixture()
	r := f.seed("P1", "Great!", u1)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	uc := reviewapp.NewSimulateLikeRaceUseCase(f.store, f.signaler, logger, time.Minute, 2)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := uc.Execute(ctx, reviewapp.SimulateLikeRaceCommand{ReviewID: r.ID(), Caller: u2})

	assert.True(t, reviewapp.IsKind(err, reviewapp.KindStore))
}
