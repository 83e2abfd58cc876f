package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	reviewapp "github.com/lllypuk/reviewguard/internal/application/review"
	"github.com/lllypuk/reviewguard/internal/domain/errs"
	"github.com/lllypuk/reviewguard/internal/domain/objectid"
	"github.com/lllypuk/reviewguard/internal/domain/review"
	"github.com/lllypuk/reviewguard/internal/infrastructure/metrics"
	"github.com/lllypuk/reviewguard/internal/infrastructure/repository/memory"
	"github.com/lllypuk/reviewguard/internal/service"
)

type passthroughSanitizer struct{}

func (passthroughSanitizer) Sanitize(s string) string { return s }

func newService(t *testing.T, store *memory.ReviewStore, simulate bool) (*service.ReviewService, *metrics.ReviewMetrics) {
	t.Helper()

	m := metrics.NewReviewMetrics(prometheus.NewRegistry())
	signaler := reviewapp.NoopSignaler{}

	cfg := service.ReviewServiceConfig{
		CreateUC: reviewapp.NewCreateReviewUseCase(store, passthroughSanitizer{}, signaler, nil),
		UpdateUC: reviewapp.NewUpdateReviewUseCase(store, passthroughSanitizer{}, signaler, nil),
		LikeUC:   reviewapp.NewLikeReviewUseCase(store, signaler, nil),
		GetUC:    reviewapp.NewGetReviewUseCase(store),
		ListUC:   reviewapp.NewListReviewsUseCase(store),
	}
	if simulate {
		cfg.SimulateUC = reviewapp.NewSimulateLikeRaceUseCase(store, signaler, nil, time.Millisecond, 2)
	}
	return service.NewReviewService(cfg, service.WithMetrics(m)), m
}

func TestReviewService_Flow(t *testing.T) {
	store := memory.NewReviewStore()
	svc, m := newService(t, store, false)
	ctx := context.Background()

	id, err := svc.CreateReview(ctx, reviewapp.CreateReviewCommand{
		Product: "P1",
		Message: "Great!",
		Caller:  "u1@example.com",
	})
	require.NoError(t, err)
	assert.False(t, id.IsZero())

	liked, err := svc.LikeReview(ctx, reviewapp.LikeReviewCommand{ReviewID: id, Caller: "u2@example.com"})
	require.NoError(t, err)
	assert.Equal(t, 1, liked.Value.LikesCount())

	_, err = svc.LikeReview(ctx, reviewapp.LikeReviewCommand{ReviewID: id, Caller: "u2@example.com"})
	require.ErrorIs(t, err, reviewapp.ErrAlreadyLiked)

	_, err = svc.UpdateReview(ctx, reviewapp.UpdateReviewCommand{ReviewID: id, Message: "Edited", Caller: "u2@example.com"})
	require.ErrorIs(t, err, errs.ErrForbidden)

	got, err := svc.GetReview(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Great!", got.Value.Message())

	list, err := svc.ListReviews(ctx, reviewapp.ListReviewsQuery{Product: "P1"})
	require.NoError(t, err)
	assert.Len(t, list.Value, 1)

	assert.InDelta(t, 1, testutil.ToFloat64(m.OperationsTotal.WithLabelValues("create", metrics.OutcomeSuccess)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.OperationsTotal.WithLabelValues("like", metrics.OutcomeSuccess)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.OperationsTotal.WithLabelValues("like", "authorization")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.OperationsTotal.WithLabelValues("update", "authorization")), 0)
	assert.Equal(t, 5, testutil.CollectAndCount(m.OperationDuration))
}

func TestReviewService_ValidationOutcome(t *testing.T) {
	svc, m := newService(t, memory.NewReviewStore(), false)

	_, err := svc.GetReview(context.Background(), objectid.ID(""))
	require.Error(t, err)

	assert.InDelta(t, 1, testutil.ToFloat64(m.OperationsTotal.WithLabelValues("get", "validation")), 0)
}

func TestReviewService_Simulation(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		svc, _ := newService(t, memory.NewReviewStore(), false)

		assert.False(t, svc.SimulationEnabled())
		_, err := svc.SimulateLikeRace(context.Background(), reviewapp.SimulateLikeRaceCommand{
			ReviewID: objectid.New(),
			Caller:   "u1@example.com",
		})
		require.ErrorIs(t, err, service.ErrSimulationDisabled)
		assert.True(t, errors.Is(err, errs.ErrNotFound))
	})

	t.Run("enabled", func(t *testing.T) {
		store := memory.NewReviewStore()
		svc, _ := newService(t, store, true)
		ctx := context.Background()

		id, err := svc.CreateReview(ctx, reviewapp.CreateReviewCommand{Product: "P1", Message: "m", Caller: "a@x"})
		require.NoError(t, err)

		assert.True(t, svc.SimulationEnabled())
		result, err := svc.SimulateLikeRace(ctx, reviewapp.SimulateLikeRaceCommand{ReviewID: id, Caller: "b@x"})
		require.NoError(t, err)
		assert.Equal(t, []review.Identity{"b@x"}, result.Value.LikedBy())
	})
}
