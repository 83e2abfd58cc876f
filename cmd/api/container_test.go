package main

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lllypuk/reviewguard/internal/application/appcore"
	reviewapp "github.com/lllypuk/reviewguard/internal/application/review"
	"github.com/lllypuk/reviewguard/internal/config"
	"github.com/lllypuk/reviewguard/internal/domain/review"
	"github.com/lllypuk/reviewguard/internal/infrastructure/httpserver"
	"github.com/lllypuk/reviewguard/internal/infrastructure/repository/memory"
	"github.com/lllypuk/reviewguard/internal/middleware"
)

func mockConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.App.Mode = config.AppModeMock
	return cfg
}

func newMockContainer(t *testing.T, cfg *config.Config) *Container {
	t.Helper()

	c, err := NewContainer(cfg, WithLogger(slog.New(slog.DiscardHandler)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

type stubChecker struct {
	name    string
	healthy bool
}

func (s stubChecker) Name() string { return s.name }

func (s stubChecker) Check(context.Context) appcore.HealthStatus {
	return appcore.HealthStatus{Healthy: s.healthy, Message: s.name + " message"}
}

func TestNewContainer_NilConfig(t *testing.T) {
	c, err := NewContainer(nil)
	require.Error(t, err)
	assert.Nil(t, c)
}

func TestContainerOption_WithLogger(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	c := &Container{}
	WithLogger(logger)(c)
	assert.Same(t, logger, c.Logger)
}

func TestNewContainer_MockMode(t *testing.T) {
	c := newMockContainer(t, mockConfig())

	assert.Nil(t, c.MongoDB)
	assert.Nil(t, c.Redis)
	assert.Nil(t, c.EventBus)
	assert.Nil(t, c.Journal)
	assert.Nil(t, c.Revocations)
	assert.Nil(t, c.RateLimitStore)

	require.NotNil(t, c.TokenValidator)
	assert.IsType(t, &middleware.HMACValidatorAdapter{}, c.TokenValidator)
	assert.IsType(t, &memory.ReviewStore{}, c.ReviewStore)
	require.NotNil(t, c.ReviewService)
	assert.False(t, c.ReviewService.SimulationEnabled())
	assert.NotNil(t, c.ReviewHandler)
	assert.NotNil(t, c.AuthHandler)
	assert.NotNil(t, c.Registry)
}

func TestNewContainer_WeakSecret(t *testing.T) {
	cfg := mockConfig()
	cfg.Auth.JWTSecret = "short"

	c, err := NewContainer(cfg, WithLogger(slog.New(slog.DiscardHandler)))
	require.Error(t, err)
	assert.Nil(t, c)
}

func TestNewContainer_RaceSimulation(t *testing.T) {
	cfg := mockConfig()
	cfg.Reviews.RaceSimulation.Enabled = true

	c := newMockContainer(t, cfg)

	assert.True(t, c.ReviewService.SimulationEnabled())
}

func TestNewContainer_MemoryRateLimit(t *testing.T) {
	cfg := mockConfig()
	cfg.RateLimit.Enabled = true

	c := newMockContainer(t, cfg)

	assert.IsType(t, &middleware.MemoryRateLimitStore{}, c.RateLimitStore)
}

func TestContainer_ReviewFlow(t *testing.T) {
	c := newMockContainer(t, mockConfig())
	ctx := context.Background()

	id, err := c.ReviewService.CreateReview(ctx, reviewapp.CreateReviewCommand{
		Product: "P1",
		Message: "<b>solid</b> product",
		Caller:  "owner@example.com",
	})
	require.NoError(t, err)

	got, err := c.ReviewService.GetReview(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "solid product", got.Value.Message())

	_, err = c.ReviewService.LikeReview(ctx, reviewapp.LikeReviewCommand{ReviewID: id, Caller: "fan@example.com"})
	require.NoError(t, err)

	_, err = c.ReviewService.LikeReview(ctx, reviewapp.LikeReviewCommand{ReviewID: id, Caller: "fan@example.com"})
	require.ErrorIs(t, err, reviewapp.ErrAlreadyLiked)

	got, err = c.ReviewService.GetReview(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Value.LikesCount())
	assert.Equal(t, []review.Identity{"fan@example.com"}, got.Value.LikedBy())

	require.NoError(t, c.Signaler.Wait(ctx))
}

func TestContainer_Close_NoResources(t *testing.T) {
	c := &Container{Logger: slog.New(slog.DiscardHandler)}
	assert.NoError(t, c.Close())
}

func TestContainer_Close_NilLogger(t *testing.T) {
	c := &Container{}
	assert.NoError(t, c.Close())
}

func TestContainer_IsReady_NoCheckers(t *testing.T) {
	c := &Container{Logger: slog.New(slog.DiscardHandler)}
	assert.False(t, c.IsReady(context.Background()))
}

func TestContainer_IsReady_MockMode(t *testing.T) {
	c := newMockContainer(t, mockConfig())
	assert.True(t, c.IsReady(context.Background()))
}

func TestContainer_IsReady_FailingReadiness(t *testing.T) {
	c := &Container{
		Logger: slog.New(slog.DiscardHandler),
		readiness: []appcore.HealthChecker{
			stubChecker{name: "mongodb", healthy: true},
			stubChecker{name: "redis", healthy: false},
		},
		diagnostics: []appcore.HealthChecker{
			stubChecker{name: "like_consistency", healthy: false},
		},
	}

	assert.False(t, c.IsReady(context.Background()))
}

func TestContainer_IsReady_IgnoresDiagnostics(t *testing.T) {
	c := &Container{
		Logger:      slog.New(slog.DiscardHandler),
		readiness:   []appcore.HealthChecker{stubChecker{name: "mongodb", healthy: true}},
		diagnostics: []appcore.HealthChecker{stubChecker{name: "like_consistency", healthy: false}},
	}

	assert.True(t, c.IsReady(context.Background()))
}

func TestContainer_GetHealthStatus(t *testing.T) {
	c := &Container{
		Logger: slog.New(slog.DiscardHandler),
		readiness: []appcore.HealthChecker{
			stubChecker{name: "mongodb", healthy: true},
			stubChecker{name: "redis", healthy: false},
		},
		diagnostics: []appcore.HealthChecker{
			stubChecker{name: "like_consistency", healthy: false},
			stubChecker{name: "anomaly_journal", healthy: true},
		},
	}

	statuses := c.GetHealthStatus(context.Background())

	require.Len(t, statuses, 4)
	assert.Equal(t, httpserver.ComponentStatus{
		Name: "mongodb", Status: httpserver.StatusHealthy, Message: "mongodb message",
	}, statuses[0])
	assert.Equal(t, httpserver.StatusUnhealthy, statuses[1].Status)
	assert.Equal(t, httpserver.StatusDegraded, statuses[2].Status)
	assert.Equal(t, httpserver.StatusHealthy, statuses[3].Status)
}

func TestContainer_GetHealthStatus_MockMode(t *testing.T) {
	c := newMockContainer(t, mockConfig())

	statuses := c.GetHealthStatus(context.Background())

	names := make([]string, 0, len(statuses))
	for _, s := range statuses {
		names = append(names, s.Name)
		assert.Equal(t, httpserver.StatusHealthy, s.Status)
	}
	assert.Equal(t, []string{"review_store", "like_consistency"}, names)
}

func TestContainer_ValidateWiring_RealModeWithoutInfrastructure(t *testing.T) {
	c := &Container{
		Config: config.DefaultConfig(),
		Logger: slog.New(slog.DiscardHandler),
	}

	err := c.validateWiring()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "mongodb client not initialized")
	assert.Contains(t, err.Error(), "redis client not initialized")
	assert.Contains(t, err.Error(), "token validator not initialized")
}
