// Package service wires review use cases into the facade consumed by the HTTP handlers.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	reviewapp "github.com/lllypuk/reviewguard/internal/application/review"
	"github.com/lllypuk/reviewguard/internal/domain/errs"
	"github.com/lllypuk/reviewguard/internal/domain/objectid"
	httphandler "github.com/lllypuk/reviewguard/internal/handler/http"
	"github.com/lllypuk/reviewguard/internal/infrastructure/metrics"
)

// Compile-time assertion that ReviewService implements httphandler.ReviewService.
var _ httphandler.ReviewService = (*ReviewService)(nil)

// Operation label values.
const (
	opCreate   = "create"
	opUpdate   = "update"
	opLike     = "like"
	opGet      = "get"
	opList     = "list"
	opSimulate = "simulate_like"
)

// CreateReviewUseCase defines interface for use case creating a review.
type CreateReviewUseCase interface {
	Execute(ctx context.Context, cmd reviewapp.CreateReviewCommand) (reviewapp.Result, error)
}

// UpdateReviewUseCase defines interface for use case updating a review.
type UpdateReviewUseCase interface {
	Execute(ctx context.Context, cmd reviewapp.UpdateReviewCommand) (reviewapp.UpdateReviewResult, error)
}

// LikeReviewUseCase defines interface for use case liking a review.
type LikeReviewUseCase interface {
	Execute(ctx context.Context, cmd reviewapp.LikeReviewCommand) (reviewapp.Result, error)
}

// GetReviewUseCase defines interface for use case fetching a review.
type GetReviewUseCase interface {
	Execute(ctx context.Context, query reviewapp.GetReviewQuery) (reviewapp.Result, error)
}

// ListReviewsUseCase defines interface for use case listing reviews.
type ListReviewsUseCase interface {
	Execute(ctx context.Context, query reviewapp.ListReviewsQuery) (reviewapp.ListResult, error)
}

// SimulateLikeRaceUseCase defines interface for the race simulation use case.
type SimulateLikeRaceUseCase interface {
	Execute(ctx context.Context, cmd reviewapp.SimulateLikeRaceCommand) (reviewapp.Result, error)
}

// ReviewServiceConfig contains dependencies for ReviewService.
type ReviewServiceConfig struct {
	CreateUC CreateReviewUseCase
	UpdateUC UpdateReviewUseCase
	LikeUC   LikeReviewUseCase
	GetUC    GetReviewUseCase
	ListUC   ListReviewsUseCase

	// SimulateUC is nil unless race simulation is enabled.
	SimulateUC SimulateLikeRaceUseCase
}

// ReviewService implements httphandler.ReviewService.
type ReviewService struct {
	createUC   CreateReviewUseCase
	updateUC   UpdateReviewUseCase
	likeUC     LikeReviewUseCase
	getUC      GetReviewUseCase
	listUC     ListReviewsUseCase
	simulateUC SimulateLikeRaceUseCase

	metrics *metrics.ReviewMetrics
}

// ReviewServiceOption configures ReviewService.
type ReviewServiceOption func(*ReviewService)

// WithMetrics records operation counts and durations.
func WithMetrics(m *metrics.ReviewMetrics) ReviewServiceOption {
	return func(s *ReviewService) {
		s.metrics = m
	}
}

// NewReviewService creates a new ReviewService.
func NewReviewService(cfg ReviewServiceConfig, opts ...ReviewServiceOption) *ReviewService {
	s := &ReviewService{
		createUC:   cfg.CreateUC,
		updateUC:   cfg.UpdateUC,
		likeUC:     cfg.LikeUC,
		getUC:      cfg.GetUC,
		listUC:     cfg.ListUC,
		simulateUC: cfg.SimulateUC,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateReview creates a review and returns its id.
func (s *ReviewService) CreateReview(
	ctx context.Context,
	cmd reviewapp.CreateReviewCommand,
) (objectid.ID, error) {
	defer s.observe(opCreate, time.Now())()

	result, err := s.createUC.Execute(ctx, cmd)
	s.record(opCreate, err)
	if err != nil {
		return "", err
	}
	return result.Value.ID(), nil
}

// UpdateReview replaces the message of a review owned by the caller.
func (s *ReviewService) UpdateReview(
	ctx context.Context,
	cmd reviewapp.UpdateReviewCommand,
) (reviewapp.UpdateReviewResult, error) {
	defer s.observe(opUpdate, time.Now())()

	result, err := s.updateUC.Execute(ctx, cmd)
	s.record(opUpdate, err)
	return result, err
}

// LikeReview likes a review on behalf of the caller.
func (s *ReviewService) LikeReview(ctx context.Context, cmd reviewapp.LikeReviewCommand) (reviewapp.Result, error) {
	defer s.observe(opLike, time.Now())()

	result, err := s.likeUC.Execute(ctx, cmd)
	s.record(opLike, err)
	return result, err
}

// GetReview fetches a review by id.
func (s *ReviewService) GetReview(ctx context.Context, id objectid.ID) (reviewapp.Result, error) {
	defer s.observe(opGet, time.Now())()

	result, err := s.getUC.Execute(ctx, reviewapp.GetReviewQuery{ReviewID: id})
	s.record(opGet, err)
	return result, err
}

// ListReviews lists reviews of a product.
func (s *ReviewService) ListReviews(
	ctx context.Context,
	query reviewapp.ListReviewsQuery,
) (reviewapp.ListResult, error) {
	defer s.observe(opList, time.Now())()

	result, err := s.listUC.Execute(ctx, query)
	s.record(opList, err)
	return result, err
}

// SimulationEnabled reports whether the race simulation is wired.
func (s *ReviewService) SimulationEnabled() bool {
	return s.simulateUC != nil
}

// SimulateLikeRace runs the two-phase like used for race diagnostics.
func (s *ReviewService) SimulateLikeRace(
	ctx context.Context,
	cmd reviewapp.SimulateLikeRaceCommand,
) (reviewapp.Result, error) {
	if s.simulateUC == nil {
		return reviewapp.Result{}, ErrSimulationDisabled
	}
	defer s.observe(opSimulate, time.Now())()

	result, err := s.simulateUC.Execute(ctx, cmd)
	s.record(opSimulate, err)
	return result, err
}

// ErrSimulationDisabled is returned when race simulation was not configured.
var ErrSimulationDisabled = fmt.Errorf("%w: race simulation is disabled", errs.ErrNotFound)

func (s *ReviewService) observe(operation string, start time.Time) func() {
	return func() {
		if s.metrics == nil {
			return
		}
		s.metrics.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}

func (s *ReviewService) record(operation string, err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.OperationsTotal.WithLabelValues(operation, outcomeOf(err)).Inc()
}

func outcomeOf(err error) string {
	if err == nil {
		return metrics.OutcomeSuccess
	}
	var reviewErr *reviewapp.Error
	if errors.As(err, &reviewErr) {
		return reviewErr.Kind.String()
	}
	return "unknown"
}
