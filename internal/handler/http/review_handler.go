package httphandler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	reviewapp "github.com/lllypuk/reviewguard/internal/application/review"
	"github.com/lllypuk/reviewguard/internal/domain/objectid"
	"github.com/lllypuk/reviewguard/internal/domain/review"
	"github.com/lllypuk/reviewguard/internal/infrastructure/httpserver"
	"github.com/lllypuk/reviewguard/internal/middleware"
)

// CreateReviewRequest represents the request to create a review.
// The product comes from the path; a product key in the body is ignored.
type CreateReviewRequest struct {
	Product string `json:"-"       param:"id" validate:"required,max=100"`
	Message string `json:"message"            validate:"required,max=4000"`
	// Author is advisory. The stored author is always the caller.
	Author string `json:"author" validate:"max=100"`
}

// UpdateReviewRequest represents the request to replace a review message.
// ID stays raw so that object or array values can be told apart from strings.
type UpdateReviewRequest struct {
	ID      json.RawMessage `json:"id"`
	Message string          `json:"message" validate:"required,max=4000"`
}

// LikeReviewRequest represents the request to like a review.
type LikeReviewRequest struct {
	ID json.RawMessage `json:"id"`
}

// ListReviewsRequest represents the query of a review listing.
type ListReviewsRequest struct {
	Product string `json:"-" param:"id"     validate:"required,max=100"`
	Limit   int    `json:"-" query:"limit"  validate:"gte=0,lte=100"`
	Offset  int    `json:"-" query:"offset" validate:"gte=0"`
}

// CreateReviewResponse is returned after a review is created.
type CreateReviewResponse struct {
	ID string `json:"id"`
}

// ReviewResponse represents a review in API responses.
type ReviewResponse struct {
	ID         string   `json:"id"`
	Product    string   `json:"product"`
	Message    string   `json:"message"`
	Author     string   `json:"author"`
	LikesCount int      `json:"likes_count"`
	LikedBy    []string `json:"liked_by"`
	CreatedAt  string   `json:"created_at"`
	UpdatedAt  string   `json:"updated_at"`
}

// UpdateReviewResponse reports the store counters of an update and the
// review as read back afterwards, when available.
type UpdateReviewResponse struct {
	MatchedCount  int64           `json:"matched_count"`
	ModifiedCount int64           `json:"modified_count"`
	Review        *ReviewResponse `json:"review,omitempty"`
}

// ReviewListResponse represents a page of reviews.
type ReviewListResponse struct {
	Reviews []ReviewResponse `json:"reviews"`
	Count   int              `json:"count"`
	Limit   int              `json:"limit"`
	Offset  int              `json:"offset"`
}

// ReviewService defines the interface for review operations.
// Declared on the consumer side per project guidelines.
type ReviewService interface {
	// CreateReview creates a review and returns its id.
	CreateReview(ctx context.Context, cmd reviewapp.CreateReviewCommand) (objectid.ID, error)

	// UpdateReview replaces the message of a review owned by the caller.
	UpdateReview(ctx context.Context, cmd reviewapp.UpdateReviewCommand) (reviewapp.UpdateReviewResult, error)

	// LikeReview likes a review on behalf of the caller.
	LikeReview(ctx context.Context, cmd reviewapp.LikeReviewCommand) (reviewapp.Result, error)

	// GetReview fetches a review by id.
	GetReview(ctx context.Context, id objectid.ID) (reviewapp.Result, error)

	// ListReviews lists reviews of a product.
	ListReviews(ctx context.Context, query reviewapp.ListReviewsQuery) (reviewapp.ListResult, error)

	// SimulationEnabled reports whether the race simulation route should exist.
	SimulationEnabled() bool

	// SimulateLikeRace runs the two-phase like used for race diagnostics.
	SimulateLikeRace(ctx context.Context, cmd reviewapp.SimulateLikeRaceCommand) (reviewapp.Result, error)
}

// ReviewHandler handles review-related HTTP requests.
type ReviewHandler struct {
	reviewService ReviewService
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(reviewService ReviewService) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
	}
}

// RegisterRoutes registers review routes with the router.
func (h *ReviewHandler) RegisterRoutes(r *httpserver.Router) {
	r.Auth().PUT("/products/:id/reviews", h.Create)
	r.Auth().GET("/products/:id/reviews", h.List)
	r.Auth().GET("/reviews/:id", h.Get)
	r.Auth().PATCH("/products/reviews", h.Update)
	r.Auth().POST("/products/reviews", h.Like)

	if h.reviewService.SimulationEnabled() {
		r.Auth().POST("/simulation/reviews/like", h.SimulateLike)
	}
}

// Create handles PUT /api/v1/products/:id/reviews.
func (h *ReviewHandler) Create(c echo.Context) error {
	var req CreateReviewRequest
	if err := c.Bind(&req); err != nil {
		return httpserver.RespondErrorWithCode(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
	}
	if err := validateRequest(&req); err != nil {
		return httpserver.RespondErrorWithCode(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	}

	id, err := h.reviewService.CreateReview(c.Request().Context(), reviewapp.CreateReviewCommand{
		Product:        req.Product,
		Message:        req.Message,
		AssertedAuthor: req.Author,
		Caller:         caller(c),
	})
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	return httpserver.RespondCreated(c, CreateReviewResponse{ID: id.String()})
}

// Update handles PATCH /api/v1/products/reviews.
func (h *ReviewHandler) Update(c echo.Context) error {
	var req UpdateReviewRequest
	if err := c.Bind(&req); err != nil {
		return httpserver.RespondErrorWithCode(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
	}

	id, err := objectid.ParseRaw(req.ID)
	if err != nil {
		return httpserver.RespondError(c, reviewapp.ErrInvalidReviewID)
	}
	if valErr := validateRequest(&req); valErr != nil {
		return httpserver.RespondErrorWithCode(c, http.StatusBadRequest, "VALIDATION_ERROR", valErr.Error())
	}

	result, err := h.reviewService.UpdateReview(c.Request().Context(), reviewapp.UpdateReviewCommand{
		ReviewID: id,
		Message:  req.Message,
		Caller:   caller(c),
	})
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	resp := UpdateReviewResponse{
		MatchedCount:  result.MatchedCount,
		ModifiedCount: result.ModifiedCount,
	}
	if result.Review != nil {
		dto := ToReviewResponse(result.Review)
		resp.Review = &dto
	}
	return httpserver.RespondOK(c, resp)
}

// Like handles POST /api/v1/products/reviews.
func (h *ReviewHandler) Like(c echo.Context) error {
	id, err := bindLikeTarget(c)
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	result, err := h.reviewService.LikeReview(c.Request().Context(), reviewapp.LikeReviewCommand{
		ReviewID: id,
		Caller:   caller(c),
	})
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	return httpserver.RespondOK(c, ToReviewResponse(result.Value))
}

// SimulateLike handles POST /api/v1/simulation/reviews/like.
func (h *ReviewHandler) SimulateLike(c echo.Context) error {
	id, err := bindLikeTarget(c)
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	result, err := h.reviewService.SimulateLikeRace(c.Request().Context(), reviewapp.SimulateLikeRaceCommand{
		ReviewID: id,
		Caller:   caller(c),
	})
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	return httpserver.RespondOK(c, ToReviewResponse(result.Value))
}

// Get handles GET /api/v1/reviews/:id.
func (h *ReviewHandler) Get(c echo.Context) error {
	id, err := objectid.Parse(c.Param("id"))
	if err != nil {
		return httpserver.RespondError(c, reviewapp.ErrInvalidReviewID)
	}

	result, err := h.reviewService.GetReview(c.Request().Context(), id)
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	return httpserver.RespondOK(c, ToReviewResponse(result.Value))
}

// List handles GET /api/v1/products/:id/reviews.
func (h *ReviewHandler) List(c echo.Context) error {
	var req ListReviewsRequest
	if err := c.Bind(&req); err != nil {
		return httpserver.RespondErrorWithCode(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid query parameters")
	}
	if err := validateRequest(&req); err != nil {
		return httpserver.RespondErrorWithCode(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	}

	limit := req.Limit
	if limit == 0 {
		limit = reviewapp.DefaultLimit
	}

	result, err := h.reviewService.ListReviews(c.Request().Context(), reviewapp.ListReviewsQuery{
		Product: req.Product,
		Limit:   limit,
		Offset:  req.Offset,
	})
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	reviews := make([]ReviewResponse, 0, len(result.Value))
	for _, r := range result.Value {
		reviews = append(reviews, ToReviewResponse(r))
	}

	return httpserver.RespondOK(c, ReviewListResponse{
		Reviews: reviews,
		Count:   len(reviews),
		Limit:   limit,
		Offset:  req.Offset,
	})
}

// bindLikeTarget decodes the like body into a validated review id.
func bindLikeTarget(c echo.Context) (objectid.ID, error) {
	var req LikeReviewRequest
	if err := c.Bind(&req); err != nil {
		return "", ErrInvalidRequestBody
	}

	id, err := objectid.ParseRaw(req.ID)
	if err != nil {
		return "", reviewapp.ErrInvalidReviewID
	}
	return id, nil
}

// caller returns the identity resolved by the auth middleware. An empty
// identity is rejected by the use cases.
func caller(c echo.Context) review.Identity {
	return review.Identity(middleware.GetIdentity(c))
}

// ToReviewResponse converts a review to its API representation.
func ToReviewResponse(r *review.Review) ReviewResponse {
	if r == nil {
		return ReviewResponse{LikedBy: []string{}}
	}

	likedBy := make([]string, 0, len(r.LikedBy()))
	for _, identity := range r.LikedBy() {
		likedBy = append(likedBy, identity.String())
	}

	return ReviewResponse{
		ID:         r.ID().String(),
		Product:    r.Product(),
		Message:    r.Message(),
		Author:     r.Author().String(),
		LikesCount: r.LikesCount(),
		LikedBy:    likedBy,
		CreatedAt:  r.CreatedAt().Format(time.RFC3339),
		UpdatedAt:  r.UpdatedAt().Format(time.RFC3339),
	}
}
