package httphandler_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	reviewapp "github.com/lllypuk/reviewguard/internal/application/review"
	"github.com/lllypuk/reviewguard/internal/domain/objectid"
	"github.com/lllypuk/reviewguard/internal/domain/review"
	httphandler "github.com/lllypuk/reviewguard/internal/handler/http"
	"github.com/lllypuk/reviewguard/internal/infrastructure/httpserver"
	"github.com/lllypuk/reviewguard/internal/middleware"
)

const (
	testIdentity = "u1@example.com"
	testReviewID = "507f1f77bcf86cd799439011"
)

type mockReviewService struct {
	simulation bool
	calls      int

	createCmd reviewapp.CreateReviewCommand
	updateCmd reviewapp.UpdateReviewCommand
	likeCmd   reviewapp.LikeReviewCommand
	listQuery reviewapp.ListReviewsQuery

	createErr error
	updateErr error
	likeErr   error
	getErr    error
	listErr   error

	updateResult reviewapp.UpdateReviewResult
	review       *review.Review
}

func (m *mockReviewService) CreateReview(_ context.Context, cmd reviewapp.CreateReviewCommand) (objectid.ID, error) {
	m.calls++
	m.createCmd = cmd
	if m.createErr != nil {
		return "", m.createErr
	}
	return objectid.MustParse(testReviewID), nil
}

func (m *mockReviewService) UpdateReview(
	_ context.Context,
	cmd reviewapp.UpdateReviewCommand,
) (reviewapp.UpdateReviewResult, error) {
	m.calls++
	m.updateCmd = cmd
	return m.updateResult, m.updateErr
}

func (m *mockReviewService) LikeReview(_ context.Context, cmd reviewapp.LikeReviewCommand) (reviewapp.Result, error) {
	m.calls++
	m.likeCmd = cmd
	if m.likeErr != nil {
		return reviewapp.Result{}, m.likeErr
	}
	return reviewapp.Result{Value: m.review}, nil
}

func (m *mockReviewService) GetReview(_ context.Context, _ objectid.ID) (reviewapp.Result, error) {
	m.calls++
	if m.getErr != nil {
		return reviewapp.Result{}, m.getErr
	}
	return reviewapp.Result{Value: m.review}, nil
}

func (m *mockReviewService) ListReviews(
	_ context.Context,
	query reviewapp.ListReviewsQuery,
) (reviewapp.ListResult, error) {
	m.calls++
	m.listQuery = query
	if m.listErr != nil {
		return reviewapp.ListResult{}, m.listErr
	}
	return reviewapp.ListResult{Value: []*review.Review{m.review}}, nil
}

func (m *mockReviewService) SimulationEnabled() bool { return m.simulation }

func (m *mockReviewService) SimulateLikeRace(
	_ context.Context,
	cmd reviewapp.SimulateLikeRaceCommand,
) (reviewapp.Result, error) {
	m.calls++
	m.likeCmd = reviewapp.LikeReviewCommand(cmd)
	return reviewapp.Result{Value: m.review}, nil
}

// fakeAuth resolves the identity from the X-Test-Identity header.
func fakeAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if identity := c.Request().Header.Get("X-Test-Identity"); identity != "" {
			c.Set(string(middleware.ContextKeyIdentity), identity)
		}
		return next(c)
	}
}

func setupReviewRouter(svc *mockReviewService) *echo.Echo {
	e := echo.New()
	config := httpserver.DefaultRouterConfig()
	config.Logger = slog.New(slog.DiscardHandler)
	config.AuthMiddleware = fakeAuth
	router := httpserver.NewRouter(e, config)
	router.RegisterAll(httphandler.NewReviewHandler(svc))
	return e
}

func sampleReview() *review.Review {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return review.Reconstruct(
		objectid.MustParse(testReviewID), "P1", "Great!", testIdentity,
		1, []review.Identity{"u2@example.com"}, now, now,
	)
}

func do(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("X-Test-Identity", testIdentity)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) *httpserver.Error {
	t.Helper()
	var resp httpserver.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	return resp.Error
}

func TestReviewHandler_Create(t *testing.T) {
	t.Run("success pins caller and takes product from path", func(t *testing.T) {
		svc := &mockReviewService{}
		e := setupReviewRouter(svc)

		rec := do(e, stdhttp.MethodPut, "/api/v1/products/P1/reviews",
			`{"message":"Great!","author":"someone@else.com","product":"P2"}`)

		require.Equal(t, stdhttp.StatusCreated, rec.Code)
		var resp struct {
			Success bool                             `json:"success"`
			Data    httphandler.CreateReviewResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, testReviewID, resp.Data.ID)

		assert.Equal(t, "P1", svc.createCmd.Product)
		assert.Equal(t, "Great!", svc.createCmd.Message)
		assert.Equal(t, "someone@else.com", svc.createCmd.AssertedAuthor)
		assert.Equal(t, review.Identity(testIdentity), svc.createCmd.Caller)
	})

	t.Run("message sent as object is rejected before the service", func(t *testing.T) {
		svc := &mockReviewService{}
		e := setupReviewRouter(svc)

		rec := do(e, stdhttp.MethodPut, "/api/v1/products/P1/reviews", `{"message":{"$gt":""}}`)

		assert.Equal(t, stdhttp.StatusBadRequest, rec.Code)
		assert.Equal(t, "INVALID_REQUEST", decodeError(t, rec).Code)
		assert.Zero(t, svc.calls)
	})

	t.Run("missing message", func(t *testing.T) {
		svc := &mockReviewService{}
		e := setupReviewRouter(svc)

		rec := do(e, stdhttp.MethodPut, "/api/v1/products/P1/reviews", `{}`)

		assert.Equal(t, stdhttp.StatusBadRequest, rec.Code)
		apiErr := decodeError(t, rec)
		assert.Equal(t, "VALIDATION_ERROR", apiErr.Code)
		assert.Equal(t, "message is required", apiErr.Message)
		assert.Zero(t, svc.calls)
	})

	t.Run("author too long", func(t *testing.T) {
		svc := &mockReviewService{}
		e := setupReviewRouter(svc)

		body := `{"message":"ok","author":"` + strings.Repeat("a", 101) + `"}`
		rec := do(e, stdhttp.MethodPut, "/api/v1/products/P1/reviews", body)

		assert.Equal(t, stdhttp.StatusBadRequest, rec.Code)
		assert.Equal(t, "VALIDATION_ERROR", decodeError(t, rec).Code)
	})

	t.Run("product longer than 100 runes", func(t *testing.T) {
		svc := &mockReviewService{}
		e := setupReviewRouter(svc)

		path := "/api/v1/products/" + strings.Repeat("p", review.MaxProductLength+1) + "/reviews"
		rec := do(e, stdhttp.MethodPut, path, `{"message":"ok"}`)

		assert.Equal(t, stdhttp.StatusBadRequest, rec.Code)
		assert.Equal(t, "VALIDATION_ERROR", decodeError(t, rec).Code)
		assert.Zero(t, svc.calls)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		svc := &mockReviewService{createErr: reviewapp.ErrUnauthenticated}
		e := setupReviewRouter(svc)

		rec := do(e, stdhttp.MethodPut, "/api/v1/products/P1/reviews", `{"message":"ok"}`)

		assert.Equal(t, stdhttp.StatusUnauthorized, rec.Code)
		assert.Equal(t, "UNAUTHORIZED", decodeError(t, rec).Code)
	})

	t.Run("store failure hides cause", func(t *testing.T) {
		svc := &mockReviewService{createErr: reviewapp.NewStoreError(errors.New("connection refused"))}
		e := setupReviewRouter(svc)

		rec := do(e, stdhttp.MethodPut, "/api/v1/products/P1/reviews", `{"message":"ok"}`)

		assert.Equal(t, stdhttp.StatusInternalServerError, rec.Code)
		apiErr := decodeError(t, rec)
		assert.Equal(t, "internal error", apiErr.Message)
		assert.NotContains(t, rec.Body.String(), "connection refused")
	})
}

func TestReviewHandler_Update(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := &mockReviewService{updateResult: reviewapp.UpdateReviewResult{
			MatchedCount: 1, ModifiedCount: 1, Review: sampleReview(),
		}}
		e := setupReviewRouter(svc)

		rec := do(e, stdhttp.MethodPatch, "/api/v1/products/reviews",
			`{"id":"`+testReviewID+`","message":"Edited"}`)

		require.Equal(t, stdhttp.StatusOK, rec.Code)
		var resp struct {
			Data httphandler.UpdateReviewResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, int64(1), resp.Data.MatchedCount)
		assert.Equal(t, int64(1), resp.Data.ModifiedCount)
		require.NotNil(t, resp.Data.Review)
		assert.Equal(t, testReviewID, resp.Data.Review.ID)

		assert.Equal(t, objectid.MustParse(testReviewID), svc.updateCmd.ReviewID)
		assert.Equal(t, review.Identity(testIdentity), svc.updateCmd.Caller)
	})

	injections := []struct {
		name string
		body string
	}{
		{"operator object id", `{"id":{"$ne":null},"message":"x"}`},
		{"array id", `{"id":["` + testReviewID + `"],"message":"x"}`},
		{"numeric id", `{"id":1,"message":"x"}`},
		{"missing id", `{"message":"x"}`},
		{"malformed id", `{"id":"abc","message":"x"}`},
	}
	for _, tc := range injections {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockReviewService{}
			e := setupReviewRouter(svc)

			rec := do(e, stdhttp.MethodPatch, "/api/v1/products/reviews", tc.body)

			assert.Equal(t, stdhttp.StatusBadRequest, rec.Code)
			assert.Equal(t, "INVALID_REVIEW_ID", decodeError(t, rec).Code)
			assert.Zero(t, svc.calls)
		})
	}

	t.Run("message as object", func(t *testing.T) {
		svc := &mockReviewService{}
		e := setupReviewRouter(svc)

		rec := do(e, stdhttp.MethodPatch, "/api/v1/products/reviews",
			`{"id":"`+testReviewID+`","message":{"$set":{"author":"me"}}}`)

		assert.Equal(t, stdhttp.StatusBadRequest, rec.Code)
		assert.Zero(t, svc.calls)
	})

	t.Run("not owner", func(t *testing.T) {
		svc := &mockReviewService{updateErr: reviewapp.ErrNotOwner}
		e := setupReviewRouter(svc)

		rec := do(e, stdhttp.MethodPatch, "/api/v1/products/reviews",
			`{"id":"`+testReviewID+`","message":"Edited"}`)

		assert.Equal(t, stdhttp.StatusForbidden, rec.Code)
		assert.Equal(t, "NOT_AUTHOR", decodeError(t, rec).Code)
	})

	t.Run("not found", func(t *testing.T) {
		svc := &mockReviewService{updateErr: reviewapp.ErrReviewNotFound}
		e := setupReviewRouter(svc)

		rec := do(e, stdhttp.MethodPatch, "/api/v1/products/reviews",
			`{"id":"`+testReviewID+`","message":"Edited"}`)

		assert.Equal(t, stdhttp.StatusNotFound, rec.Code)
	})
}

func TestReviewHandler_Like(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := &mockReviewService{review: sampleReview()}
		e := setupReviewRouter(svc)

		rec := do(e, stdhttp.MethodPost, "/api/v1/products/reviews", `{"id":"`+testReviewID+`"}`)

		require.Equal(t, stdhttp.StatusOK, rec.Code)
		var resp struct {
			Data httphandler.ReviewResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 1, resp.Data.LikesCount)
		assert.Equal(t, []string{"u2@example.com"}, resp.Data.LikedBy)
		assert.Equal(t, review.Identity(testIdentity), svc.likeCmd.Caller)
	})

	t.Run("operator object id", func(t *testing.T) {
		svc := &mockReviewService{}
		e := setupReviewRouter(svc)

		rec := do(e, stdhttp.MethodPost, "/api/v1/products/reviews", `{"id":{"$gt":""}}`)

		assert.Equal(t, stdhttp.StatusBadRequest, rec.Code)
		assert.Equal(t, "INVALID_REVIEW_ID", decodeError(t, rec).Code)
		assert.Zero(t, svc.calls)
	})

	t.Run("undecodable body", func(t *testing.T) {
		svc := &mockReviewService{}
		e := setupReviewRouter(svc)

		rec := do(e, stdhttp.MethodPost, "/api/v1/products/reviews", `{"id":`)

		assert.Equal(t, stdhttp.StatusBadRequest, rec.Code)
		assert.Equal(t, "INVALID_REQUEST", decodeError(t, rec).Code)
		assert.Zero(t, svc.calls)
	})

	t.Run("already liked", func(t *testing.T) {
		svc := &mockReviewService{likeErr: reviewapp.ErrAlreadyLiked}
		e := setupReviewRouter(svc)

		rec := do(e, stdhttp.MethodPost, "/api/v1/products/reviews", `{"id":"`+testReviewID+`"}`)

		assert.Equal(t, stdhttp.StatusForbidden, rec.Code)
		apiErr := decodeError(t, rec)
		assert.Equal(t, "ALREADY_LIKED", apiErr.Code)
		assert.Equal(t, "not allowed to like more than once", apiErr.Message)
	})

	t.Run("not found", func(t *testing.T) {
		svc := &mockReviewService{likeErr: reviewapp.ErrReviewNotFound}
		e := setupReviewRouter(svc)

		rec := do(e, stdhttp.MethodPost, "/api/v1/products/reviews", `{"id":"`+testReviewID+`"}`)

		assert.Equal(t, stdhttp.StatusNotFound, rec.Code)
		assert.Equal(t, "REVIEW_NOT_FOUND", decodeError(t, rec).Code)
	})
}

func TestReviewHandler_Get(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := &mockReviewService{review: sampleReview()}
		e := setupReviewRouter(svc)

		rec := do(e, stdhttp.MethodGet, "/api/v1/reviews/"+testReviewID, "")

		require.Equal(t, stdhttp.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"created_at":"2026-01-02T03:04:05Z"`)
	})

	t.Run("malformed id", func(t *testing.T) {
		svc := &mockReviewService{}
		e := setupReviewRouter(svc)

		rec := do(e, stdhttp.MethodGet, "/api/v1/reviews/not-an-id", "")

		assert.Equal(t, stdhttp.StatusBadRequest, rec.Code)
		assert.Zero(t, svc.calls)
	})
}

func TestReviewHandler_List(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		svc := &mockReviewService{review: sampleReview()}
		e := setupReviewRouter(svc)

		rec := do(e, stdhttp.MethodGet, "/api/v1/products/P1/reviews", "")

		require.Equal(t, stdhttp.StatusOK, rec.Code)
		assert.Equal(t, reviewapp.ListReviewsQuery{Product: "P1", Limit: reviewapp.DefaultLimit}, svc.listQuery)

		var resp struct {
			Data httphandler.ReviewListResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 1, resp.Data.Count)
	})

	t.Run("explicit page", func(t *testing.T) {
		svc := &mockReviewService{review: sampleReview()}
		e := setupReviewRouter(svc)

		rec := do(e, stdhttp.MethodGet, "/api/v1/products/P1/reviews?limit=5&offset=10", "")

		require.Equal(t, stdhttp.StatusOK, rec.Code)
		assert.Equal(t, 5, svc.listQuery.Limit)
		assert.Equal(t, 10, svc.listQuery.Offset)
	})

	t.Run("limit out of range", func(t *testing.T) {
		svc := &mockReviewService{}
		e := setupReviewRouter(svc)

		rec := do(e, stdhttp.MethodGet, "/api/v1/products/P1/reviews?limit=500", "")

		assert.Equal(t, stdhttp.StatusBadRequest, rec.Code)
		assert.Zero(t, svc.calls)
	})

	t.Run("non numeric limit", func(t *testing.T) {
		svc := &mockReviewService{}
		e := setupReviewRouter(svc)

		rec := do(e, stdhttp.MethodGet, "/api/v1/products/P1/reviews?limit=abc", "")

		assert.Equal(t, stdhttp.StatusBadRequest, rec.Code)
		assert.Zero(t, svc.calls)
	})
}

func TestReviewHandler_SimulationRoute(t *testing.T) {
	t.Run("absent when disabled", func(t *testing.T) {
		e := setupReviewRouter(&mockReviewService{})

		rec := do(e, stdhttp.MethodPost, "/api/v1/simulation/reviews/like", `{"id":"`+testReviewID+`"}`)

		assert.Equal(t, stdhttp.StatusNotFound, rec.Code)
	})

	t.Run("registered when enabled", func(t *testing.T) {
		svc := &mockReviewService{simulation: true, review: sampleReview()}
		e := setupReviewRouter(svc)

		rec := do(e, stdhttp.MethodPost, "/api/v1/simulation/reviews/like", `{"id":"`+testReviewID+`"}`)

		assert.Equal(t, stdhttp.StatusOK, rec.Code)
		assert.Equal(t, objectid.MustParse(testReviewID), svc.likeCmd.ReviewID)
	})
}

func TestToReviewResponse_Nil(t *testing.T) {
	resp := httphandler.ToReviewResponse(nil)

	assert.NotNil(t, resp.LikedBy)
	assert.Empty(t, resp.ID)
}
