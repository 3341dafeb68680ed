package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/veltra/mixfeed/pkg/models"
)

type mockRecommender struct {
	mock.Mock
}

func (m *mockRecommender) GetMixedRecommendations(ctx context.Context, userID *uuid.UUID, opts models.RecommendationOptions) (*models.RecommendationResult, error) {
	args := m.Called(ctx, userID, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RecommendationResult), args.Error(1)
}

func (m *mockRecommender) GetInfiniteScrollRecommendations(ctx context.Context, userID *uuid.UUID, limit int, excludeIDs []uuid.UUID, tags []string) (*models.RecommendationResult, error) {
	args := m.Called(ctx, userID, limit, excludeIDs, tags)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RecommendationResult), args.Error(1)
}

func (m *mockRecommender) InvalidateUser(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func feedRouter(recommender RecommendationService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	h := NewFeedHandler(recommender, logger)
	cacheH := NewCacheHandler(recommender, logger)

	router := gin.New()
	router.GET("/api/v1/feed", h.GetAnonymous)
	router.GET("/api/v1/feed/:userId", h.Get)
	router.GET("/api/v1/feed/:userId/scroll", h.Scroll)
	router.POST("/api/v1/cache/invalidate/:userId", cacheH.Invalidate)
	return router
}

func emptyResult() *models.RecommendationResult {
	return &models.RecommendationResult{
		Recommendations: []models.Candidate{},
		Weights:         models.WeightVector{},
		GeneratedAt:     time.Now(),
	}
}

func TestFeedHandler_Get(t *testing.T) {
	recommender := &mockRecommender{}
	userID := uuid.New()
	recommender.On("GetMixedRecommendations", mock.Anything, &userID, mock.Anything).
		Return(emptyResult(), nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/feed/"+userID.String()+"?limit=10&page=2&social=true", nil)
	feedRouter(recommender).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	opts := recommender.Calls[0].Arguments.Get(2).(models.RecommendationOptions)
	assert.Equal(t, 10, opts.Limit)
	assert.Equal(t, 2, opts.Page)
	assert.True(t, opts.IncludeSocialScores)
	assert.True(t, opts.UseCache)
}

func TestFeedHandler_InvalidUserID(t *testing.T) {
	recommender := &mockRecommender{}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/feed/not-a-uuid", nil)
	feedRouter(recommender).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	recommender.AssertNotCalled(t, "GetMixedRecommendations", mock.Anything, mock.Anything, mock.Anything)
}

func TestFeedHandler_LimitOutOfRange(t *testing.T) {
	recommender := &mockRecommender{}
	userID := uuid.New()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/feed/"+userID.String()+"?limit=9999", nil)
	feedRouter(recommender).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFeedHandler_Anonymous(t *testing.T) {
	recommender := &mockRecommender{}
	recommender.On("GetMixedRecommendations", mock.Anything, (*uuid.UUID)(nil), mock.Anything).
		Return(emptyResult(), nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/feed", nil)
	feedRouter(recommender).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	recommender.AssertExpectations(t)
}

func TestFeedHandler_ScrollPassesExclusions(t *testing.T) {
	recommender := &mockRecommender{}
	userID := uuid.New()
	seen := uuid.New()
	recommender.On("GetInfiniteScrollRecommendations", mock.Anything, &userID, 5,
		[]uuid.UUID{seen}, []string{"go"}).
		Return(emptyResult(), nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/feed/"+userID.String()+"/scroll?limit=5&exclude="+seen.String()+"&tags=go", nil)
	feedRouter(recommender).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	recommender.AssertExpectations(t)
}

func TestFeedHandler_EngineFailure(t *testing.T) {
	recommender := &mockRecommender{}
	userID := uuid.New()
	recommender.On("GetMixedRecommendations", mock.Anything, &userID, mock.Anything).
		Return(nil, errors.New("connection refused"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/feed/"+userID.String(), nil)
	feedRouter(recommender).ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var body map[string]any
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body, "error")
}

func TestCacheHandler_Invalidate(t *testing.T) {
	recommender := &mockRecommender{}
	userID := uuid.New()
	recommender.On("InvalidateUser", mock.Anything, userID).Return(nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cache/invalidate/"+userID.String(), nil)
	feedRouter(recommender).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	recommender.AssertExpectations(t)
}
