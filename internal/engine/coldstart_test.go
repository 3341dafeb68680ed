package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/veltra/mixfeed/pkg/models"
)

func newDetector(interactions *mockInteractionReader) *ColdStartDetector {
	cfg := testEngineConfig()
	logger := testLogger()
	profiler := NewActivityProfiler(interactions, nil, cfg, logger)
	return NewColdStartDetector(profiler, interactions, nil, cfg, logger)
}

func TestColdStartDetector_NewUserIsCold(t *testing.T) {
	userID := uuid.New()
	interactions := &mockInteractionReader{}
	interactions.On("CountsByKind", mock.Anything, userID).
		Return(models.InteractionBreakdown{}, nil)
	interactions.On("TagPreferences", mock.Anything, userID).
		Return(map[string]float64{}, nil)

	status := newDetector(interactions).Detect(context.Background(), userID)

	assert.True(t, status.IsColdStart)
	assert.Equal(t, models.ModeHot, status.RecommendedMode)
}

func TestColdStartDetector_FewInteractionsIsCold(t *testing.T) {
	userID := uuid.New()
	interactions := &mockInteractionReader{}
	interactions.On("CountsByKind", mock.Anything, userID).
		Return(models.InteractionBreakdown{Likes: 2, Views: 2}, nil)
	interactions.On("TagPreferences", mock.Anything, userID).
		Return(map[string]float64{"go": 1.0}, nil)

	status := newDetector(interactions).Detect(context.Background(), userID)

	// 4 interactions < min_interactions of 5
	assert.True(t, status.IsColdStart)
}

func TestColdStartDetector_NoPreferencesIsCold(t *testing.T) {
	userID := uuid.New()
	interactions := &mockInteractionReader{}
	interactions.On("CountsByKind", mock.Anything, userID).
		Return(models.InteractionBreakdown{Views: 100}, nil)
	interactions.On("TagPreferences", mock.Anything, userID).
		Return(map[string]float64{}, nil)

	status := newDetector(interactions).Detect(context.Background(), userID)

	assert.True(t, status.IsColdStart)
}

func TestColdStartDetector_EstablishedUser(t *testing.T) {
	userID := uuid.New()
	interactions := &mockInteractionReader{}
	interactions.On("CountsByKind", mock.Anything, userID).
		Return(models.InteractionBreakdown{Likes: 20, Views: 200}, nil)
	interactions.On("TagPreferences", mock.Anything, userID).
		Return(map[string]float64{"go": 1.0, "db": 0.4}, nil)

	status := newDetector(interactions).Detect(context.Background(), userID)

	assert.False(t, status.IsColdStart)
	assert.Equal(t, models.ModeMixed, status.RecommendedMode)
	assert.Equal(t, 220, status.ActivityProfile.TotalInteractions)
	assert.Len(t, status.TagPreferences, 2)
}

func TestColdStartDetector_FailureDegradesToColdStart(t *testing.T) {
	userID := uuid.New()
	interactions := &mockInteractionReader{}
	interactions.On("CountsByKind", mock.Anything, userID).
		Return(models.InteractionBreakdown{}, errors.New("connection refused"))

	status := newDetector(interactions).Detect(context.Background(), userID)

	assert.True(t, status.IsColdStart)
	assert.Equal(t, models.ModeHot, status.RecommendedMode)
	assert.Equal(t, models.ActivityInactive, status.ActivityProfile.Level)
}
