package engine

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"

	"github.com/veltra/mixfeed/internal/config"
	"github.com/veltra/mixfeed/internal/store"
	"github.com/veltra/mixfeed/pkg/models"
)

func testEngineConfig() *config.Engine {
	return &config.Engine{
		Activity: config.Activity{
			VeryActiveScore: 50,
			ActiveScore:     30,
			ModerateScore:   15,
			LowScore:        5,
		},
		ColdStart: config.ColdStart{MinInteractions: 5},
		Providers: config.Providers{
			HotWindow:            168 * time.Hour,
			HotWideWindow:        720 * time.Hour,
			LatestWindow:         168 * time.Hour,
			LatestWideWindow:     720 * time.Hour,
			UpdatedWindow:        720 * time.Hour,
			UpdatedWideWindow:    2160 * time.Hour,
			ContentMinSimilarity: 0.1,
			CFMinSimilarity:      0.3,
			SocialMinSimilarity:  0.2,
			ExcludeInteracted:    true,
		},
		Caching: config.Caching{
			ActivityTTL:  30 * time.Minute,
			ColdStartTTL: time.Hour,
			ProviderTTL:  15 * time.Minute,
			FeedTTL:      10 * time.Minute,
		},
		Pagination: config.Pagination{
			DefaultLimit:   20,
			MaxLimit:       100,
			OverfetchExtra: 20,
		},
		Social:        config.Social{MaxDistance: 3},
		FanoutTimeout: 2 * time.Second,

		ColdStartWeights: config.DefaultColdStartWeights(),
		WeightTable:      config.DefaultWeightTable(),
		DefaultWeights:   config.DefaultWeights(),
	}
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func testItem(id uuid.UUID, authorID uuid.UUID, title string, tags []string, hotScore float64) models.ContentItem {
	return models.ContentItem{
		ID:        id,
		AuthorID:  authorID,
		Title:     title,
		Tags:      tags,
		Status:    models.ContentStatusPublished,
		HotScore:  hotScore,
		CreatedAt: time.Now().Add(-24 * time.Hour),
		UpdatedAt: time.Now().Add(-24 * time.Hour),
	}
}

type mockContentReader struct {
	mock.Mock
}

func (m *mockContentReader) HottestPublished(ctx context.Context, since time.Time, tags []string, limit int) ([]models.ContentItem, error) {
	args := m.Called(ctx, since, tags, limit)
	return args.Get(0).([]models.ContentItem), args.Error(1)
}

func (m *mockContentReader) LatestPublished(ctx context.Context, since time.Time, tags []string, limit int) ([]models.ContentItem, error) {
	args := m.Called(ctx, since, tags, limit)
	return args.Get(0).([]models.ContentItem), args.Error(1)
}

func (m *mockContentReader) RecentlyUpdated(ctx context.Context, since time.Time, tags []string, limit int) ([]models.ScoredItem, error) {
	args := m.Called(ctx, since, tags, limit)
	return args.Get(0).([]models.ScoredItem), args.Error(1)
}

func (m *mockContentReader) ByIDs(ctx context.Context, ids []uuid.UUID) ([]models.ContentItem, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]models.ContentItem), args.Error(1)
}

type mockInteractionReader struct {
	mock.Mock
}

func (m *mockInteractionReader) CountsByKind(ctx context.Context, userID uuid.UUID) (models.InteractionBreakdown, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(models.InteractionBreakdown), args.Error(1)
}

func (m *mockInteractionReader) TagPreferences(ctx context.Context, userID uuid.UUID) (map[string]float64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(map[string]float64), args.Error(1)
}

func (m *mockInteractionReader) InteractedItemIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

type mockContentSimilarity struct {
	mock.Mock
}

func (m *mockContentSimilarity) ContentBasedCandidates(ctx context.Context, prefs map[string]float64, exclude map[uuid.UUID]struct{}, minSimilarity float64, tags []string, limit int) ([]models.ScoredItem, error) {
	args := m.Called(ctx, prefs, exclude, minSimilarity, tags, limit)
	return args.Get(0).([]models.ScoredItem), args.Error(1)
}

type mockSocialGraph struct {
	mock.Mock
}

func (m *mockSocialGraph) UserCFItemScores(ctx context.Context, userID uuid.UUID, minSimilarity float64, excludeInteracted bool, limit int) ([]store.ScoredID, error) {
	args := m.Called(ctx, userID, minSimilarity, excludeInteracted, limit)
	return args.Get(0).([]store.ScoredID), args.Error(1)
}

func (m *mockSocialGraph) SocialCFItemScores(ctx context.Context, userID uuid.UUID, minSimilarity float64, excludeInteracted bool, limit int) ([]store.ScoredID, error) {
	args := m.Called(ctx, userID, minSimilarity, excludeInteracted, limit)
	return args.Get(0).([]store.ScoredID), args.Error(1)
}

func (m *mockSocialGraph) ProximityScore(ctx context.Context, userID uuid.UUID, authorID uuid.UUID, opts store.ProximityOptions) (*models.SocialSignals, error) {
	args := m.Called(ctx, userID, authorID, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SocialSignals), args.Error(1)
}
