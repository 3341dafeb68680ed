package handlers

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/veltra/mixfeed/pkg/models"
)

// RecommendationService is the engine surface the feed handlers consume.
type RecommendationService interface {
	GetMixedRecommendations(ctx context.Context, userID *uuid.UUID, opts models.RecommendationOptions) (*models.RecommendationResult, error)
	GetInfiniteScrollRecommendations(ctx context.Context, userID *uuid.UUID, limit int, excludeIDs []uuid.UUID, tags []string) (*models.RecommendationResult, error)
	InvalidateUser(ctx context.Context, userID uuid.UUID) error
}

// SearchService ranks the corpus against a query.
type SearchService interface {
	Search(ctx context.Context, query string, opts models.SearchOptions) (*models.SearchPage, error)
}

type Handlers struct {
	Feed   *FeedHandler
	Search *SearchHandler
	Cache  *CacheHandler
	Health *HealthHandler
}

func New(logger *logrus.Logger, recommender RecommendationService, searcher SearchService, health *HealthHandler) *Handlers {
	return &Handlers{
		Feed:   NewFeedHandler(recommender, logger),
		Search: NewSearchHandler(searcher, logger),
		Cache:  NewCacheHandler(recommender, logger),
		Health: health,
	}
}
