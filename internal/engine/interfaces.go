package engine

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/veltra/mixfeed/internal/store"
	"github.com/veltra/mixfeed/pkg/models"
)

// ContentReader is the read-only content repository the providers consume.
type ContentReader interface {
	HottestPublished(ctx context.Context, since time.Time, tags []string, limit int) ([]models.ContentItem, error)
	LatestPublished(ctx context.Context, since time.Time, tags []string, limit int) ([]models.ContentItem, error)
	RecentlyUpdated(ctx context.Context, since time.Time, tags []string, limit int) ([]models.ScoredItem, error)
	ByIDs(ctx context.Context, ids []uuid.UUID) ([]models.ContentItem, error)
}

// InteractionReader aggregates a user's interaction history.
type InteractionReader interface {
	CountsByKind(ctx context.Context, userID uuid.UUID) (models.InteractionBreakdown, error)
	TagPreferences(ctx context.Context, userID uuid.UUID) (map[string]float64, error)
	InteractedItemIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

// ContentSimilarity computes tag-vector similarity candidates.
type ContentSimilarity interface {
	ContentBasedCandidates(ctx context.Context, prefs map[string]float64, exclude map[uuid.UUID]struct{}, minSimilarity float64, tags []string, limit int) ([]models.ScoredItem, error)
}

// SocialGraph runs the graph-side scoring: collaborative filtering over
// shared interactions, its follow-graph-weighted variant, and the social
// proximity score for returned pages.
type SocialGraph interface {
	UserCFItemScores(ctx context.Context, userID uuid.UUID, minSimilarity float64, excludeInteracted bool, limit int) ([]store.ScoredID, error)
	SocialCFItemScores(ctx context.Context, userID uuid.UUID, minSimilarity float64, excludeInteracted bool, limit int) ([]store.ScoredID, error)
	ProximityScore(ctx context.Context, userID uuid.UUID, authorID uuid.UUID, opts store.ProximityOptions) (*models.SocialSignals, error)
}
