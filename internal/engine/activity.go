package engine

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/veltra/mixfeed/internal/cache"
	"github.com/veltra/mixfeed/internal/config"
	"github.com/veltra/mixfeed/pkg/models"
)

// ActivityProfiler derives a user's interaction-volume score and discrete
// activity level. The profile only influences weighting, so stale cached
// values are acceptable.
type ActivityProfiler struct {
	interactions InteractionReader
	cache        cache.Store
	cfg          *config.Engine
	logger       *logrus.Logger
}

func NewActivityProfiler(
	interactions InteractionReader,
	cacheStore cache.Store,
	cfg *config.Engine,
	logger *logrus.Logger,
) *ActivityProfiler {
	return &ActivityProfiler{
		interactions: interactions,
		cache:        cacheStore,
		cfg:          cfg,
		logger:       logger,
	}
}

// Profile computes the activity profile for a user. A user with no history
// (or an unknown user) profiles as inactive with score 0 rather than
// failing.
func (p *ActivityProfiler) Profile(ctx context.Context, userID uuid.UUID) (models.ActivityProfile, error) {
	key := activityCacheKey(userID)
	profile, _, err := cache.GetOrCompute(ctx, p.cache, p.logger, key, p.cfg.Caching.ActivityTTL,
		func(ctx context.Context) (models.ActivityProfile, error) {
			return p.compute(ctx, userID)
		})
	return profile, err
}

func (p *ActivityProfiler) compute(ctx context.Context, userID uuid.UUID) (models.ActivityProfile, error) {
	breakdown, err := p.interactions.CountsByKind(ctx, userID)
	if err != nil {
		return models.ActivityProfile{Level: models.ActivityInactive},
			fmt.Errorf("failed to count interactions: %w", err)
	}

	total := breakdown.Likes + breakdown.Comments + breakdown.Shares +
		breakdown.Collections + breakdown.Views
	score := math.Log10(float64(total)+1) * 10

	return models.ActivityProfile{
		Score:             score,
		Level:             p.levelFor(score),
		TotalInteractions: total,
		Breakdown:         breakdown,
	}, nil
}

func (p *ActivityProfiler) levelFor(score float64) models.ActivityLevel {
	a := p.cfg.Activity
	switch {
	case score >= a.VeryActiveScore:
		return models.ActivityVeryActive
	case score >= a.ActiveScore:
		return models.ActivityActive
	case score >= a.ModerateScore:
		return models.ActivityModerate
	case score >= a.LowScore:
		return models.ActivityLow
	default:
		return models.ActivityInactive
	}
}

func activityCacheKey(userID uuid.UUID) string {
	return "activity:" + userID.String()
}
