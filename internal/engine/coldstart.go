package engine

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/veltra/mixfeed/internal/cache"
	"github.com/veltra/mixfeed/internal/config"
	"github.com/veltra/mixfeed/pkg/models"
)

// ColdStartDetector decides whether a user has enough history for
// personalized ranking. Cold-start status changes more slowly than the
// activity profile, so it gets the longer TTL.
type ColdStartDetector struct {
	profiler     *ActivityProfiler
	interactions InteractionReader
	cache        cache.Store
	cfg          *config.Engine
	logger       *logrus.Logger
}

func NewColdStartDetector(
	profiler *ActivityProfiler,
	interactions InteractionReader,
	cacheStore cache.Store,
	cfg *config.Engine,
	logger *logrus.Logger,
) *ColdStartDetector {
	return &ColdStartDetector{
		profiler:     profiler,
		interactions: interactions,
		cache:        cacheStore,
		cfg:          cfg,
		logger:       logger,
	}
}

// Detect returns the user's cold-start status. Any computation failure
// degrades to cold start so ranking safely falls back to the hot/latest
// weight row; the error is logged, never propagated.
func (d *ColdStartDetector) Detect(ctx context.Context, userID uuid.UUID) models.ColdStartStatus {
	key := coldStartCacheKey(userID)
	status, _, err := cache.GetOrCompute(ctx, d.cache, d.logger, key, d.cfg.Caching.ColdStartTTL,
		func(ctx context.Context) (models.ColdStartStatus, error) {
			return d.compute(ctx, userID)
		})
	if err != nil {
		d.logger.WithError(err).WithField("user_id", userID).
			Warn("Cold-start detection failed, assuming cold start")
		return coldStartFallback()
	}
	return status
}

func (d *ColdStartDetector) compute(ctx context.Context, userID uuid.UUID) (models.ColdStartStatus, error) {
	profile, err := d.profiler.Profile(ctx, userID)
	if err != nil {
		return models.ColdStartStatus{}, err
	}

	prefs, err := d.interactions.TagPreferences(ctx, userID)
	if err != nil {
		return models.ColdStartStatus{}, err
	}

	isCold := profile.TotalInteractions < d.cfg.ColdStart.MinInteractions || len(prefs) == 0

	mode := models.ModeMixed
	if isCold {
		mode = models.ModeHot
	}

	return models.ColdStartStatus{
		IsColdStart:     isCold,
		ActivityProfile: profile,
		TagPreferences:  prefs,
		RecommendedMode: mode,
	}, nil
}

func coldStartFallback() models.ColdStartStatus {
	return models.ColdStartStatus{
		IsColdStart:     true,
		ActivityProfile: models.ActivityProfile{Level: models.ActivityInactive},
		RecommendedMode: models.ModeHot,
	}
}

func coldStartCacheKey(userID uuid.UUID) string {
	return "coldstart:" + userID.String()
}
