package engine

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/veltra/mixfeed/internal/cache"
	"github.com/veltra/mixfeed/internal/config"
	"github.com/veltra/mixfeed/internal/metrics"
	"github.com/veltra/mixfeed/pkg/models"
)

// Engine assembles the mixed feed: cold-start detection, weight
// adjustment, concurrent provider fan-out, merge, exclusion, pagination
// and the optional page decorations.
type Engine struct {
	providers *CandidateProviders
	detector  *ColdStartDetector
	augmenter *SocialScoreAugmenter
	cache     cache.Store
	cfg       *config.Engine
	logger    *logrus.Logger
	metrics   *metrics.Metrics
}

func NewEngine(
	providers *CandidateProviders,
	detector *ColdStartDetector,
	augmenter *SocialScoreAugmenter,
	cacheStore cache.Store,
	cfg *config.Engine,
	logger *logrus.Logger,
	m *metrics.Metrics,
) *Engine {
	return &Engine{
		providers: providers,
		detector:  detector,
		augmenter: augmenter,
		cache:     cacheStore,
		cfg:       cfg,
		logger:    logger,
		metrics:   m,
	}
}

// GetMixedRecommendations produces one ranked feed page. A nil userID
// means an anonymous caller, which ranks with the cold-start weight row
// and skips every personalized provider.
func (e *Engine) GetMixedRecommendations(ctx context.Context, userID *uuid.UUID, opts models.RecommendationOptions) (*models.RecommendationResult, error) {
	if e.metrics != nil {
		e.metrics.FeedRequests.Inc()
	}

	if !opts.UseCache {
		result, err := e.build(ctx, userID, opts)
		if err != nil {
			return nil, err
		}
		return result, nil
	}

	key := feedCacheKey(userID, opts)
	result, hit, err := cache.GetOrCompute(ctx, e.cache, e.logger, key, e.cfg.Caching.FeedTTL,
		func(ctx context.Context) (models.RecommendationResult, error) {
			r, err := e.build(ctx, userID, opts)
			if err != nil {
				return models.RecommendationResult{}, err
			}
			return *r, nil
		})
	if err != nil {
		return nil, err
	}
	result.CacheHit = hit
	if e.metrics != nil {
		if hit {
			e.metrics.CacheHits.WithLabelValues("feed").Inc()
		} else {
			e.metrics.CacheMisses.WithLabelValues("feed").Inc()
		}
	}
	return &result, nil
}

// GetInfiniteScrollRecommendations is the cursorless scroll entry point:
// the client passes back everything it has already rendered as exclusions
// and always asks for page 1 of what remains.
func (e *Engine) GetInfiniteScrollRecommendations(ctx context.Context, userID *uuid.UUID, limit int, excludeIDs []uuid.UUID, tags []string) (*models.RecommendationResult, error) {
	return e.GetMixedRecommendations(ctx, userID, models.RecommendationOptions{
		Limit:      limit,
		Page:       1,
		Tags:       tags,
		ExcludeIDs: excludeIDs,
	})
}

func (e *Engine) build(ctx context.Context, userID *uuid.UUID, opts models.RecommendationOptions) (*models.RecommendationResult, error) {
	page, limit := ClampPage(e.cfg, opts.Page, opts.Limit)

	status := coldStartFallback()
	if userID != nil {
		status = e.detector.Detect(ctx, *userID)
	}
	weights := AdjustWeights(e.cfg, status, opts.CustomWeights)

	// Overfetch so exclusions and deep pages still fill up.
	fetchLimit := page*limit + len(opts.ExcludeIDs) + e.cfg.Pagination.OverfetchExtra

	byProvider := e.fanOut(ctx, userID, opts.Tags, fetchLimit, weights)

	candidates := MergeCandidates(byProvider, weights)
	candidates = ApplyExclusions(candidates, opts.ExcludeIDs)
	pageItems, pagination := Paginate(candidates, page, limit)

	if opts.IncludeSocialScores && userID != nil && e.augmenter != nil {
		e.augmenter.Augment(ctx, *userID, pageItems)
	}
	if opts.IncludeReasons {
		AttachReasons(pageItems)
	}

	result := &models.RecommendationResult{
		Recommendations: pageItems,
		Weights:         weights,
		Pagination:      pagination,
		QueryInfo: models.QueryInfo{
			RequestedLimit: opts.Limit,
			AdjustedLimit:  limit,
			IsColdStart:    status.IsColdStart,
			ExcludedCount:  len(opts.ExcludeIDs),
		},
		GeneratedAt: time.Now(),
	}
	if opts.IncludeColdStartAnalysis {
		result.ColdStart = &status
	}
	if opts.IncludeDiversity {
		stats := AnalyzeDiversity(pageItems)
		result.Diversity = &stats
	}
	return result, nil
}

// fanOut runs every positively weighted provider concurrently under a
// shared timeout. Personalized providers are skipped for anonymous
// callers. Provider failures already degrade to empty lists inside Fetch.
func (e *Engine) fanOut(ctx context.Context, userID *uuid.UUID, tags []string, fetchLimit int, weights models.WeightVector) map[models.Algorithm][]models.ScoredItem {
	fanCtx, cancel := context.WithTimeout(ctx, e.cfg.FanoutTimeout)
	defer cancel()

	req := ProviderRequest{UserID: userID, Tags: tags, Limit: fetchLimit}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	byProvider := make(map[models.Algorithm][]models.ScoredItem)

	for _, alg := range models.AllAlgorithms {
		if weights[alg] <= 0 {
			continue
		}
		if alg.Personalized() && userID == nil {
			continue
		}
		wg.Add(1)
		go func(alg models.Algorithm) {
			defer wg.Done()
			results := e.providers.Fetch(fanCtx, alg, req)
			mu.Lock()
			byProvider[alg] = results
			mu.Unlock()
		}(alg)
	}
	wg.Wait()

	return byProvider
}

// InvalidateUser drops every cached artifact tied to one user: activity
// profile, cold-start status, personalized provider results and feed
// pages.
func (e *Engine) InvalidateUser(ctx context.Context, userID uuid.UUID) error {
	if e.cache == nil {
		return nil
	}
	uid := userID.String()
	patterns := []string{
		"activity:" + uid,
		"coldstart:" + uid,
		"provider:*:" + uid + ":*",
		"feed:" + uid + ":*",
	}

	var firstErr error
	for _, pattern := range patterns {
		if err := e.cache.DeleteByPattern(ctx, pattern); err != nil {
			e.logger.WithError(err).WithField("pattern", pattern).
				Warn("Cache invalidation failed")
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// feedCacheKey covers every request knob that shapes the cached result:
// the built page also depends on the Include* decorations and any caller
// weight overrides, so those are part of the key.
func feedCacheKey(userID *uuid.UUID, opts models.RecommendationOptions) string {
	user := "anon"
	if userID != nil {
		user = userID.String()
	}
	return fmt.Sprintf("feed:%s:%d:%d:%s:%s:%s:%s", user, opts.Page, opts.Limit,
		strings.Join(opts.Tags, ","), hashIDs(opts.ExcludeIDs),
		optionFlags(opts), weightsFingerprint(opts.CustomWeights))
}

func optionFlags(opts models.RecommendationOptions) string {
	flags := []byte("----")
	if opts.IncludeDiversity {
		flags[0] = 'd'
	}
	if opts.IncludeColdStartAnalysis {
		flags[1] = 'c'
	}
	if opts.IncludeSocialScores {
		flags[2] = 's'
	}
	if opts.IncludeReasons {
		flags[3] = 'r'
	}
	return string(flags)
}

// weightsFingerprint serializes overrides in the fixed algorithm order so
// equal vectors always produce the same key.
func weightsFingerprint(overrides models.WeightVector) string {
	if len(overrides) == 0 {
		return "none"
	}
	parts := make([]string, 0, len(overrides))
	for _, alg := range models.AllAlgorithms {
		if w, ok := overrides[alg]; ok {
			parts = append(parts, fmt.Sprintf("%s=%g", alg, w))
		}
	}
	return strings.Join(parts, ",")
}

// hashIDs folds an exclusion list into a short fingerprint so cache keys
// stay bounded regardless of how much the client has already seen.
func hashIDs(ids []uuid.UUID) string {
	if len(ids) == 0 {
		return "none"
	}
	h := fnv.New64a()
	for _, id := range ids {
		h.Write(id[:])
	}
	return fmt.Sprintf("%x", h.Sum64())
}
