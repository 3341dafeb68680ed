package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/veltra/mixfeed/internal/cache"
	"github.com/veltra/mixfeed/internal/config"
	"github.com/veltra/mixfeed/internal/metrics"
	"github.com/veltra/mixfeed/internal/store"
	"github.com/veltra/mixfeed/pkg/models"
)

// ProviderRequest is the shared input for every candidate provider.
type ProviderRequest struct {
	UserID *uuid.UUID
	Tags   []string
	Limit  int
}

// CandidateProviders implements the six ranking strategies. Every provider
// is individually cacheable and degrades to an empty list on dependency
// failure; a failing provider only shrinks the candidate pool.
type CandidateProviders struct {
	content      ContentReader
	interactions InteractionReader
	similarity   ContentSimilarity
	social       SocialGraph
	cache        cache.Store
	cfg          *config.Engine
	logger       *logrus.Logger
	metrics      *metrics.Metrics
}

func NewCandidateProviders(
	content ContentReader,
	interactions InteractionReader,
	similarity ContentSimilarity,
	social SocialGraph,
	cacheStore cache.Store,
	cfg *config.Engine,
	logger *logrus.Logger,
	m *metrics.Metrics,
) *CandidateProviders {
	return &CandidateProviders{
		content:      content,
		interactions: interactions,
		similarity:   similarity,
		social:       social,
		cache:        cacheStore,
		cfg:          cfg,
		logger:       logger,
		metrics:      m,
	}
}

// Fetch runs one provider behind its cache. Errors are logged and turned
// into an empty result, never propagated.
func (p *CandidateProviders) Fetch(ctx context.Context, alg models.Algorithm, req ProviderRequest) []models.ScoredItem {
	start := time.Now()

	results, hit, err := cache.GetOrCompute(ctx, p.cache, p.logger, providerCacheKey(alg, req),
		p.cfg.Caching.ProviderTTL,
		func(ctx context.Context) ([]models.ScoredItem, error) {
			return p.compute(ctx, alg, req)
		})

	if p.metrics != nil {
		p.metrics.ProviderDuration.WithLabelValues(string(alg)).Observe(time.Since(start).Seconds())
	}
	if err != nil {
		p.logger.WithError(err).WithField("provider", alg).
			Warn("Candidate provider failed, returning empty list")
		if p.metrics != nil {
			p.metrics.ProviderFailures.WithLabelValues(string(alg)).Inc()
		}
		return nil
	}
	if p.metrics != nil {
		scope := "provider"
		if hit {
			p.metrics.CacheHits.WithLabelValues(scope).Inc()
		} else {
			p.metrics.CacheMisses.WithLabelValues(scope).Inc()
		}
		p.metrics.ProviderCandidates.WithLabelValues(string(alg)).Observe(float64(len(results)))
	}
	return results
}

func (p *CandidateProviders) compute(ctx context.Context, alg models.Algorithm, req ProviderRequest) ([]models.ScoredItem, error) {
	switch alg {
	case models.AlgorithmHot:
		return p.hot(ctx, req)
	case models.AlgorithmLatest:
		return p.latest(ctx, req)
	case models.AlgorithmUpdated:
		return p.updated(ctx, req)
	case models.AlgorithmContentBased:
		return p.contentBased(ctx, req)
	case models.AlgorithmCollaborative:
		return p.collaborative(ctx, req)
	case models.AlgorithmSocialCF:
		return p.socialCF(ctx, req)
	default:
		return nil, fmt.Errorf("unknown provider: %s", alg)
	}
}

// hot returns published items from the rolling window ordered by the
// precomputed hotness score, widening the window when the narrow one
// yields fewer than half the requested count.
func (p *CandidateProviders) hot(ctx context.Context, req ProviderRequest) ([]models.ScoredItem, error) {
	now := time.Now()

	items, err := p.content.HottestPublished(ctx, now.Add(-p.cfg.Providers.HotWindow), req.Tags, req.Limit)
	if err != nil {
		return nil, err
	}
	scored := scoreByHotness(items)

	if len(scored) < req.Limit/2 {
		wide, err := p.content.HottestPublished(ctx, now.Add(-p.cfg.Providers.HotWideWindow), req.Tags, req.Limit)
		if err != nil {
			p.logger.WithError(err).Warn("Hot window widening failed, keeping narrow results")
		} else {
			scored = mergeKeepHigher(scored, scoreByHotness(wide))
		}
	}

	sortByScoreDesc(scored)
	return capResults(scored, req.Limit), nil
}

// latest scores by recency: 1/age, which favors newer items monotonically
// without renormalization.
func (p *CandidateProviders) latest(ctx context.Context, req ProviderRequest) ([]models.ScoredItem, error) {
	now := time.Now()

	items, err := p.content.LatestPublished(ctx, now.Add(-p.cfg.Providers.LatestWindow), req.Tags, req.Limit)
	if err != nil {
		return nil, err
	}
	scored := scoreByRecency(items, now)

	if len(scored) < req.Limit/2 {
		wide, err := p.content.LatestPublished(ctx, now.Add(-p.cfg.Providers.LatestWideWindow), req.Tags, req.Limit)
		if err != nil {
			p.logger.WithError(err).Warn("Latest window widening failed, keeping narrow results")
		} else {
			scored = mergeKeepHigher(scored, scoreByRecency(wide, now))
		}
	}

	sortByScoreDesc(scored)
	return capResults(scored, req.Limit), nil
}

func (p *CandidateProviders) updated(ctx context.Context, req ProviderRequest) ([]models.ScoredItem, error) {
	now := time.Now()

	scored, err := p.content.RecentlyUpdated(ctx, now.Add(-p.cfg.Providers.UpdatedWindow), req.Tags, req.Limit)
	if err != nil {
		return nil, err
	}

	if len(scored) < req.Limit/2 {
		wide, err := p.content.RecentlyUpdated(ctx, now.Add(-p.cfg.Providers.UpdatedWideWindow), req.Tags, req.Limit)
		if err != nil {
			p.logger.WithError(err).Warn("Updated window widening failed, keeping narrow results")
		} else {
			scored = mergeKeepHigher(scored, wide)
		}
	}

	sortByScoreDesc(scored)
	return capResults(scored, req.Limit), nil
}

func (p *CandidateProviders) contentBased(ctx context.Context, req ProviderRequest) ([]models.ScoredItem, error) {
	if req.UserID == nil {
		return nil, nil
	}

	prefs, err := p.interactions.TagPreferences(ctx, *req.UserID)
	if err != nil {
		return nil, err
	}
	if len(prefs) == 0 {
		return nil, nil
	}

	exclude, err := p.interactedSet(ctx, *req.UserID)
	if err != nil {
		return nil, err
	}

	return p.similarity.ContentBasedCandidates(ctx, prefs, exclude,
		p.cfg.Providers.ContentMinSimilarity, req.Tags, req.Limit)
}

func (p *CandidateProviders) collaborative(ctx context.Context, req ProviderRequest) ([]models.ScoredItem, error) {
	if req.UserID == nil {
		return nil, nil
	}
	scored, err := p.social.UserCFItemScores(ctx, *req.UserID,
		p.cfg.Providers.CFMinSimilarity, p.cfg.Providers.ExcludeInteracted, req.Limit)
	if err != nil {
		return nil, err
	}
	return p.hydrate(ctx, scored, req.Tags)
}

func (p *CandidateProviders) socialCF(ctx context.Context, req ProviderRequest) ([]models.ScoredItem, error) {
	if req.UserID == nil {
		return nil, nil
	}
	scored, err := p.social.SocialCFItemScores(ctx, *req.UserID,
		p.cfg.Providers.SocialMinSimilarity, p.cfg.Providers.ExcludeInteracted, req.Limit)
	if err != nil {
		return nil, err
	}
	return p.hydrate(ctx, scored, req.Tags)
}

func (p *CandidateProviders) interactedSet(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]struct{}, error) {
	if !p.cfg.Providers.ExcludeInteracted {
		return nil, nil
	}
	ids, err := p.interactions.InteractedItemIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	set := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

// hydrate resolves graph-scored ids into full content items, preserving
// the graph's score order and applying the tag filter.
func (p *CandidateProviders) hydrate(ctx context.Context, scored []store.ScoredID, tags []string) ([]models.ScoredItem, error) {
	if len(scored) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, len(scored))
	for i, s := range scored {
		ids[i] = s.ID
	}
	items, err := p.content.ByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]models.ContentItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	var results []models.ScoredItem
	for _, s := range scored {
		item, ok := byID[s.ID]
		if !ok {
			continue
		}
		if !item.HasAnyTag(tags) {
			continue
		}
		results = append(results, models.ScoredItem{Item: item, Score: s.Score})
	}
	return results, nil
}

func providerCacheKey(alg models.Algorithm, req ProviderRequest) string {
	user := "anon"
	if req.UserID != nil {
		user = req.UserID.String()
	}
	return fmt.Sprintf("provider:%s:%s:%d:%s", alg, user, req.Limit, strings.Join(req.Tags, ","))
}

func scoreByHotness(items []models.ContentItem) []models.ScoredItem {
	scored := make([]models.ScoredItem, 0, len(items))
	for _, item := range items {
		scored = append(scored, models.ScoredItem{Item: item, Score: item.HotScore})
	}
	return scored
}

func scoreByRecency(items []models.ContentItem, now time.Time) []models.ScoredItem {
	scored := make([]models.ScoredItem, 0, len(items))
	for _, item := range items {
		age := now.Sub(item.CreatedAt).Seconds()
		if age < 1 {
			age = 1
		}
		scored = append(scored, models.ScoredItem{Item: item, Score: 1 / age})
	}
	return scored
}

// mergeKeepHigher dedups two scored lists by item id, keeping the
// higher-scoring duplicate and the first list's order for survivors.
func mergeKeepHigher(narrow, wide []models.ScoredItem) []models.ScoredItem {
	index := make(map[uuid.UUID]int, len(narrow))
	merged := make([]models.ScoredItem, len(narrow))
	copy(merged, narrow)
	for i, s := range merged {
		index[s.Item.ID] = i
	}

	for _, s := range wide {
		if i, seen := index[s.Item.ID]; seen {
			if s.Score > merged[i].Score {
				merged[i] = s
			}
			continue
		}
		index[s.Item.ID] = len(merged)
		merged = append(merged, s)
	}
	return merged
}

func sortByScoreDesc(scored []models.ScoredItem) {
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
}

func capResults(scored []models.ScoredItem, limit int) []models.ScoredItem {
	if limit > 0 && len(scored) > limit {
		return scored[:limit]
	}
	return scored
}
