package search

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/veltra/mixfeed/internal/config"
	"github.com/veltra/mixfeed/internal/metrics"
	"github.com/veltra/mixfeed/pkg/models"
)

// CorpusReader supplies the published items the ranker scores.
type CorpusReader interface {
	Corpus(ctx context.Context, tags []string, limit int) ([]models.ContentItem, error)
}

// Engine scores the corpus against a query and returns one sorted page.
// An empty query degrades to a quality/freshness browse with neutral
// relevance for every item.
type Engine struct {
	corpus  CorpusReader
	cfg     *config.Search
	logger  *logrus.Logger
	metrics *metrics.Metrics
}

func NewEngine(corpus CorpusReader, cfg *config.Search, logger *logrus.Logger, m *metrics.Metrics) *Engine {
	return &Engine{corpus: corpus, cfg: cfg, logger: logger, metrics: m}
}

func (e *Engine) Search(ctx context.Context, query string, opts models.SearchOptions) (*models.SearchPage, error) {
	if e.metrics != nil {
		e.metrics.SearchRequests.Inc()
	}

	page, limit := e.clamp(opts.Page, opts.Limit)
	sortBy := opts.SortBy
	if sortBy == "" {
		sortBy = models.SortComprehensive
	}

	items, err := e.corpus.Corpus(ctx, nil, e.cfg.MaxCorpusSize)
	if err != nil {
		return nil, fmt.Errorf("failed to load search corpus: %w", err)
	}

	query = strings.TrimSpace(query)
	results := e.score(items, query)
	sortResults(results, sortBy)

	total := len(results)
	skip := (page - 1) * limit
	totalPages := (total + limit - 1) / limit

	pagination := models.Pagination{
		Page:       page,
		Limit:      limit,
		Skip:       skip,
		Total:      total,
		TotalPages: totalPages,
		HasMore:    skip+limit < total,
	}

	var window []models.SearchResult
	if skip < total {
		end := skip + limit
		if end > total {
			end = total
		}
		window = results[skip:end]
	}

	return &models.SearchPage{
		Results:    window,
		Query:      query,
		SortBy:     sortBy,
		Pagination: pagination,
	}, nil
}

func (e *Engine) score(items []models.ContentItem, query string) []models.SearchResult {
	now := time.Now()
	results := make([]models.SearchResult, 0, len(items))

	for i := range items {
		item := &items[i]

		relevance := neutralRelevance
		fuzzy := 0.0
		if query != "" {
			dist, matched := Distance(item, query)
			if !matched {
				continue
			}
			fuzzy = dist
			relevance = relevanceScore(item, query, dist)
		}

		quality := qualityScore(item)
		freshness := freshnessScore(item, now)
		behavior := behaviorScore(item)

		results = append(results, models.SearchResult{
			Item:               *item,
			RelevanceScore:     relevance,
			QualityScore:       quality,
			FreshnessScore:     freshness,
			UserBehaviorScore:  behavior,
			ComprehensiveScore: comprehensiveScore(relevance, quality, freshness, behavior),
			FuzzyMatchScore:    fuzzy,
		})
	}
	return results
}

func (e *Engine) clamp(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = e.cfg.DefaultLimit
	}
	if limit > e.cfg.MaxLimit {
		limit = e.cfg.MaxLimit
	}
	return page, limit
}

func sortResults(results []models.SearchResult, sortBy models.SortKey) {
	key := func(r *models.SearchResult) float64 {
		switch sortBy {
		case models.SortRelevance:
			return r.RelevanceScore
		case models.SortQuality:
			return r.QualityScore
		case models.SortFreshness:
			return r.FreshnessScore
		case models.SortPopularity:
			return float64(r.Item.Stats.Views)
		default:
			return r.ComprehensiveScore
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		a, b := &results[i], &results[j]
		if sortBy == models.SortCreatedAt {
			if !a.Item.CreatedAt.Equal(b.Item.CreatedAt) {
				return a.Item.CreatedAt.After(b.Item.CreatedAt)
			}
		} else if key(a) != key(b) {
			return key(a) > key(b)
		}
		return a.Item.ID.String() < b.Item.ID.String()
	})
}
