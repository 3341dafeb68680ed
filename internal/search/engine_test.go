package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/veltra/mixfeed/internal/config"
	"github.com/veltra/mixfeed/pkg/models"
)

type staticCorpus struct {
	items []models.ContentItem
	err   error
}

func (s *staticCorpus) Corpus(ctx context.Context, tags []string, limit int) ([]models.ContentItem, error) {
	return s.items, s.err
}

func testSearchEngine(items ...models.ContentItem) *Engine {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	cfg := &config.Search{DefaultLimit: 20, MaxLimit: 100, MaxCorpusSize: 2000}
	return NewEngine(&staticCorpus{items: items}, cfg, logger, nil)
}

func TestSearch_EmptyQueryScoresNeutralRelevance(t *testing.T) {
	now := time.Now()
	item := models.ContentItem{
		ID:        uuid.New(),
		AuthorID:  uuid.New(),
		Title:     "Profiling Go services",
		Status:    models.ContentStatusPublished,
		CreatedAt: now,
		UpdatedAt: now,
		Stats: models.ContentStats{
			Views:          1000,
			Likes:          100,
			Shares:         50,
			Comments:       10,
			AvgViewSeconds: 60,
		},
		AuthorItemCount: 10,
	}

	page, err := testSearchEngine(item).Search(context.Background(), "", models.SearchOptions{})

	assert.NoError(t, err)
	assert.Len(t, page.Results, 1)
	r := page.Results[0]
	assert.InDelta(t, 0.5, r.RelevanceScore, 0.0001)
	// quality: every ratio is 0.1, weights sum to 1 -> 0.1
	assert.InDelta(t, 0.1, r.QualityScore, 0.001)
	// freshness: zero age decays to 0.7, trending ratio 1 adds 0.3
	assert.InDelta(t, 1.0, r.FreshnessScore, 0.01)
	// behavior: 0.3*1 + 0.3*0.5 + 0.4*(160/1000)
	assert.InDelta(t, 0.514, r.UserBehaviorScore, 0.001)
	// 0.4*0.5 + 0.3*0.1 + 0.2*1.0 + 0.1*0.514
	assert.InDelta(t, 0.4814, r.ComprehensiveScore, 0.01)
}

func TestSearch_QueryFiltersUnmatched(t *testing.T) {
	matching := models.ContentItem{
		ID: uuid.New(), AuthorID: uuid.New(),
		Title: "Postgres indexing deep dive", Status: models.ContentStatusPublished,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	unrelated := models.ContentItem{
		ID: uuid.New(), AuthorID: uuid.New(),
		Title: "Baking sourdough", Status: models.ContentStatusPublished,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}

	page, err := testSearchEngine(matching, unrelated).Search(context.Background(), "postgres", models.SearchOptions{})

	assert.NoError(t, err)
	assert.Len(t, page.Results, 1)
	assert.Equal(t, "Postgres indexing deep dive", page.Results[0].Item.Title)
}

func TestSearch_TitleMatchOutranksBodyMatch(t *testing.T) {
	now := time.Now()
	inTitle := models.ContentItem{
		ID: uuid.New(), AuthorID: uuid.New(),
		Title: "Kafka consumer groups", Body: "nothing else",
		Status: models.ContentStatusPublished, CreatedAt: now, UpdatedAt: now,
	}
	inBody := models.ContentItem{
		ID: uuid.New(), AuthorID: uuid.New(),
		Title: "Event pipelines", Body: "we use kafka heavily",
		Status: models.ContentStatusPublished, CreatedAt: now, UpdatedAt: now,
	}

	page, err := testSearchEngine(inBody, inTitle).Search(context.Background(), "kafka", models.SearchOptions{
		SortBy: models.SortRelevance,
	})

	assert.NoError(t, err)
	assert.Len(t, page.Results, 2)
	assert.Equal(t, "Kafka consumer groups", page.Results[0].Item.Title)
	assert.Greater(t, page.Results[0].RelevanceScore, page.Results[1].RelevanceScore)
}

func TestSearch_SortByPopularity(t *testing.T) {
	now := time.Now()
	popular := models.ContentItem{
		ID: uuid.New(), AuthorID: uuid.New(), Title: "a",
		Status: models.ContentStatusPublished, CreatedAt: now, UpdatedAt: now,
		Stats: models.ContentStats{Views: 9000},
	}
	obscure := models.ContentItem{
		ID: uuid.New(), AuthorID: uuid.New(), Title: "b",
		Status: models.ContentStatusPublished, CreatedAt: now, UpdatedAt: now,
		Stats: models.ContentStats{Views: 3},
	}

	page, err := testSearchEngine(obscure, popular).Search(context.Background(), "", models.SearchOptions{
		SortBy: models.SortPopularity,
	})

	assert.NoError(t, err)
	assert.Equal(t, "a", page.Results[0].Item.Title)
}

func TestSearch_SortByCreatedAt(t *testing.T) {
	old := models.ContentItem{
		ID: uuid.New(), AuthorID: uuid.New(), Title: "old",
		Status: models.ContentStatusPublished,
		CreatedAt: time.Now().Add(-240 * time.Hour), UpdatedAt: time.Now(),
	}
	fresh := models.ContentItem{
		ID: uuid.New(), AuthorID: uuid.New(), Title: "fresh",
		Status: models.ContentStatusPublished,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}

	page, err := testSearchEngine(old, fresh).Search(context.Background(), "", models.SearchOptions{
		SortBy: models.SortCreatedAt,
	})

	assert.NoError(t, err)
	assert.Equal(t, "fresh", page.Results[0].Item.Title)
}

func TestSearch_Pagination(t *testing.T) {
	now := time.Now()
	var items []models.ContentItem
	for i := 0; i < 5; i++ {
		items = append(items, models.ContentItem{
			ID: uuid.New(), AuthorID: uuid.New(), Title: "entry",
			Status: models.ContentStatusPublished, CreatedAt: now, UpdatedAt: now,
		})
	}

	page, err := testSearchEngine(items...).Search(context.Background(), "", models.SearchOptions{
		Page:  2,
		Limit: 2,
	})

	assert.NoError(t, err)
	assert.Len(t, page.Results, 2)
	assert.Equal(t, 5, page.Pagination.Total)
	assert.Equal(t, 3, page.Pagination.TotalPages)
	assert.True(t, page.Pagination.HasMore)
}

func TestSearch_ClampsLimit(t *testing.T) {
	page, err := testSearchEngine().Search(context.Background(), "", models.SearchOptions{Limit: 9999})

	assert.NoError(t, err)
	assert.Equal(t, 100, page.Pagination.Limit)
}

func TestSearch_CorpusFailurePropagates(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	cfg := &config.Search{DefaultLimit: 20, MaxLimit: 100, MaxCorpusSize: 2000}
	e := NewEngine(&staticCorpus{err: errors.New("connection refused")}, cfg, logger, nil)

	_, err := e.Search(context.Background(), "go", models.SearchOptions{})

	assert.Error(t, err)
}
