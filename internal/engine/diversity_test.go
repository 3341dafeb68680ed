package engine

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/veltra/mixfeed/pkg/models"
)

func TestAnalyzeDiversity_RatiosInUnitInterval(t *testing.T) {
	authorA := uuid.New()
	authorB := uuid.New()
	page := []models.Candidate{
		{Item: testItem(uuid.New(), authorA, "one", []string{"go", "db"}, 0)},
		{Item: testItem(uuid.New(), authorA, "two", []string{"go", "web"}, 0)},
		{Item: testItem(uuid.New(), authorB, "three", []string{"go"}, 0)},
	}

	stats := AnalyzeDiversity(page)

	assert.GreaterOrEqual(t, stats.TagDiversity, 0.0)
	assert.LessOrEqual(t, stats.TagDiversity, 1.0)
	assert.GreaterOrEqual(t, stats.AuthorDiversity, 0.0)
	assert.LessOrEqual(t, stats.AuthorDiversity, 1.0)

	// 3 unique tags over 5 total, 2 unique authors over 3 items.
	assert.Equal(t, 3, stats.UniqueTags)
	assert.Equal(t, 5, stats.TotalTags)
	assert.InDelta(t, 0.6, stats.TagDiversity, 0.0001)
	assert.Equal(t, 2, stats.UniqueAuthors)
	assert.InDelta(t, 2.0/3.0, stats.AuthorDiversity, 0.0001)
}

func TestAnalyzeDiversity_UniqueNeverExceedsTotal(t *testing.T) {
	author := uuid.New()
	page := []models.Candidate{
		{Item: testItem(uuid.New(), author, "a", []string{"x", "x", "y"}, 0)},
	}

	stats := AnalyzeDiversity(page)

	assert.LessOrEqual(t, stats.UniqueTags, stats.TotalTags)
	assert.LessOrEqual(t, stats.UniqueAuthors, stats.TotalAuthors)
}

func TestAnalyzeDiversity_EmptyPage(t *testing.T) {
	stats := AnalyzeDiversity(nil)

	assert.Zero(t, stats.TagDiversity)
	assert.Zero(t, stats.AuthorDiversity)
	assert.Zero(t, stats.TotalAuthors)
}

func TestAnalyzeDiversity_SingleAuthorNoTags(t *testing.T) {
	author := uuid.New()
	page := []models.Candidate{
		{Item: testItem(uuid.New(), author, "a", nil, 0)},
		{Item: testItem(uuid.New(), author, "b", nil, 0)},
	}

	stats := AnalyzeDiversity(page)

	assert.Zero(t, stats.TagDiversity)
	assert.InDelta(t, 0.5, stats.AuthorDiversity, 0.0001)
}
