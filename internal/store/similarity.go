package store

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"

	"github.com/veltra/mixfeed/pkg/models"
)

// SimilarityStore produces content-based candidates by cosine similarity
// between the user's tag-preference vector and item tag vectors.
type SimilarityStore struct {
	db     Querier
	logger *logrus.Logger
}

func NewSimilarityStore(db Querier, logger *logrus.Logger) *SimilarityStore {
	return &SimilarityStore{db: db, logger: logger}
}

// ContentBasedCandidates fetches published items sharing at least one
// preferred tag (bounded scan), scores them by cosine similarity against
// the preference vector, drops anything below minSimilarity or in exclude,
// and returns the top limit items sorted by similarity descending.
func (s *SimilarityStore) ContentBasedCandidates(
	ctx context.Context,
	prefs map[string]float64,
	exclude map[uuid.UUID]struct{},
	minSimilarity float64,
	tags []string,
	limit int,
) ([]models.ScoredItem, error) {
	if len(prefs) == 0 {
		return nil, nil
	}

	prefTags := make([]string, 0, len(prefs))
	for tag := range prefs {
		prefTags = append(prefTags, tag)
	}
	sort.Strings(prefTags)

	// Over-fetch so similarity filtering and exclusion don't starve the
	// result; the scan stays bounded.
	fetchLimit := limit * 4
	if fetchLimit < 50 {
		fetchLimit = 50
	}

	query := `
		SELECT ` + contentColumns + `
		FROM content_items ci
		JOIN users u ON u.id = ci.author_id
		WHERE ci.status = 'published'
			AND ci.tags && $1`
	args := []interface{}{prefTags}

	if len(tags) > 0 {
		query += " AND ci.tags && $2"
		args = append(args, tags)
	}
	query += fmt.Sprintf(" ORDER BY ci.hot_score DESC LIMIT $%d", len(args)+1)
	args = append(args, fetchLimit)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("content-based candidates query failed: %w", err)
	}
	defer rows.Close()

	var results []models.ScoredItem
	for rows.Next() {
		item, err := scanContentItem(rows)
		if err != nil {
			s.logger.WithError(err).Error("Failed to scan content-based candidate row")
			continue
		}
		if _, excluded := exclude[item.ID]; excluded {
			continue
		}
		sim := TagCosineSimilarity(prefs, item.Tags)
		if sim < minSimilarity {
			continue
		}
		results = append(results, models.ScoredItem{Item: item, Score: sim})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// TagCosineSimilarity computes cosine similarity between a weighted tag
// preference vector and an item's binary tag vector over their combined
// vocabulary.
func TagCosineSimilarity(prefs map[string]float64, itemTags []string) float64 {
	if len(prefs) == 0 || len(itemTags) == 0 {
		return 0
	}

	vocab := make(map[string]int, len(prefs)+len(itemTags))
	for tag := range prefs {
		if _, ok := vocab[tag]; !ok {
			vocab[tag] = len(vocab)
		}
	}
	for _, tag := range itemTags {
		if _, ok := vocab[tag]; !ok {
			vocab[tag] = len(vocab)
		}
	}

	userVec := make([]float64, len(vocab))
	itemVec := make([]float64, len(vocab))
	for tag, w := range prefs {
		userVec[vocab[tag]] = w
	}
	for _, tag := range itemTags {
		itemVec[vocab[tag]] = 1
	}

	dot := floats.Dot(userVec, itemVec)
	normU := floats.Norm(userVec, 2)
	normI := floats.Norm(itemVec, 2)
	if normU == 0 || normI == 0 {
		return 0
	}
	return dot / (normU * normI)
}
