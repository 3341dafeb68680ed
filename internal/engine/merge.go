package engine

import (
	"sort"

	"github.com/google/uuid"

	"github.com/veltra/mixfeed/pkg/models"
)

// MergeCandidates combines per-provider result lists into a single ranked
// candidate list. Each item's total is the sum of rawScore*weight over
// every provider that returned it; duplicates collapse into one candidate
// carrying all per-algorithm raw scores. Providers are consumed in the
// fixed models.AllAlgorithms order so the outcome is deterministic.
func MergeCandidates(byProvider map[models.Algorithm][]models.ScoredItem, weights models.WeightVector) []models.Candidate {
	combined := make(map[uuid.UUID]*models.Candidate)
	var order []uuid.UUID

	for _, alg := range models.AllAlgorithms {
		weight := weights[alg]
		if weight <= 0 {
			continue
		}
		for _, scored := range byProvider[alg] {
			id := scored.Item.ID
			c, ok := combined[id]
			if !ok {
				c = &models.Candidate{
					Item:              scored.Item,
					Scores:            make(map[models.Algorithm]float64),
					DaysSinceModified: scored.DaysSinceModified,
				}
				combined[id] = c
				order = append(order, id)
			}
			c.Scores[alg] = scored.Score
			c.TotalScore += scored.Score * weight
			if c.DaysSinceModified == nil && scored.DaysSinceModified != nil {
				c.DaysSinceModified = scored.DaysSinceModified
			}
		}
	}

	candidates := make([]models.Candidate, 0, len(order))
	for _, id := range order {
		c := combined[id]
		c.RecommendationType = string(dominantAlgorithm(c.Scores, weights))
		candidates = append(candidates, *c)
	}

	sortCandidates(candidates)
	return candidates
}

// dominantAlgorithm labels a candidate with the provider contributing the
// largest weighted share of its total score.
func dominantAlgorithm(scores map[models.Algorithm]float64, weights models.WeightVector) models.Algorithm {
	var best models.Algorithm
	bestContribution := -1.0
	for _, alg := range models.AllAlgorithms {
		raw, ok := scores[alg]
		if !ok {
			continue
		}
		contribution := raw * weights[alg]
		if contribution > bestContribution {
			bestContribution = contribution
			best = alg
		}
	}
	return best
}

// sortCandidates orders by total score descending, breaking ties by item
// id so equal-scored items have a stable, reproducible order.
func sortCandidates(candidates []models.Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].TotalScore != candidates[j].TotalScore {
			return candidates[i].TotalScore > candidates[j].TotalScore
		}
		return candidates[i].Item.ID.String() < candidates[j].Item.ID.String()
	})
}
