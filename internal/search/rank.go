package search

import (
	"math"
	"strings"
	"time"

	"github.com/veltra/mixfeed/pkg/models"
)

// Comprehensive score factor weights: relevance dominates, engagement
// history only nudges.
const (
	factorRelevance = 0.4
	factorQuality   = 0.3
	factorFreshness = 0.2
	factorBehavior  = 0.1
)

// Relevance bonuses for exact structural matches on top of the fuzzy
// distance.
const (
	bonusTitleExact  = 0.2
	bonusTagMatch    = 0.15
	bonusAuthorMatch = 0.1
)

// neutralRelevance is assigned to every item when the query is empty, so
// browsing without a query still ranks by quality and freshness.
const neutralRelevance = 0.5

// qualityScore is the engagement-volume factor. Each count saturates at a
// scale chosen so typical popular items land mid-range.
func qualityScore(item *models.ContentItem) float64 {
	return 0.2*capRatio(float64(item.Stats.Views), 10000) +
		0.3*capRatio(float64(item.Stats.Likes), 1000) +
		0.2*capRatio(float64(item.Stats.Shares), 500) +
		0.1*capRatio(float64(item.Stats.Comments), 100) +
		0.2*capRatio(float64(item.AuthorItemCount), 100)
}

// freshnessScore decays exponentially with age, with a trending component
// proxied by view volume.
func freshnessScore(item *models.ContentItem, now time.Time) float64 {
	daysSinceCreate := now.Sub(item.CreatedAt).Hours() / 24
	daysSinceUpdate := now.Sub(item.UpdatedAt).Hours() / 24
	trending := capRatio(float64(item.Stats.Views), 1000)

	return 0.4*math.Exp(-0.1*daysSinceCreate) +
		0.3*math.Exp(-0.1*daysSinceUpdate) +
		0.3*trending
}

// behaviorScore measures how readers engage once they arrive: view
// volume, dwell time, and the interaction-per-view conversion rate.
func behaviorScore(item *models.ContentItem) float64 {
	interactions := item.Stats.Likes + item.Stats.Shares +
		item.Stats.Comments + item.Stats.Collections

	conversion := 0.0
	if item.Stats.Views > 0 {
		conversion = capRatio(float64(interactions), float64(item.Stats.Views))
	}

	return 0.3*capRatio(float64(item.Stats.Views), 1000) +
		0.3*capRatio(item.Stats.AvgViewSeconds, 120) +
		0.4*conversion
}

// relevanceScore converts fuzzy distance to similarity and stacks the
// exact-match bonuses, capped at 1.
func relevanceScore(item *models.ContentItem, query string, fuzzyDistance float64) float64 {
	score := 1 - fuzzyDistance

	folded := fold(query)
	if folded != "" {
		if strings.Contains(fold(item.Title), folded) {
			score += bonusTitleExact
		}
		if tagEquals(item.Tags, folded) {
			score += bonusTagMatch
		}
		if strings.Contains(fold(item.AuthorName), folded) || strings.Contains(fold(item.AuthorHandle), folded) {
			score += bonusAuthorMatch
		}
	}

	if score > 1 {
		return 1
	}
	return score
}

func comprehensiveScore(relevance, quality, freshness, behavior float64) float64 {
	return factorRelevance*relevance +
		factorQuality*quality +
		factorFreshness*freshness +
		factorBehavior*behavior
}

func tagEquals(tags []string, folded string) bool {
	for _, tag := range tags {
		if fold(tag) == folded {
			return true
		}
	}
	return false
}

func capRatio(value, scale float64) float64 {
	if scale <= 0 || value <= 0 {
		return 0
	}
	r := value / scale
	if r > 1 {
		return 1
	}
	return r
}
