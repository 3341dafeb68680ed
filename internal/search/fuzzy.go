// Package search implements fuzzy full-text ranking over the published
// corpus: a weighted multi-field Levenshtein matcher feeding a
// multi-factor comprehensive score.
package search

import (
	"strings"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"

	"github.com/veltra/mixfeed/pkg/models"
)

// Field weights bias matches toward the fields readers actually search
// by. Title and tags dominate; author fields only nudge.
const (
	weightTitle        = 0.8
	weightBody         = 0.6
	weightSummary      = 0.4
	weightTags         = 0.7
	weightAuthorName   = 0.1
	weightAuthorHandle = 0.05
)

// minMatchLength ignores one-character query tokens, which match almost
// anything under edit distance.
const minMatchLength = 2

// similarityFloor cuts off token pairs that are more different than alike.
const similarityFloor = 0.5

// Distance computes the weighted fuzzy distance between a query and an
// item across its searchable fields. 0 is a perfect match, 1 the worst.
// The second return is false when no field matched at all.
func Distance(item *models.ContentItem, query string) (float64, bool) {
	tokens := tokenize(query)
	if len(tokens) == 0 {
		return 1, false
	}

	summary := ""
	if item.Summary != nil {
		summary = *item.Summary
	}

	fields := []struct {
		text   string
		weight float64
	}{
		{item.Title, weightTitle},
		{item.Body, weightBody},
		{summary, weightSummary},
		{strings.Join(item.Tags, " "), weightTags},
		{item.AuthorName, weightAuthorName},
		{item.AuthorHandle, weightAuthorHandle},
	}

	var weightedSum, weightTotal float64
	for _, f := range fields {
		score := fieldScore(tokens, f.text)
		if score <= 0 {
			continue
		}
		weightedSum += score * f.weight
		weightTotal += f.weight
	}
	if weightTotal == 0 {
		return 1, false
	}
	return 1 - weightedSum/weightTotal, true
}

// fieldScore averages each query token's best similarity against the
// field's tokens.
func fieldScore(queryTokens []string, text string) float64 {
	fieldTokens := tokenize(text)
	if len(fieldTokens) == 0 {
		return 0
	}

	var sum float64
	for _, q := range queryTokens {
		best := 0.0
		for _, t := range fieldTokens {
			if s := tokenSimilarity(q, t); s > best {
				best = s
			}
			if best == 1 {
				break
			}
		}
		sum += best
	}
	return sum / float64(len(queryTokens))
}

func tokenSimilarity(query, token string) float64 {
	if len([]rune(query)) < minMatchLength {
		return 0
	}
	if query == token {
		return 1
	}
	if strings.Contains(token, query) {
		return 0.9
	}

	dist := levenshtein.ComputeDistance(query, token)
	longest := len([]rune(query))
	if l := len([]rune(token)); l > longest {
		longest = l
	}
	sim := 1 - float64(dist)/float64(longest)
	if sim < similarityFloor {
		return 0
	}
	return sim
}

// tokenize case-folds and splits on whitespace. Unicode fold rather than
// ASCII lowercasing so queries match across scripts.
func tokenize(s string) []string {
	return strings.Fields(cases.Fold().String(s))
}

func fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}
