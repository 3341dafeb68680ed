package models

import (
	"time"

	"github.com/google/uuid"
)

// Algorithm identifies a candidate provider. A closed set of constants
// rather than free-form strings so adding a provider forces the weight
// table and fan-out to be updated together.
type Algorithm string

const (
	AlgorithmHot           Algorithm = "hot"
	AlgorithmLatest        Algorithm = "latest"
	AlgorithmUpdated       Algorithm = "updated"
	AlgorithmContentBased  Algorithm = "content_based"
	AlgorithmCollaborative Algorithm = "collaborative_filtering"
	AlgorithmSocialCF      Algorithm = "social_collaborative_filtering"
)

// AllAlgorithms lists every candidate provider in fan-out order.
var AllAlgorithms = []Algorithm{
	AlgorithmHot,
	AlgorithmLatest,
	AlgorithmUpdated,
	AlgorithmContentBased,
	AlgorithmCollaborative,
	AlgorithmSocialCF,
}

// Personalized reports whether the algorithm depends on the user's own
// history. Personalized weights are forced to zero under cold start.
func (a Algorithm) Personalized() bool {
	switch a {
	case AlgorithmContentBased, AlgorithmCollaborative, AlgorithmSocialCF:
		return true
	}
	return false
}

// WeightVector maps each provider to its relative weight. Weights are
// relative contributions, not probabilities; rows of the default table sum
// to 1.0 by convention.
type WeightVector map[Algorithm]float64

// Clone returns an independent copy so callers can overlay overrides
// without mutating the shared table.
func (w WeightVector) Clone() WeightVector {
	out := make(WeightVector, len(w))
	for k, v := range w {
		out[k] = v
	}
	return out
}

// ScoredItem is a single provider's (item, raw score) pair.
type ScoredItem struct {
	Item  ContentItem `json:"item"`
	Score float64     `json:"score"`
	// DaysSinceModified is set by the updated provider for diagnostics.
	DaysSinceModified *float64 `json:"days_since_modified,omitempty"`
}

// SocialSignals is attached by the social score augmenter to the page being
// returned.
type SocialSignals struct {
	Score            float64  `json:"score"`
	DistanceScore    float64  `json:"distance_score"`
	InfluenceScore   float64  `json:"influence_score"`
	InteractionScore float64  `json:"interaction_score"`
	Reasons          []string `json:"reasons,omitempty"`
}

// Candidate is a merged, cross-provider comparable recommendation.
// TotalScore is the only field comparable across providers; Scores records
// each provider's raw contribution.
type Candidate struct {
	Item               ContentItem           `json:"item"`
	Scores             map[Algorithm]float64 `json:"scores"`
	TotalScore         float64               `json:"total_score"`
	RecommendationType string                `json:"recommendation_type"`
	DaysSinceModified  *float64              `json:"days_since_modified,omitempty"`
	Social             *SocialSignals        `json:"social,omitempty"`
	Reasons            []string              `json:"reasons,omitempty"`
}

type Pagination struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Skip       int  `json:"skip"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasMore    bool `json:"has_more"`
}

type DiversityStats struct {
	TagDiversity    float64 `json:"tag_diversity"`
	AuthorDiversity float64 `json:"author_diversity"`
	UniqueTags      int     `json:"unique_tags"`
	UniqueAuthors   int     `json:"unique_authors"`
	TotalTags       int     `json:"total_tags"`
	TotalAuthors    int     `json:"total_authors"`
}

type QueryInfo struct {
	RequestedLimit int  `json:"requested_limit"`
	AdjustedLimit  int  `json:"adjusted_limit"`
	IsColdStart    bool `json:"is_cold_start"`
	ExcludedCount  int  `json:"excluded_count"`
}

type RecommendationResult struct {
	Recommendations []Candidate      `json:"recommendations"`
	Weights         WeightVector     `json:"weights"`
	ColdStart       *ColdStartStatus `json:"cold_start,omitempty"`
	Diversity       *DiversityStats  `json:"diversity,omitempty"`
	Pagination      Pagination       `json:"pagination"`
	QueryInfo       QueryInfo        `json:"query_info"`
	GeneratedAt     time.Time        `json:"generated_at"`
	CacheHit        bool             `json:"cache_hit"`
}

// RecommendationOptions are the caller-supplied knobs for a mixed feed
// request.
type RecommendationOptions struct {
	Limit                    int          `json:"limit"`
	Page                     int          `json:"page"`
	Tags                     []string     `json:"tags,omitempty"`
	ExcludeIDs               []uuid.UUID  `json:"exclude_ids,omitempty"`
	CustomWeights            WeightVector `json:"custom_weights,omitempty"`
	IncludeDiversity         bool         `json:"include_diversity"`
	IncludeColdStartAnalysis bool         `json:"include_cold_start_analysis"`
	IncludeSocialScores      bool         `json:"include_social_scores"`
	IncludeReasons           bool         `json:"include_reasons"`
	UseCache                 bool         `json:"use_cache"`
}
