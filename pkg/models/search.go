package models

// SortKey selects the ordering of search results.
type SortKey string

const (
	SortComprehensive SortKey = "comprehensive"
	SortRelevance     SortKey = "relevance"
	SortQuality       SortKey = "quality"
	SortFreshness     SortKey = "freshness"
	SortPopularity    SortKey = "popularity"
	SortCreatedAt     SortKey = "created_at"
)

// SearchResult carries the per-factor sub-scores alongside the item. All
// scores are in [0,1] except FuzzyMatchScore, which is the raw distance
// from the fuzzy matcher (0 = perfect match).
type SearchResult struct {
	Item               ContentItem `json:"item"`
	RelevanceScore     float64     `json:"relevance_score"`
	QualityScore       float64     `json:"quality_score"`
	FreshnessScore     float64     `json:"freshness_score"`
	UserBehaviorScore  float64     `json:"user_behavior_score"`
	ComprehensiveScore float64     `json:"comprehensive_score"`
	FuzzyMatchScore    float64     `json:"fuzzy_match_score"`
}

type SearchOptions struct {
	Page   int     `json:"page"`
	Limit  int     `json:"limit"`
	SortBy SortKey `json:"sort_by"`
}

type SearchPage struct {
	Results    []SearchResult `json:"results"`
	Query      string         `json:"query"`
	SortBy     SortKey        `json:"sort_by"`
	Pagination Pagination     `json:"pagination"`
}
