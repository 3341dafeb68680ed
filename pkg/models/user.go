package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Handle      string    `json:"handle" db:"handle"`
	DisplayName string    `json:"display_name" db:"display_name"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// InteractionKind enumerates the interaction events that feed activity
// profiling and tag preferences.
type InteractionKind string

const (
	InteractionLike       InteractionKind = "like"
	InteractionComment    InteractionKind = "comment"
	InteractionShare      InteractionKind = "share"
	InteractionCollection InteractionKind = "collection"
	InteractionView       InteractionKind = "view"
)

// AllInteractionKinds lists every kind counted by the activity profiler.
var AllInteractionKinds = []InteractionKind{
	InteractionLike,
	InteractionComment,
	InteractionShare,
	InteractionCollection,
	InteractionView,
}

// ActivityLevel is the discrete engagement bucket derived from a user's
// interaction volume.
type ActivityLevel string

const (
	ActivityVeryActive ActivityLevel = "very_active"
	ActivityActive     ActivityLevel = "active"
	ActivityModerate   ActivityLevel = "moderate"
	ActivityLow        ActivityLevel = "low"
	ActivityInactive   ActivityLevel = "inactive"
)

type InteractionBreakdown struct {
	Likes       int `json:"likes"`
	Comments    int `json:"comments"`
	Shares      int `json:"shares"`
	Collections int `json:"collections"`
	Views       int `json:"views"`
}

// ActivityProfile is derived per request (behind cache), never persisted.
type ActivityProfile struct {
	Score             float64              `json:"score"`
	Level             ActivityLevel        `json:"level"`
	TotalInteractions int                  `json:"total_interactions"`
	Breakdown         InteractionBreakdown `json:"breakdown"`
}

// RecommendationMode is the coarse strategy suggested by cold-start
// detection.
type RecommendationMode string

const (
	ModeHot   RecommendationMode = "hot"
	ModeMixed RecommendationMode = "mixed"
)

type ColdStartStatus struct {
	IsColdStart     bool               `json:"is_cold_start"`
	ActivityProfile ActivityProfile    `json:"activity_profile"`
	TagPreferences  map[string]float64 `json:"tag_preferences,omitempty"`
	RecommendedMode RecommendationMode `json:"recommended_mode"`
}
