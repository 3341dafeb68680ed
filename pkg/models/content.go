package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	ContentStatusDraft     = "draft"
	ContentStatusPublished = "published"
	ContentStatusArchived  = "archived"
)

type ContentItem struct {
	ID           uuid.UUID    `json:"id" db:"id"`
	AuthorID     uuid.UUID    `json:"author_id" db:"author_id"`
	AuthorName   string       `json:"author_name" db:"author_name"`
	AuthorHandle string       `json:"author_handle" db:"author_handle"`
	Title        string       `json:"title" db:"title"`
	Summary      *string      `json:"summary,omitempty" db:"summary"`
	Body         string       `json:"body" db:"body"`
	Tags         []string     `json:"tags,omitempty" db:"tags"`
	Status       string       `json:"status" db:"status"`
	HotScore     float64      `json:"hot_score" db:"hot_score"`
	Stats        ContentStats `json:"stats"`
	// AuthorItemCount is the author's published item count, used as a
	// reputation proxy when scoring search results.
	AuthorItemCount int       `json:"author_item_count" db:"author_item_count"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
	// EditedAt is the last substantive revision; nil if never revised.
	EditedAt *time.Time `json:"edited_at,omitempty" db:"edited_at"`
}

type ContentStats struct {
	Views          int64   `json:"views" db:"view_count"`
	Likes          int64   `json:"likes" db:"like_count"`
	Shares         int64   `json:"shares" db:"share_count"`
	Comments       int64   `json:"comments" db:"comment_count"`
	Collections    int64   `json:"collections" db:"collection_count"`
	AvgViewSeconds float64 `json:"avg_view_seconds" db:"avg_view_seconds"`
}

// HasAnyTag reports whether the item carries at least one of the requested
// tags. An empty filter matches everything.
func (c *ContentItem) HasAnyTag(tags []string) bool {
	if len(tags) == 0 {
		return true
	}
	for _, want := range tags {
		for _, have := range c.Tags {
			if have == want {
				return true
			}
		}
	}
	return false
}
