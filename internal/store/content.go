package store

import (
	"fmt"
	"time"

	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/veltra/mixfeed/pkg/models"
)

// ContentStore reads content items from PostgreSQL.
type ContentStore struct {
	db     Querier
	logger *logrus.Logger
}

func NewContentStore(db Querier, logger *logrus.Logger) *ContentStore {
	return &ContentStore{db: db, logger: logger}
}

const contentColumns = `
	ci.id, ci.author_id, u.display_name, u.handle,
	ci.title, ci.summary, ci.body, ci.tags, ci.status, ci.hot_score,
	ci.view_count, ci.like_count, ci.share_count, ci.comment_count,
	ci.collection_count, ci.avg_view_seconds,
	u.published_count, ci.created_at, ci.updated_at, ci.edited_at`

func scanContentItem(rows interface {
	Scan(dest ...interface{}) error
}) (models.ContentItem, error) {
	var item models.ContentItem
	err := rows.Scan(
		&item.ID, &item.AuthorID, &item.AuthorName, &item.AuthorHandle,
		&item.Title, &item.Summary, &item.Body, &item.Tags, &item.Status, &item.HotScore,
		&item.Stats.Views, &item.Stats.Likes, &item.Stats.Shares, &item.Stats.Comments,
		&item.Stats.Collections, &item.Stats.AvgViewSeconds,
		&item.AuthorItemCount, &item.CreatedAt, &item.UpdatedAt, &item.EditedAt,
	)
	return item, err
}

// HottestPublished returns published items created at or after since,
// ordered by the precomputed hot score descending.
func (s *ContentStore) HottestPublished(ctx context.Context, since time.Time, tags []string, limit int) ([]models.ContentItem, error) {
	query := `
		SELECT ` + contentColumns + `
		FROM content_items ci
		JOIN users u ON u.id = ci.author_id
		WHERE ci.status = 'published'
			AND ci.created_at >= $1`
	args := []interface{}{since}

	if len(tags) > 0 {
		query += " AND ci.tags && $2"
		args = append(args, tags)
	}
	query += fmt.Sprintf(" ORDER BY ci.hot_score DESC LIMIT $%d", len(args)+1)
	args = append(args, limit)

	return s.queryItems(ctx, query, args...)
}

// LatestPublished returns published items created at or after since,
// newest first.
func (s *ContentStore) LatestPublished(ctx context.Context, since time.Time, tags []string, limit int) ([]models.ContentItem, error) {
	query := `
		SELECT ` + contentColumns + `
		FROM content_items ci
		JOIN users u ON u.id = ci.author_id
		WHERE ci.status = 'published'
			AND ci.created_at >= $1`
	args := []interface{}{since}

	if len(tags) > 0 {
		query += " AND ci.tags && $2"
		args = append(args, tags)
	}
	query += fmt.Sprintf(" ORDER BY ci.created_at DESC LIMIT $%d", len(args)+1)
	args = append(args, limit)

	return s.queryItems(ctx, query, args...)
}

// RecentlyUpdated returns published items substantively revised at or after
// since, newest revision first. The updated score decays with revision age
// and is boosted by engagement; the exact formula is owned here, the engine
// treats it as opaque.
func (s *ContentStore) RecentlyUpdated(ctx context.Context, since time.Time, tags []string, limit int) ([]models.ScoredItem, error) {
	query := `
		SELECT ` + contentColumns + `,
			(1.0 / (1.0 + EXTRACT(EPOCH FROM (NOW() - ci.edited_at)) / 86400.0))
				* (0.7 + 0.3 * LEAST(ci.like_count / 100.0, 1.0)) AS updated_score,
			EXTRACT(EPOCH FROM (NOW() - ci.edited_at)) / 86400.0 AS days_since_modified
		FROM content_items ci
		JOIN users u ON u.id = ci.author_id
		WHERE ci.status = 'published'
			AND ci.edited_at IS NOT NULL
			AND ci.edited_at >= $1`
	args := []interface{}{since}

	if len(tags) > 0 {
		query += " AND ci.tags && $2"
		args = append(args, tags)
	}
	query += fmt.Sprintf(" ORDER BY ci.edited_at DESC LIMIT $%d", len(args)+1)
	args = append(args, limit)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("recently updated query failed: %w", err)
	}
	defer rows.Close()

	var results []models.ScoredItem
	for rows.Next() {
		var item models.ContentItem
		var score, days float64
		if err := rows.Scan(
			&item.ID, &item.AuthorID, &item.AuthorName, &item.AuthorHandle,
			&item.Title, &item.Summary, &item.Body, &item.Tags, &item.Status, &item.HotScore,
			&item.Stats.Views, &item.Stats.Likes, &item.Stats.Shares, &item.Stats.Comments,
			&item.Stats.Collections, &item.Stats.AvgViewSeconds,
			&item.AuthorItemCount, &item.CreatedAt, &item.UpdatedAt, &item.EditedAt,
			&score, &days,
		); err != nil {
			s.logger.WithError(err).Error("Failed to scan recently updated row")
			continue
		}
		d := days
		results = append(results, models.ScoredItem{Item: item, Score: score, DaysSinceModified: &d})
	}
	return results, rows.Err()
}

// ByIDs hydrates full content items for graph-scored ids. Order of the
// result is unspecified.
func (s *ContentStore) ByIDs(ctx context.Context, ids []uuid.UUID) ([]models.ContentItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `
		SELECT ` + contentColumns + `
		FROM content_items ci
		JOIN users u ON u.id = ci.author_id
		WHERE ci.id = ANY($1)`
	return s.queryItems(ctx, query, ids)
}

// Corpus returns the bounded published corpus the search engine scores.
func (s *ContentStore) Corpus(ctx context.Context, tags []string, limit int) ([]models.ContentItem, error) {
	query := `
		SELECT ` + contentColumns + `
		FROM content_items ci
		JOIN users u ON u.id = ci.author_id
		WHERE ci.status = 'published'`
	var args []interface{}

	if len(tags) > 0 {
		query += " AND ci.tags && $1"
		args = append(args, tags)
	}
	query += fmt.Sprintf(" ORDER BY ci.created_at DESC LIMIT $%d", len(args)+1)
	args = append(args, limit)

	return s.queryItems(ctx, query, args...)
}

func (s *ContentStore) queryItems(ctx context.Context, query string, args ...interface{}) ([]models.ContentItem, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("content query failed: %w", err)
	}
	defer rows.Close()

	var items []models.ContentItem
	for rows.Next() {
		item, err := scanContentItem(rows)
		if err != nil {
			s.logger.WithError(err).Error("Failed to scan content row")
			continue
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
