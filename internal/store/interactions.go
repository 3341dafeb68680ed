package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/veltra/mixfeed/pkg/models"
)

// InteractionStore reads interaction events from PostgreSQL. Writes happen
// elsewhere; the engine only ever aggregates.
type InteractionStore struct {
	db     Querier
	logger *logrus.Logger
}

func NewInteractionStore(db Querier, logger *logrus.Logger) *InteractionStore {
	return &InteractionStore{db: db, logger: logger}
}

// kindWeights biases tag preferences toward deliberate actions. A view is
// weak evidence of interest, a share is strong.
var kindWeights = map[models.InteractionKind]float64{
	models.InteractionLike:       3,
	models.InteractionComment:    4,
	models.InteractionShare:      5,
	models.InteractionCollection: 4,
	models.InteractionView:       1,
}

// CountsByKind returns the user's interaction breakdown across the five
// counted kinds. An unknown user simply has zero counts.
func (s *InteractionStore) CountsByKind(ctx context.Context, userID uuid.UUID) (models.InteractionBreakdown, error) {
	var breakdown models.InteractionBreakdown

	rows, err := s.db.Query(ctx, `
		SELECT kind, COUNT(*)
		FROM interactions
		WHERE user_id = $1
		GROUP BY kind`, userID)
	if err != nil {
		return breakdown, fmt.Errorf("interaction counts query failed: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var kind string
		var count int
		if err := rows.Scan(&kind, &count); err != nil {
			s.logger.WithError(err).Error("Failed to scan interaction count row")
			continue
		}
		switch models.InteractionKind(kind) {
		case models.InteractionLike:
			breakdown.Likes = count
		case models.InteractionComment:
			breakdown.Comments = count
		case models.InteractionShare:
			breakdown.Shares = count
		case models.InteractionCollection:
			breakdown.Collections = count
		case models.InteractionView:
			breakdown.Views = count
		}
	}
	return breakdown, rows.Err()
}

// TagPreferences aggregates the user's historical interactions into
// per-tag weights normalized to [0,1] against the strongest tag. An empty
// map means no usable history.
func (s *InteractionStore) TagPreferences(ctx context.Context, userID uuid.UUID) (map[string]float64, error) {
	rows, err := s.db.Query(ctx, `
		SELECT tag, i.kind, COUNT(*)
		FROM interactions i
		JOIN content_items ci ON ci.id = i.item_id
		CROSS JOIN LATERAL UNNEST(ci.tags) AS tag
		WHERE i.user_id = $1
		GROUP BY tag, i.kind
		LIMIT 500`, userID)
	if err != nil {
		return nil, fmt.Errorf("tag preferences query failed: %w", err)
	}
	defer rows.Close()

	raw := make(map[string]float64)
	for rows.Next() {
		var tag, kind string
		var count int
		if err := rows.Scan(&tag, &kind, &count); err != nil {
			s.logger.WithError(err).Error("Failed to scan tag preference row")
			continue
		}
		weight := kindWeights[models.InteractionKind(kind)]
		raw[tag] += weight * float64(count)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return map[string]float64{}, nil
	}

	max := 0.0
	for _, v := range raw {
		if v > max {
			max = v
		}
	}
	prefs := make(map[string]float64, len(raw))
	for tag, v := range raw {
		prefs[tag] = v / max
	}
	return prefs, nil
}

// InteractedItemIDs lists items the user has already acted on, for
// providers that exclude interacted content.
func (s *InteractionStore) InteractedItemIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := s.db.Query(ctx, `
		SELECT DISTINCT item_id
		FROM interactions
		WHERE user_id = $1 AND item_id IS NOT NULL
		LIMIT 5000`, userID)
	if err != nil {
		return nil, fmt.Errorf("interacted items query failed: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			s.logger.WithError(err).Error("Failed to scan interacted item row")
			continue
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
