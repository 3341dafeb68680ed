// Package store holds the read-only collaborator implementations the
// ranking engine consumes: content and interaction repositories on
// PostgreSQL, and the social graph on Neo4j. Every query carries an
// explicit LIMIT so no scan runs unbounded over a large corpus.
package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Querier is the slice of pgxpool.Pool the stores need; pgxmock satisfies
// it in tests.
type Querier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

// ScoredID is an (item id, raw score) pair produced by graph-side scoring
// before hydration into full content items.
type ScoredID struct {
	ID    uuid.UUID
	Score float64
}
