package constitution

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"odyssey/pkg/platform/sentinel"
)

// PostgresStore persists constitutional state in PostgreSQL.
//
// Table:
//
//	constitutional_state(category text, subcategory text, status text,
//	                     updated_at timestamptz,
//	                     primary key (category, subcategory))
type PostgresStore struct {
	db          *sql.DB
	category    string
	subcategory string
}

// NewPostgresStore constructs a store reading the sovereignty flag.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{
		db:          db,
		category:    CategoryGovernance,
		subcategory: SubcategorySovereignty,
	}
}

func (s *PostgresStore) Fetch(ctx context.Context) (State, error) {
	var state State
	err := s.db.QueryRowContext(ctx, `
		SELECT category, subcategory, status, updated_at
		FROM constitutional_state
		WHERE category = $1 AND subcategory = $2
	`, s.category, s.subcategory).Scan(
		&state.Category, &state.Subcategory, &state.Status, &state.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return State{}, sentinel.ErrNotFound
		}
		return State{}, fmt.Errorf("fetch constitutional state: %w", err)
	}
	return state, nil
}

func (s *PostgresStore) Set(ctx context.Context, state State) error {
	if state.Category == "" {
		state.Category = s.category
	}
	if state.Subcategory == "" {
		state.Subcategory = s.subcategory
	}
	if state.UpdatedAt.IsZero() {
		state.UpdatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO constitutional_state (category, subcategory, status, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (category, subcategory)
		DO UPDATE SET status = EXCLUDED.status, updated_at = EXCLUDED.updated_at
	`, state.Category, state.Subcategory, state.Status, state.UpdatedAt)
	if err != nil {
		return fmt.Errorf("set constitutional state: %w", err)
	}
	return nil
}
