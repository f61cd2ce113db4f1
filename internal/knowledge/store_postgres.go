package knowledge

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"odyssey/pkg/platform/sentinel"
)

// PostgresStore persists knowledge entries in PostgreSQL.
//
// Table:
//
//	system_knowledge(key text primary key, value jsonb, updated_at timestamptz)
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Upsert(ctx context.Context, record Record) error {
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO system_knowledge (key, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key)
		DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`, record.Key, []byte(record.Value), record.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert knowledge %s: %w", record.Key, err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, key string) (Record, error) {
	record := Record{Key: key}
	var value []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT value, updated_at FROM system_knowledge WHERE key = $1
	`, key).Scan(&value, &record.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, sentinel.ErrNotFound
		}
		return Record{}, fmt.Errorf("get knowledge %s: %w", key, err)
	}
	record.Value = value
	return record, nil
}
