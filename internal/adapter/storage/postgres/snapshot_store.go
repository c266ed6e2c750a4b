package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// SnapshotStore implements ports.SnapshotStore on a single snapshots
// table. Every operation is a single-key read or upsert; there is no
// multi-key transaction surface.
type SnapshotStore struct {
	pool Pool
}

// NewSnapshotStore creates a PostgreSQL-backed snapshot store.
func NewSnapshotStore(pool Pool) *SnapshotStore {
	return &SnapshotStore{pool: pool}
}

// Init creates the snapshots table if it does not exist.
func (s *SnapshotStore) Init(ctx context.Context) error {
	query := `CREATE TABLE IF NOT EXISTS snapshots (
		key TEXT PRIMARY KEY,
		record JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`
	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("create snapshots table: %w", err)
	}
	return nil
}

// Get retrieves a snapshot by key. Returns nil, nil when absent.
func (s *SnapshotStore) Get(ctx context.Context, key string) ([]byte, error) {
	query := `SELECT record FROM snapshots WHERE key = $1`

	var record []byte
	err := s.pool.QueryRow(ctx, query, key).Scan(&record)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	return record, nil
}

// Set upserts a snapshot under key.
func (s *SnapshotStore) Set(ctx context.Context, key string, value []byte) error {
	query := `INSERT INTO snapshots (key, record, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET record = EXCLUDED.record, updated_at = NOW()`

	if _, err := s.pool.Exec(ctx, query, key, value); err != nil {
		return fmt.Errorf("set snapshot: %w", err)
	}
	return nil
}
