package redis

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
)

// SnapshotStore implements ports.SnapshotStore on Redis. Snapshots
// live under a common namespace prefix and never expire; the ledger
// owns their lifecycle.
type SnapshotStore struct {
	client *goredis.Client
	prefix string
}

// NewSnapshotStore creates a Redis-backed snapshot store.
func NewSnapshotStore(client *goredis.Client) *SnapshotStore {
	return &SnapshotStore{
		client: client,
		prefix: "vault:",
	}
}

// Get retrieves a snapshot by key. Returns nil, nil when absent.
func (s *SnapshotStore) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if err != nil {
		if err == goredis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("redis snapshot get: %w", err)
	}
	return val, nil
}

// Set stores a snapshot under key, overwriting any previous record.
func (s *SnapshotStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis snapshot set: %w", err)
	}
	return nil
}
