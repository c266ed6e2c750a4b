// Package memory provides an in-memory ports.SnapshotStore used by
// service tests and single-run demo sessions.
package memory

import (
	"context"
	"sync"
)

// Store is a mutex-guarded in-memory snapshot store.
type Store struct {
	mu      sync.RWMutex
	records map[string][]byte
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{records: make(map[string][]byte)}
}

// Get retrieves a snapshot by key. Returns nil, nil when absent.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.records[key]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

// Set stores a snapshot under key, overwriting any previous record.
func (s *Store) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := make([]byte, len(value))
	copy(stored, value)
	s.records[key] = stored
	return nil
}

// Len reports the number of stored records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
