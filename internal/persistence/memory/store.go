// Package memory provides a map-backed BlobStore for tests and ephemeral runs.
package memory

import (
	"context"
	"sync"
)

// Store keeps blobs in memory.
type Store struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewStore constructs an empty Store.
func NewStore() *Store {
	return &Store{blobs: make(map[string][]byte)}
}

// Get implements persistence.BlobStore.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	blob, ok := s.blobs[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), blob...), true, nil
}

// Put implements persistence.BlobStore.
func (s *Store) Put(ctx context.Context, key string, blob []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.blobs[key] = append([]byte(nil), blob...)
	return nil
}
