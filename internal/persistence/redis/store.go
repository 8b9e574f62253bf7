// Package redis provides a BlobStore backed by plain Redis string keys.
package redis

import (
	"context"
	"errors"

	"github.com/go-redis/redis/v8"
)

// Store keeps each blob under prefix+key.
type Store struct {
	client redis.Cmdable
	prefix string
}

// NewStore constructs a Store on top of an existing client.
func NewStore(client redis.Cmdable, prefix string) *Store {
	return &Store{client: client, prefix: prefix}
}

// Get implements persistence.BlobStore.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	blob, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return blob, true, nil
}

// Put implements persistence.BlobStore. Keys never expire.
func (s *Store) Put(ctx context.Context, key string, blob []byte) error {
	return s.client.Set(ctx, s.prefix+key, blob, 0).Err()
}
