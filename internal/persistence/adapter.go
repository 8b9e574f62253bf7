package persistence

import (
	"context"
	"fmt"

	"github.com/rajvarma2599/fitnessapp/internal/domain"
)

// DefaultKey is the storage key the workout list lives under.
const DefaultKey = "workouts"

// BlobStore is a key-value store of opaque blobs.
type BlobStore interface {
	// Get reports found=false when the key has never been written.
	Get(ctx context.Context, key string) (blob []byte, found bool, err error)
	Put(ctx context.Context, key string, blob []byte) error
}

// Adapter implements domain.Store over a BlobStore, rewriting the whole list
// on every save.
type Adapter struct {
	blobs BlobStore
	key   string
}

// NewAdapter constructs an Adapter. An empty key falls back to DefaultKey.
func NewAdapter(blobs BlobStore, key string) *Adapter {
	if key == "" {
		key = DefaultKey
	}
	return &Adapter{blobs: blobs, key: key}
}

// Key is the storage key in use.
func (a *Adapter) Key() string { return a.key }

// Load implements domain.Store.
func (a *Adapter) Load(ctx context.Context) ([]domain.WorkoutRecord, error) {
	blob, found, err := a.blobs.Get(ctx, a.key)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", a.key, err)
	}
	if !found {
		return nil, nil
	}
	return Decode(a.key, blob)
}

// Save implements domain.Store.
func (a *Adapter) Save(ctx context.Context, records []domain.WorkoutRecord) error {
	blob, err := Encode(records)
	if err != nil {
		return err
	}
	if err := a.blobs.Put(ctx, a.key, blob); err != nil {
		return fmt.Errorf("write %s: %w", a.key, err)
	}
	return nil
}
