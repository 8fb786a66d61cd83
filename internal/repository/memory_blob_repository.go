package repository

import (
	"context"
	"sync"
)

// MemoryBlobRepository keeps snapshot blobs in process memory. State is lost on restart.
type MemoryBlobRepository struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryBlobRepository creates an empty blob repository.
func NewMemoryBlobRepository() *MemoryBlobRepository {
	return &MemoryBlobRepository{blobs: make(map[string][]byte)}
}

// Load returns the blob stored under key.
func (r *MemoryBlobRepository) Load(_ context.Context, key string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	blob, ok := r.blobs[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), blob...), nil
}

// Save replaces the blob stored under key.
func (r *MemoryBlobRepository) Save(_ context.Context, key string, payload []byte) error {
	r.mu.Lock()
	r.blobs[key] = append([]byte(nil), payload...)
	r.mu.Unlock()
	return nil
}

// Close is a no-op.
func (r *MemoryBlobRepository) Close() error { return nil }
