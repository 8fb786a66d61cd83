package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisBlobRepository stores snapshots as plain Redis string values without expiry.
type RedisBlobRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisBlobRepository constructs a Redis-backed blob repository.
func NewRedisBlobRepository(client *redis.Client, logger *zap.Logger) *RedisBlobRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisBlobRepository{client: client, logger: logger}
}

// Load returns the blob stored under key.
func (r *RedisBlobRepository) Load(ctx context.Context, key string) ([]byte, error) {
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return raw, nil
}

// Save replaces the blob stored under key.
func (r *RedisBlobRepository) Save(ctx context.Context, key string, payload []byte) error {
	if err := r.client.Set(ctx, key, payload, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	r.logger.Debug("blob saved", zap.String("key", key), zap.Int("bytes", len(payload)))
	return nil
}

// Close releases the underlying Redis connection.
func (r *RedisBlobRepository) Close() error {
	return r.client.Close()
}
