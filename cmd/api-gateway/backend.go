package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/unischedule-api/internal/handler"
	"github.com/noah-isme/unischedule-api/internal/repository"
	"github.com/noah-isme/unischedule-api/pkg/cache"
	"github.com/noah-isme/unischedule-api/pkg/config"
	"github.com/noah-isme/unischedule-api/pkg/database"
	"github.com/noah-isme/unischedule-api/pkg/storage"
)

// blobStore is the snapshot backend chosen by PERSISTENCE_BACKEND.
type blobStore interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, payload []byte) error
	Close() error
}

// openBlobStore connects the configured backend and returns the readiness
// checks that probe it.
func openBlobStore(ctx context.Context, cfg *config.Config, logr *zap.Logger) (blobStore, map[string]handler.ReadinessCheck, error) {
	switch cfg.Persistence.Backend {
	case config.BackendMemory, "":
		return repository.NewMemoryBlobRepository(), nil, nil

	case config.BackendFile:
		files, err := storage.NewLocalStorage(cfg.Persistence.Dir)
		if err != nil {
			return nil, nil, fmt.Errorf("open snapshot dir: %w", err)
		}
		return repository.NewFileBlobRepository(files), nil, nil

	case config.BackendRedis:
		client, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		checks := map[string]handler.ReadinessCheck{
			"redis": func(ctx context.Context) error { return client.Ping(ctx).Err() },
		}
		return repository.NewRedisBlobRepository(client, logr), checks, nil

	case config.BackendPostgres, config.BackendSQLite:
		var (
			repo *repository.SQLBlobRepository
			name = cfg.Persistence.Backend
		)
		if name == config.BackendPostgres {
			db, err := database.NewPostgres(cfg.Database)
			if err != nil {
				return nil, nil, err
			}
			repo = repository.NewSQLBlobRepository(db)
		} else {
			db, err := database.NewSQLite(cfg.SQLite)
			if err != nil {
				return nil, nil, err
			}
			repo = repository.NewSQLBlobRepository(db)
		}
		if err := repo.Migrate(ctx); err != nil {
			_ = repo.Close()
			return nil, nil, fmt.Errorf("migrate %s snapshots: %w", name, err)
		}
		checks := map[string]handler.ReadinessCheck{name: repo.Ping}
		return repo, checks, nil
	}
	return nil, nil, fmt.Errorf("unknown persistence backend %q", cfg.Persistence.Backend)
}
