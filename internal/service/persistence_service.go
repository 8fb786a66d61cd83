package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/unischedule-api/internal/models"
	"github.com/noah-isme/unischedule-api/internal/repository"
	"github.com/noah-isme/unischedule-api/pkg/jobs"
)

// JobTypeFlush identifies snapshot jobs on the persistence queue.
const JobTypeFlush = "store.flush"

type blobRepository interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, payload []byte) error
}

// PersistedStore is a container that can be snapshotted to a blob.
type PersistedStore interface {
	MarshalState() ([]byte, error)
	UnmarshalState(raw []byte) error
}

type jobEnqueuer interface {
	Enqueue(job jobs.Job) (bool, error)
}

// PersistenceService writes one versioned snapshot per store and restores them at
// boot. Mutations only mark a store dirty; the write happens on the queue.
type PersistenceService struct {
	blobs   blobRepository
	prefix  string
	metrics *MetricsService
	logger  *zap.Logger
	now     func() time.Time

	mu         sync.RWMutex
	stores     map[models.StoreName]PersistedStore
	flushLocks map[models.StoreName]*sync.Mutex
	queue      jobEnqueuer
}

// NewPersistenceService constructs the service. Keys are prefix + ":" + store name.
func NewPersistenceService(blobs blobRepository, prefix string, metrics *MetricsService, logger *zap.Logger) *PersistenceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PersistenceService{
		blobs:   blobs,
		prefix:  prefix,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
		stores:     make(map[models.StoreName]PersistedStore),
		flushLocks: make(map[models.StoreName]*sync.Mutex),
	}
}

// WithClock replaces the time source used for saved_at.
func (s *PersistenceService) WithClock(now func() time.Time) *PersistenceService {
	s.now = now
	return s
}

// Register attaches a store under name.
func (s *PersistenceService) Register(name models.StoreName, store PersistedStore) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stores[name] = store
	if _, ok := s.flushLocks[name]; !ok {
		s.flushLocks[name] = &sync.Mutex{}
	}
}

// AttachQueue routes Touch through q. Without a queue Touch flushes inline.
func (s *PersistenceService) AttachQueue(q jobEnqueuer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = q
}

// Key returns the blob key of a store.
func (s *PersistenceService) Key(name models.StoreName) string {
	if s.prefix == "" {
		return string(name)
	}
	return s.prefix + ":" + string(name)
}

// Hydrate loads every registered store from its blob. Missing blobs leave the
// store as constructed and are reported in the returned list.
func (s *PersistenceService) Hydrate(ctx context.Context) (missing []models.StoreName, err error) {
	for _, name := range models.AllStores {
		store, ok := s.store(name)
		if !ok {
			continue
		}
		raw, loadErr := s.blobs.Load(ctx, s.Key(name))
		if errors.Is(loadErr, repository.ErrNotFound) {
			missing = append(missing, name)
			continue
		}
		if loadErr != nil {
			return missing, fmt.Errorf("load %s: %w", name, loadErr)
		}

		var snap models.Snapshot
		if err := json.Unmarshal(raw, &snap); err != nil {
			return missing, fmt.Errorf("decode %s envelope: %w", name, err)
		}
		if snap.Version > models.SnapshotVersion {
			return missing, fmt.Errorf("%s snapshot version %d is newer than supported %d", name, snap.Version, models.SnapshotVersion)
		}
		if len(snap.State) == 0 || string(snap.State) == "null" {
			missing = append(missing, name)
			continue
		}
		if err := store.UnmarshalState(snap.State); err != nil {
			return missing, fmt.Errorf("restore %s: %w", name, err)
		}
		s.logger.Info("store hydrated", zap.String("store", string(name)), zap.Time("saved_at", snap.SavedAt))
	}
	return missing, nil
}

// Touch schedules a snapshot of name. Repeated touches before the job runs
// collapse into one write.
func (s *PersistenceService) Touch(name models.StoreName) {
	s.mu.RLock()
	q := s.queue
	s.mu.RUnlock()

	if q != nil {
		_, err := q.Enqueue(jobs.Job{
			ID:      uuid.NewString(),
			Type:    JobTypeFlush,
			Key:     string(name),
			Payload: name,
		})
		if err == nil {
			return
		}
		s.logger.Warn("flush enqueue failed, writing inline", zap.String("store", string(name)), zap.Error(err))
	}
	if err := s.Flush(context.Background(), name); err != nil {
		s.logger.Error("store flush failed", zap.String("store", string(name)), zap.Error(err))
	}
}

// HandleJob is the queue handler for flush jobs.
func (s *PersistenceService) HandleJob(ctx context.Context, job jobs.Job) error {
	name, ok := job.Payload.(models.StoreName)
	if job.Type != JobTypeFlush || !ok {
		return fmt.Errorf("unexpected job %s of type %s", job.ID, job.Type)
	}
	return s.Flush(ctx, name)
}

// Flush snapshots name and writes it synchronously. Flushes of one store run one at
// a time, so the last write always carries the newest snapshot.
func (s *PersistenceService) Flush(ctx context.Context, name models.StoreName) error {
	store, ok := s.store(name)
	if !ok {
		return fmt.Errorf("store %s not registered", name)
	}
	lock := s.flushLock(name)
	lock.Lock()
	defer lock.Unlock()

	started := time.Now()
	payload, err := s.encode(name, store)
	if err == nil {
		err = s.blobs.Save(ctx, s.Key(name), payload)
	}
	s.metrics.ObserveFlush(name, len(payload), time.Since(started), err)
	if err != nil {
		return fmt.Errorf("flush %s: %w", name, err)
	}
	s.logger.Debug("store flushed", zap.String("store", string(name)), zap.Int("bytes", len(payload)))
	return nil
}

// FlushAll writes every registered store, continuing past failures.
func (s *PersistenceService) FlushAll(ctx context.Context) error {
	var errs []error
	for _, name := range models.AllStores {
		if _, ok := s.store(name); !ok {
			continue
		}
		if err := s.Flush(ctx, name); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *PersistenceService) encode(name models.StoreName, store PersistedStore) ([]byte, error) {
	state, err := store.MarshalState()
	if err != nil {
		return nil, fmt.Errorf("encode %s state: %w", name, err)
	}
	return json.Marshal(models.Snapshot{
		Version: models.SnapshotVersion,
		Store:   name,
		SavedAt: s.now().UTC(),
		State:   state,
	})
}

func (s *PersistenceService) store(name models.StoreName) (PersistedStore, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	store, ok := s.stores[name]
	return store, ok
}

func (s *PersistenceService) flushLock(name models.StoreName) *sync.Mutex {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.flushLocks[name]
}
