package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/noah-isme/unischedule-api/pkg/storage"
)

// FileBlobRepository stores each snapshot as <key>.json on local disk. Writes are
// atomic, so a crash mid-save leaves the previous snapshot intact.
type FileBlobRepository struct {
	files *storage.LocalStorage
}

// NewFileBlobRepository wraps a local storage directory.
func NewFileBlobRepository(files *storage.LocalStorage) *FileBlobRepository {
	return &FileBlobRepository{files: files}
}

// Load reads the snapshot file for key.
func (r *FileBlobRepository) Load(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := r.files.Read(fileName(key))
	if err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load blob %s: %w", key, err)
	}
	return data, nil
}

// Save writes the snapshot file for key.
func (r *FileBlobRepository) Save(ctx context.Context, key string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := r.files.Save(fileName(key), payload); err != nil {
		return fmt.Errorf("save blob %s: %w", key, err)
	}
	return nil
}

// Close is a no-op.
func (r *FileBlobRepository) Close() error { return nil }

func fileName(key string) string {
	return key + ".json"
}
