package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

const snapshotTableDDL = `CREATE TABLE IF NOT EXISTS store_snapshots (
	store_key TEXT PRIMARY KEY,
	payload TEXT NOT NULL,
	saved_at TIMESTAMP NOT NULL
)`

// SQLBlobRepository stores snapshots in a single key/value table. The same queries
// run on PostgreSQL and SQLite; placeholders are rebound per driver.
type SQLBlobRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewSQLBlobRepository constructs a SQL-backed blob repository.
func NewSQLBlobRepository(db *sqlx.DB) *SQLBlobRepository {
	return &SQLBlobRepository{db: db, now: time.Now}
}

// Migrate creates the snapshot table when missing.
func (r *SQLBlobRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, snapshotTableDDL); err != nil {
		return fmt.Errorf("migrate store_snapshots: %w", err)
	}
	return nil
}

// Load returns the blob stored under key.
func (r *SQLBlobRepository) Load(ctx context.Context, key string) ([]byte, error) {
	query := r.db.Rebind(`SELECT payload FROM store_snapshots WHERE store_key = ?`)
	var payload string
	if err := r.db.GetContext(ctx, &payload, query, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load blob %s: %w", key, err)
	}
	return []byte(payload), nil
}

// Save upserts the blob stored under key.
func (r *SQLBlobRepository) Save(ctx context.Context, key string, payload []byte) error {
	query := r.db.Rebind(`INSERT INTO store_snapshots (store_key, payload, saved_at) VALUES (?, ?, ?)
ON CONFLICT (store_key) DO UPDATE SET payload = excluded.payload, saved_at = excluded.saved_at`)
	if _, err := r.db.ExecContext(ctx, query, key, string(payload), r.now().UTC()); err != nil {
		return fmt.Errorf("save blob %s: %w", key, err)
	}
	return nil
}

// Ping checks that the database answers.
func (r *SQLBlobRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the database handle.
func (r *SQLBlobRepository) Close() error {
	return r.db.Close()
}
