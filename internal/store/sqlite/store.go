// Package sqlite implements store.Store on a single local SQLite file.
package sqlite

import (
	"context"
	"database/sql"

	"tidyspot/internal/store"
)

// Store is the SQLite-backed implementation of store.Store. One *sql.DB is
// shared by all sub-adapters; every write commits immediately.
type Store struct {
	db *sql.DB
}

// New opens the database at path, applies the schema and returns the store.
func New(ctx context.Context, path string) (*Store, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	if err := Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// NewWithDB wraps an existing connection, applying the schema. Used by tests.
func NewWithDB(ctx context.Context, db *sql.DB) (*Store, error) {
	if err := Migrate(ctx, db); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Spots() store.Spots       { return &spotStore{db: s.db} }
func (s *Store) Checks() store.Checks     { return &checkStore{db: s.db} }
func (s *Store) Settings() store.Settings { return &settingStore{db: s.db} }
func (s *Store) Tokens() store.Tokens     { return &tokenStore{db: s.db} }
func (s *Store) Cameras() store.Cameras   { return &cameraStore{db: s.db} }
func (s *Store) Game() store.Game         { return &gameStore{db: s.db} }

// HealthPing verifies database connectivity.
func (s *Store) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error { return s.db.Close() }
