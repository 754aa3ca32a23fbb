package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vipioko/vaxdog-commerce/internal/storage"
)

// DB is the subset of pgxpool.Pool the store needs. Narrowing it here lets
// tests substitute a pgxmock pool.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store implements storage.Store on a single-table PostgreSQL key-value
// layout.
type Store struct {
	db DB
}

// NewStore creates a new PostgreSQL-backed key-value store.
func NewStore(db DB) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the backing table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS commerce_state (
			key        TEXT PRIMARY KEY,
			value      BYTEA NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`

	if _, err := s.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("ensure commerce_state schema: %w", err)
	}
	return nil
}

// Get retrieves the value for the key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	query := `SELECT value FROM commerce_state WHERE key = $1`

	var value []byte
	if err := s.db.QueryRow(ctx, query, key).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrKeyNotFound
		}
		return nil, fmt.Errorf("get state %s: %w", key, err)
	}
	return value, nil
}

// Set upserts the value for the key.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	query := `
		INSERT INTO commerce_state (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`

	if _, err := s.db.Exec(ctx, query, key, value); err != nil {
		return fmt.Errorf("set state %s: %w", key, err)
	}
	return nil
}
