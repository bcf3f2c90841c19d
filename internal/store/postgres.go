package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// postgresStore implements TreeStore on a single PostgreSQL table keyed by
// path. Update takes a row lock (SELECT ... FOR UPDATE) so concurrent
// read-modify-write sequences on the same path serialise instead of
// silently losing writes.
type postgresStore struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewPostgres creates a PostgreSQL-backed tree store. The store takes
// ownership of the pool and closes it on Close.
func NewPostgres(pool *pgxpool.Pool, logger zerolog.Logger) TreeStore {
	return &postgresStore{
		pool:   pool,
		logger: logger.With().Str("store", "postgres").Logger(),
	}
}

// EnsureSchema creates the backing table if it does not exist. Safe to run
// on every startup.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	query := `
		CREATE TABLE IF NOT EXISTS tree_records (
			path       TEXT PRIMARY KEY,
			value      JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`
	if _, err := pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to ensure tree_records schema: %w", err)
	}
	return nil
}

// Get returns the raw JSON stored at path, or ErrNotFound.
func (s *postgresStore) Get(ctx context.Context, path string) ([]byte, error) {
	query := `SELECT value FROM tree_records WHERE path = $1`

	var value []byte
	err := s.pool.QueryRow(ctx, query, path).Scan(&value)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		s.logger.Error().Err(err).Str("path", path).Msg("failed to query record")
		return nil, fmt.Errorf("failed to query record at %s: %w", path, err)
	}
	return value, nil
}

// Set unconditionally writes value at path, overwriting any prior record.
func (s *postgresStore) Set(ctx context.Context, path string, value []byte) error {
	query := `
		INSERT INTO tree_records (path, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (path) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
	`

	if _, err := s.pool.Exec(ctx, query, path, value); err != nil {
		s.logger.Error().Err(err).Str("path", path).Msg("failed to write record")
		return fmt.Errorf("failed to write record at %s: %w", path, err)
	}
	return nil
}

// Update atomically applies fn to the record at path inside a transaction
// holding an advisory lock on the path. An advisory lock rather than a row
// lock, so create-if-absent serialises even when the row does not exist yet.
func (s *postgresStore) Update(ctx context.Context, path string, fn UpdateFunc) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, path); err != nil {
		s.logger.Error().Err(err).Str("path", path).Msg("failed to lock path")
		return fmt.Errorf("failed to lock path %s: %w", path, err)
	}

	var old []byte
	err = tx.QueryRow(ctx, `SELECT value FROM tree_records WHERE path = $1`, path).Scan(&old)
	if err != nil && err != pgx.ErrNoRows {
		s.logger.Error().Err(err).Str("path", path).Msg("failed to query record")
		return fmt.Errorf("failed to query record at %s: %w", path, err)
	}

	next, err := fn(old)
	if err == ErrUnchanged {
		return tx.Commit(ctx)
	}
	if err != nil {
		return err
	}

	upsert := `
		INSERT INTO tree_records (path, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (path) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
	`
	if _, err := tx.Exec(ctx, upsert, path, next); err != nil {
		s.logger.Error().Err(err).Str("path", path).Msg("failed to update record")
		return fmt.Errorf("failed to update record at %s: %w", path, err)
	}

	return tx.Commit(ctx)
}

// Close closes the underlying connection pool.
func (s *postgresStore) Close() error {
	s.pool.Close()
	return nil
}
