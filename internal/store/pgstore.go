package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/config"
)

// PostgresStore keeps each collection as a single jsonb row with a version
// column; Save is a compare-and-swap on the version.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore establishes a connection pool and ensures the documents
// table exists.
func NewPostgresStore(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (*PostgresStore, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	const schema = `
        CREATE TABLE IF NOT EXISTS documents (
            name    TEXT PRIMARY KEY,
            data    JSONB NOT NULL,
            version BIGINT NOT NULL
        )`
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info("connected to postgres")
	return &PostgresStore{pool: pool}, nil
}

// Close releases pool resources.
func (s *PostgresStore) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}

// Load reads the collection row. A missing row loads as an empty snapshot at
// version 0.
func (s *PostgresStore) Load(ctx context.Context, collection string) (Snapshot, error) {
	const query = `SELECT data, version FROM documents WHERE name=$1`

	var data []byte
	var version int64
	err := s.pool.QueryRow(ctx, query, collection).Scan(&data, &version)
	if errors.Is(err, pgx.ErrNoRows) {
		return Snapshot{}, nil
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: load %s: %v", ErrUnavailable, collection, err)
	}
	return Snapshot{Data: data, Version: version}, nil
}

// Save inserts the first version of a collection or swaps an existing row
// when the stored version still matches.
func (s *PostgresStore) Save(ctx context.Context, collection string, data []byte, expectedVersion int64) error {
	if expectedVersion == 0 {
		const insert = `INSERT INTO documents (name, data, version) VALUES ($1, $2, 1) ON CONFLICT (name) DO NOTHING`
		cmd, err := s.pool.Exec(ctx, insert, collection, data)
		if err != nil {
			return fmt.Errorf("%w: insert %s: %v", ErrUnavailable, collection, err)
		}
		if cmd.RowsAffected() == 0 {
			return ErrConflict
		}
		return nil
	}

	const update = `UPDATE documents SET data=$2, version=version+1 WHERE name=$1 AND version=$3`
	cmd, err := s.pool.Exec(ctx, update, collection, data, expectedVersion)
	if err != nil {
		return fmt.Errorf("%w: update %s: %v", ErrUnavailable, collection, err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrConflict
	}
	return nil
}

// Ping verifies database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}
