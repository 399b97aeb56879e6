package postgres

import (
	"certificate-designer/core"
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

type pgStore struct {
	pool *pgxpool.Pool
}

// NewStore opens a connection pool and makes sure the collections table exists.
func NewStore(ctx context.Context, dsn string) (*pgStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to reach postgres: %w", err)
	}

	collectionsTableStmt := `
	CREATE TABLE IF NOT EXISTS collections (
		key TEXT PRIMARY KEY,
		data JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);`
	if _, err := pool.Exec(ctx, collectionsTableStmt); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create collections table: %w", err)
	}

	return &pgStore{pool: pool}, nil
}

func (s *pgStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *pgStore) LoadCollection(ctx context.Context, key string) ([]byte, error) {
	log := logrus.WithField("collection", key)

	var data []byte
	err := s.pool.QueryRow(ctx, "SELECT data::text FROM collections WHERE key = $1", key).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Debug("Collection not found")
			return nil, fmt.Errorf("collection %s: %w", key, core.ErrCollectionNotFound)
		}
		log.WithError(err).Error("Failed to load collection")
		return nil, err
	}

	log.WithField("data_length", len(data)).Debug("Collection loaded")
	return data, nil
}

func (s *pgStore) SaveCollection(ctx context.Context, key string, data []byte) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO collections (key, data, updated_at) VALUES ($1, $2::jsonb, now())
		ON CONFLICT (key) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`,
		key, string(data))
	if err != nil {
		logrus.WithField("collection", key).WithError(err).Error("Failed to save collection")
		return err
	}
	return nil
}
