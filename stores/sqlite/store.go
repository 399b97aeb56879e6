package sqlite

import (
	"certificate-designer/core"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

type sqliteStore struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database and its collections table.
func NewStore(dataSourceName string) (*sqliteStore, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	collectionsTableStmt := `
	CREATE TABLE IF NOT EXISTS collections (
		key TEXT PRIMARY KEY,
		data BLOB NOT NULL,
		updated_at DATETIME NOT NULL
	);`
	if _, err = db.Exec(collectionsTableStmt); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create collections table: %w", err)
	}

	return &sqliteStore{db}, nil
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}

func (s *sqliteStore) LoadCollection(ctx context.Context, key string) ([]byte, error) {
	log := logrus.WithField("collection", key)

	var data []byte
	err := s.db.QueryRowContext(ctx, "SELECT data FROM collections WHERE key = ?", key).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("Collection not found")
			return nil, fmt.Errorf("collection %s: %w", key, core.ErrCollectionNotFound)
		}
		log.WithError(err).Error("Failed to load collection")
		return nil, err
	}

	log.WithField("data_length", len(data)).Debug("Collection loaded")
	return data, nil
}

func (s *sqliteStore) SaveCollection(ctx context.Context, key string, data []byte) error {
	log := logrus.WithFields(logrus.Fields{"collection": key, "data_length": len(data)})

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO collections (key, data, updated_at) VALUES (?, ?, ?) ON CONFLICT(key) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at",
		key, data, time.Now())
	if err != nil {
		log.WithError(err).Error("Failed to save collection")
		return err
	}

	log.Debug("Collection saved")
	return nil
}
