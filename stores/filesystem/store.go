package filesystem

import (
	"certificate-designer/core"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/sirupsen/logrus"
)

var validKey = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// fsStore writes each collection to <basePath>/<key>.json.
type fsStore struct {
	basePath string
}

// NewStore creates a new filesystem-based store.
func NewStore(basePath string) (*fsStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	return &fsStore{basePath: basePath}, nil
}

func (s *fsStore) collectionPath(key string) (string, error) {
	if !validKey.MatchString(key) || key == "." || key == ".." {
		return "", fmt.Errorf("invalid collection key %q", key)
	}
	return filepath.Join(s.basePath, key+".json"), nil
}

func (s *fsStore) LoadCollection(ctx context.Context, key string) ([]byte, error) {
	filePath, err := s.collectionPath(key)
	if err != nil {
		return nil, err
	}
	log := logrus.WithFields(logrus.Fields{"collection": key, "path": filePath})

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Debug("Collection file not found")
			return nil, fmt.Errorf("collection %s: %w", key, core.ErrCollectionNotFound)
		}
		log.WithError(err).Error("Failed to read collection file")
		return nil, err
	}

	log.WithField("data_length", len(data)).Debug("Collection loaded")
	return data, nil
}

// SaveCollection writes through a temp file and renames it so a crash never
// leaves a half-written collection behind.
func (s *fsStore) SaveCollection(ctx context.Context, key string, data []byte) error {
	filePath, err := s.collectionPath(key)
	if err != nil {
		return err
	}
	log := logrus.WithFields(logrus.Fields{"collection": key, "path": filePath})

	tmp, err := os.CreateTemp(s.basePath, key+".*.tmp")
	if err != nil {
		log.WithError(err).Error("Failed to create temp file")
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		log.WithError(err).Error("Failed to write collection file")
		return err
	}
	if err := tmp.Close(); err != nil {
		log.WithError(err).Error("Failed to close collection file")
		return err
	}
	if err := os.Rename(tmpPath, filePath); err != nil {
		log.WithError(err).Error("Failed to move collection file into place")
		return err
	}

	log.WithField("data_length", len(data)).Debug("Collection saved")
	return nil
}
