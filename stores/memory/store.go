package memory

import (
	"certificate-designer/core"
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// memStore keeps collections in process memory. Nothing survives a restart.
type memStore struct {
	mu          sync.RWMutex
	collections map[string][]byte
}

// NewStore creates a new in-memory store.
func NewStore() *memStore {
	return &memStore{collections: make(map[string][]byte)}
}

func (s *memStore) LoadCollection(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	data, ok := s.collections[key]
	s.mu.RUnlock()

	log := logrus.WithField("collection", key)
	if !ok {
		log.Debug("Collection not found")
		return nil, fmt.Errorf("collection %s: %w", key, core.ErrCollectionNotFound)
	}

	out := make([]byte, len(data))
	copy(out, data)
	log.WithField("data_length", len(out)).Debug("Collection loaded")
	return out, nil
}

func (s *memStore) SaveCollection(ctx context.Context, key string, data []byte) error {
	if key == "" {
		return fmt.Errorf("collection key is required")
	}

	stored := make([]byte, len(data))
	copy(stored, data)

	s.mu.Lock()
	s.collections[key] = stored
	s.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"collection":  key,
		"data_length": len(stored),
	}).Debug("Collection saved")
	return nil
}
