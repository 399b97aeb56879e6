package stores

import (
	"certificate-designer/core"
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// LoadCollection decodes the collection under key, or returns def when
// nothing was ever saved there.
func LoadCollection[T any](ctx context.Context, store core.CollectionStore, key string, def []T) ([]T, error) {
	data, err := store.LoadCollection(ctx, key)
	if err != nil {
		if errors.Is(err, core.ErrCollectionNotFound) {
			return def, nil
		}
		return nil, err
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to decode collection %s: %w", key, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// SaveCollection encodes items and replaces the collection under key.
func SaveCollection[T any](ctx context.Context, store core.CollectionStore, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode collection %s: %w", key, err)
	}
	return store.SaveCollection(ctx, key, data)
}
