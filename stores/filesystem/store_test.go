package filesystem

import (
	"certificate-designer/core"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestNewStore_CreatesDirectory(t *testing.T) {
	basePath := filepath.Join(t.TempDir(), "nested", "data")

	if _, err := NewStore(basePath); err != nil {
		t.Fatalf("NewStore() failed: %v", err)
	}
	if info, err := os.Stat(basePath); err != nil || !info.IsDir() {
		t.Errorf("NewStore() did not create %s", basePath)
	}
}

func TestSaveLoadCollection(t *testing.T) {
	basePath := t.TempDir()
	store, err := NewStore(basePath)
	if err != nil {
		t.Fatalf("NewStore() failed: %v", err)
	}
	ctx := context.Background()

	if err := store.SaveCollection(ctx, "certificate_templates", []byte(`[]`)); err != nil {
		t.Fatalf("SaveCollection() failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(basePath, "certificate_templates.json")); err != nil {
		t.Errorf("Collection file not written: %v", err)
	}

	if err := store.SaveCollection(ctx, "certificate_templates", []byte(`[{"id":"b"}]`)); err != nil {
		t.Fatalf("SaveCollection() overwrite failed: %v", err)
	}
	data, err := store.LoadCollection(ctx, "certificate_templates")
	if err != nil {
		t.Fatalf("LoadCollection() failed: %v", err)
	}
	if string(data) != `[{"id":"b"}]` {
		t.Errorf("Data mismatch: got %q", string(data))
	}

	entries, err := os.ReadDir(basePath)
	if err != nil {
		t.Fatalf("ReadDir() failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("Expected only the collection file, found %d entries", len(entries))
	}
}

func TestLoadCollection_NotFound(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore() failed: %v", err)
	}

	_, err = store.LoadCollection(context.Background(), "missing")
	if !errors.Is(err, core.ErrCollectionNotFound) {
		t.Errorf("LoadCollection() error = %v, want ErrCollectionNotFound", err)
	}
}

func TestInvalidKeys(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore() failed: %v", err)
	}
	ctx := context.Background()

	for _, key := range []string{"", ".", "..", "../escape", "a/b", "with space"} {
		if err := store.SaveCollection(ctx, key, []byte("[]")); err == nil {
			t.Errorf("SaveCollection(%q) should fail", key)
		}
		if _, err := store.LoadCollection(ctx, key); err == nil {
			t.Errorf("LoadCollection(%q) should fail", key)
		}
	}
}
