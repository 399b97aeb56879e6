package stores

import (
	"certificate-designer/core"
	"certificate-designer/stores/memory"
	"context"
	"errors"
	"reflect"
	"testing"
	"time"
)

type failingStore struct {
	loadErr error
	saveErr error
	data    map[string][]byte
}

func (f *failingStore) LoadCollection(ctx context.Context, key string) ([]byte, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	data, ok := f.data[key]
	if !ok {
		return nil, core.ErrCollectionNotFound
	}
	return data, nil
}

func (f *failingStore) SaveCollection(ctx context.Context, key string, data []byte) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	if f.data == nil {
		f.data = make(map[string][]byte)
	}
	f.data[key] = data
	return nil
}

func sampleTemplate() core.Template {
	t := core.NewTemplate()
	t.Name = "Course Completion"
	t.Issuer = "Acme Academy"
	t = core.AddElement(t, core.NewElement(core.ElementText, core.DefaultCanvas))
	t = core.AddElement(t, core.NewElement(core.ElementSignature, core.DefaultCanvas))
	return t
}

func TestTemplateRepository_ListEmpty(t *testing.T) {
	repo := NewTemplateRepository(memory.NewStore())

	templates, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if templates == nil || len(templates) != 0 {
		t.Errorf("List() = %v, want empty non-nil slice", templates)
	}
}

func TestTemplateRepository_SaveLoadRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*core.Template)
	}{
		{"defaults", func(*core.Template) {}},
		{"zero createdAt", func(tmpl *core.Template) { tmpl.CreatedAt = time.Time{} }},
		{"published with background", func(tmpl *core.Template) {
			tmpl.Published = true
			tmpl.BackgroundImage = "data:image/png;base64,AAAA"
			tmpl.Description = "Awarded on completion"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewTemplateRepository(memory.NewStore())
			ctx := context.Background()
			tmpl := sampleTemplate()
			tt.modify(&tmpl)

			saved, err := repo.Save(ctx, tmpl)
			if err != nil {
				t.Fatalf("Save() failed: %v", err)
			}
			loaded, err := repo.Load(ctx, tmpl.ID)
			if err != nil {
				t.Fatalf("Load() failed: %v", err)
			}

			if !loaded.UpdatedAt.Equal(saved.UpdatedAt) {
				t.Errorf("UpdatedAt mismatch: got %v, want %v", loaded.UpdatedAt, saved.UpdatedAt)
			}
			loaded.UpdatedAt = tmpl.UpdatedAt
			if !reflect.DeepEqual(loaded, tmpl) {
				t.Errorf("Round trip changed the template:\n got %+v\nwant %+v", loaded, tmpl)
			}
		})
	}
}

func TestTemplateRepository_SaveStampsUpdatedAt(t *testing.T) {
	repo := NewTemplateRepository(memory.NewStore())
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return fixed }

	tmpl := sampleTemplate()
	saved, err := repo.Save(context.Background(), tmpl)
	if err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	if !saved.UpdatedAt.Equal(fixed) {
		t.Errorf("UpdatedAt = %v, want %v", saved.UpdatedAt, fixed)
	}

	// A clock behind the incoming value never moves UpdatedAt backwards.
	future := fixed.Add(time.Hour)
	tmpl.UpdatedAt = future
	saved, err = repo.Save(context.Background(), tmpl)
	if err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	if saved.UpdatedAt.Before(future) {
		t.Errorf("UpdatedAt = %v, want >= %v", saved.UpdatedAt, future)
	}
}

func TestTemplateRepository_ReplaceKeepsCreatedAt(t *testing.T) {
	repo := NewTemplateRepository(memory.NewStore())
	ctx := context.Background()
	first := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return first }

	tmpl := sampleTemplate()
	tmpl.CreatedAt = first
	if _, err := repo.Save(ctx, tmpl); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	repo.now = func() time.Time { return first.Add(24 * time.Hour) }
	tmpl.Name = "Renamed"
	if _, err := repo.Save(ctx, tmpl); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	templates, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(templates) != 1 {
		t.Fatalf("Expected 1 template after replace, got %d", len(templates))
	}
	if templates[0].Name != "Renamed" {
		t.Errorf("Name = %q, want %q", templates[0].Name, "Renamed")
	}
	if !templates[0].CreatedAt.Equal(first) {
		t.Errorf("CreatedAt = %v, want %v", templates[0].CreatedAt, first)
	}
}

func TestTemplateRepository_SaveAppends(t *testing.T) {
	repo := NewTemplateRepository(memory.NewStore())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := repo.Save(ctx, sampleTemplate()); err != nil {
			t.Fatalf("Save() %d failed: %v", i, err)
		}
	}

	templates, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(templates) != 3 {
		t.Errorf("Expected 3 templates, got %d", len(templates))
	}
}

func TestTemplateRepository_SaveRejectsMissingID(t *testing.T) {
	repo := NewTemplateRepository(memory.NewStore())
	tmpl := sampleTemplate()
	tmpl.ID = ""

	if _, err := repo.Save(context.Background(), tmpl); !errors.Is(err, core.ErrMissingTemplateID) {
		t.Errorf("Save() error = %v, want ErrMissingTemplateID", err)
	}
	templates, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(templates) != 0 {
		t.Errorf("Expected nothing stored, got %d templates", len(templates))
	}
}

func TestTemplateRepository_LoadNotFound(t *testing.T) {
	repo := NewTemplateRepository(memory.NewStore())

	_, err := repo.Load(context.Background(), "missing")
	if !errors.Is(err, core.ErrTemplateNotFound) {
		t.Errorf("Load() error = %v, want ErrTemplateNotFound", err)
	}
}

func TestTemplateRepository_SaveFailure(t *testing.T) {
	storeErr := errors.New("quota exceeded")
	repo := NewTemplateRepository(&failingStore{saveErr: storeErr})

	_, err := repo.Save(context.Background(), sampleTemplate())
	if !errors.Is(err, storeErr) {
		t.Errorf("Save() error = %v, want %v", err, storeErr)
	}
}

func TestTemplateRepository_LoadFailure(t *testing.T) {
	storeErr := errors.New("disk unavailable")
	repo := NewTemplateRepository(&failingStore{loadErr: storeErr})

	if _, err := repo.List(context.Background()); !errors.Is(err, storeErr) {
		t.Errorf("List() error = %v, want %v", err, storeErr)
	}
}

func TestTemplateRepository_CorruptCollection(t *testing.T) {
	store := &failingStore{data: map[string][]byte{TemplatesCollection: []byte("{not json")}}
	repo := NewTemplateRepository(store)

	if _, err := repo.List(context.Background()); err == nil {
		t.Error("List() should fail on a corrupt collection")
	}
}

func TestTemplateRepository_Delete(t *testing.T) {
	repo := NewTemplateRepository(memory.NewStore())
	ctx := context.Background()
	keep, drop := sampleTemplate(), sampleTemplate()

	for _, tmpl := range []core.Template{keep, drop} {
		if _, err := repo.Save(ctx, tmpl); err != nil {
			t.Fatalf("Save() failed: %v", err)
		}
	}

	if err := repo.Delete(ctx, drop.ID); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, err := repo.Load(ctx, drop.ID); !errors.Is(err, core.ErrTemplateNotFound) {
		t.Errorf("Deleted template still loads: %v", err)
	}
	if _, err := repo.Load(ctx, keep.ID); err != nil {
		t.Errorf("Kept template failed to load: %v", err)
	}

	if err := repo.Delete(ctx, drop.ID); !errors.Is(err, core.ErrTemplateNotFound) {
		t.Errorf("Second Delete() error = %v, want ErrTemplateNotFound", err)
	}
}

func TestTemplateRepository_SetPublished(t *testing.T) {
	repo := NewTemplateRepository(memory.NewStore())
	ctx := context.Background()
	tmpl := sampleTemplate()

	if _, err := repo.Save(ctx, tmpl); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	updated, err := repo.SetPublished(ctx, tmpl.ID, true)
	if err != nil {
		t.Fatalf("SetPublished() failed: %v", err)
	}
	if !updated.Published {
		t.Error("SetPublished() did not set the flag")
	}

	loaded, err := repo.Load(ctx, tmpl.ID)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if !loaded.Published {
		t.Error("Published flag was not persisted")
	}

	if _, err := repo.SetPublished(ctx, "missing", true); !errors.Is(err, core.ErrTemplateNotFound) {
		t.Errorf("SetPublished() on missing id error = %v, want ErrTemplateNotFound", err)
	}
}
