package stores

import (
	"certificate-designer/core"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// TemplatesCollection is the key the template list is stored under.
const TemplatesCollection = "certificate_templates"

// TemplateRepository persists templates as one collection in a
// CollectionStore. It performs no geometry validation.
type TemplateRepository struct {
	store core.CollectionStore
	key   string
	now   func() time.Time

	// mu serializes read-modify-write cycles on the collection.
	mu sync.Mutex
}

func NewTemplateRepository(store core.CollectionStore) *TemplateRepository {
	return &TemplateRepository{
		store: store,
		key:   TemplatesCollection,
		now:   time.Now,
	}
}

func (r *TemplateRepository) timestamp() time.Time {
	return r.now().UTC().Round(0)
}

func (r *TemplateRepository) List(ctx context.Context) ([]core.Template, error) {
	return LoadCollection(ctx, r.store, r.key, []core.Template{})
}

// Load returns core.ErrTemplateNotFound when no template has the given id.
func (r *TemplateRepository) Load(ctx context.Context, id string) (core.Template, error) {
	templates, err := r.List(ctx)
	if err != nil {
		return core.Template{}, err
	}
	for _, t := range templates {
		if t.ID == id {
			return t, nil
		}
	}
	return core.Template{}, fmt.Errorf("template %s: %w", id, core.ErrTemplateNotFound)
}

// Save stamps UpdatedAt and replaces the template with the same id, or
// appends it when it is new. Every other field is stored as given.
func (r *TemplateRepository) Save(ctx context.Context, t core.Template) (core.Template, error) {
	if t.ID == "" {
		return core.Template{}, core.ErrMissingTemplateID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	templates, err := r.List(ctx)
	if err != nil {
		return core.Template{}, err
	}

	saved := t.Clone()
	now := r.timestamp()
	if now.Before(saved.UpdatedAt) {
		now = saved.UpdatedAt
	}
	saved.UpdatedAt = now

	index := -1
	for i, existing := range templates {
		if existing.ID == saved.ID {
			index = i
			break
		}
	}
	replaced := index >= 0
	if replaced {
		templates[index] = saved
	} else {
		templates = append(templates, saved)
	}

	if err := SaveCollection(ctx, r.store, r.key, templates); err != nil {
		return core.Template{}, fmt.Errorf("failed to save template %s: %w", saved.ID, err)
	}

	logrus.WithFields(logrus.Fields{
		"template_id": saved.ID,
		"elements":    len(saved.Elements),
		"replaced":    replaced,
	}).Info("Template saved")
	return saved, nil
}

// Delete removes the template with the given id.
func (r *TemplateRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	templates, err := r.List(ctx)
	if err != nil {
		return err
	}

	kept := make([]core.Template, 0, len(templates))
	for _, t := range templates {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	if len(kept) == len(templates) {
		return fmt.Errorf("template %s: %w", id, core.ErrTemplateNotFound)
	}

	if err := SaveCollection(ctx, r.store, r.key, kept); err != nil {
		return fmt.Errorf("failed to delete template %s: %w", id, err)
	}
	logrus.WithField("template_id", id).Info("Template deleted")
	return nil
}

// SetPublished toggles the publish flag owned by the list screen.
func (r *TemplateRepository) SetPublished(ctx context.Context, id string, published bool) (core.Template, error) {
	t, err := r.Load(ctx, id)
	if err != nil {
		return core.Template{}, err
	}
	t.Published = published
	return r.Save(ctx, t)
}
