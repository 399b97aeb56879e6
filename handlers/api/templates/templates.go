package templates

import (
	"certificate-designer/core"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"
)

// Repository is the template persistence the list screen needs.
type Repository interface {
	List(ctx context.Context) ([]core.Template, error)
	Load(ctx context.Context, id string) (core.Template, error)
	Save(ctx context.Context, t core.Template) (core.Template, error)
	Delete(ctx context.Context, id string) error
	SetPublished(ctx context.Context, id string, published bool) (core.Template, error)
}

type PublishRequest struct {
	Published bool `json:"published"`
}

func renderError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(w, r, map[string]string{"error": msg})
}

func renderInvalid(w http.ResponseWriter, r *http.Request, fields map[string]string) {
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, map[string]interface{}{
		"error":  "Invalid template",
		"fields": fields,
	})
}

// renderLoadError answers 404 for a missing template and 500 otherwise.
func renderLoadError(w http.ResponseWriter, r *http.Request, id string, err error) {
	if errors.Is(err, core.ErrTemplateNotFound) {
		renderError(w, r, http.StatusNotFound, "Template not found")
		return
	}
	logrus.WithFields(logrus.Fields{
		"error":       err,
		"template_id": id,
	}).Error("Failed to load template")
	renderError(w, r, http.StatusInternalServerError, "Failed to load template")
}

func decodeTemplate(r *http.Request, into *core.Template) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}
	defer r.Body.Close()
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, into)
}

func HandleList(repo Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		templates, err := repo.List(r.Context())
		if err != nil {
			logrus.WithError(err).Error("Failed to list templates")
			renderError(w, r, http.StatusInternalServerError, "Failed to list templates")
			return
		}
		if templates == nil {
			templates = []core.Template{}
		}
		render.JSON(w, r, templates)
	}
}

func HandleGet(repo Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		t, err := repo.Load(r.Context(), id)
		if err != nil {
			renderLoadError(w, r, id, err)
			return
		}
		render.JSON(w, r, t)
	}
}

// HandleCreate stores a new template: the blank default overlaid with
// whatever fields the body carries.
func HandleCreate(repo Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t := core.NewTemplate()
		if err := decodeTemplate(r, &t); err != nil {
			logrus.WithError(err).Debug("Failed to decode template")
			renderError(w, r, http.StatusBadRequest, "Invalid template body")
			return
		}
		t.ID = core.NewID()
		t.Published = false
		t.CreatedAt = time.Now().UTC().Round(0)
		if t.Elements == nil {
			t.Elements = []core.Element{}
		}

		if fields := fieldErrors(templateShape{Name: t.Name, Width: t.Width, Height: t.Height}); fields != nil {
			renderInvalid(w, r, fields)
			return
		}

		saved, err := repo.Save(r.Context(), t)
		if err != nil {
			logrus.WithError(err).Error("Failed to create template")
			renderError(w, r, http.StatusInternalServerError, "Failed to save template")
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, saved)
	}
}

// HandleSave replaces the stored template with the body. The id in the path
// wins over any id in the body.
func HandleSave(repo Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		existing, err := repo.Load(r.Context(), id)
		if err != nil {
			renderLoadError(w, r, id, err)
			return
		}

		t := existing.Clone()
		if err := decodeTemplate(r, &t); err != nil {
			logrus.WithFields(logrus.Fields{
				"error":       err,
				"template_id": id,
			}).Debug("Failed to decode template")
			renderError(w, r, http.StatusBadRequest, "Invalid template body")
			return
		}
		t.ID = id
		t.CreatedAt = existing.CreatedAt
		if t.Elements == nil {
			t.Elements = []core.Element{}
		}

		if fields := fieldErrors(templateShape{Name: t.Name, Width: t.Width, Height: t.Height}); fields != nil {
			renderInvalid(w, r, fields)
			return
		}

		saved, err := repo.Save(r.Context(), t)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"error":       err,
				"template_id": id,
			}).Error("Failed to save template")
			renderError(w, r, http.StatusInternalServerError, "Failed to save template")
			return
		}
		render.JSON(w, r, saved)
	}
}

func HandleDelete(repo Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := repo.Delete(r.Context(), id); err != nil {
			if errors.Is(err, core.ErrTemplateNotFound) {
				renderError(w, r, http.StatusNotFound, "Template not found")
				return
			}
			logrus.WithFields(logrus.Fields{
				"error":       err,
				"template_id": id,
			}).Error("Failed to delete template")
			renderError(w, r, http.StatusInternalServerError, "Failed to delete template")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func HandleSetPublished(repo Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var req PublishRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			renderError(w, r, http.StatusBadRequest, "Invalid publish body")
			return
		}

		t, err := repo.SetPublished(r.Context(), id, req.Published)
		if err != nil {
			renderLoadError(w, r, id, err)
			return
		}
		render.JSON(w, r, t)
	}
}
