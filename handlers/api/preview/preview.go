package preview

import (
	"bytes"
	"certificate-designer/core"
	"certificate-designer/render"
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chirender "github.com/go-chi/render"
	"github.com/sirupsen/logrus"
)

type Loader interface {
	Load(ctx context.Context, id string) (core.Template, error)
}

// HandlePreview renders a stored template as SVG. The optional JSON body is a
// substitution context; missing keys fall back to sample values. ?mode=edit
// shows the raw tokens at full size, ?scale= overrides the preview scale.
func HandlePreview(loader Loader, defaultScale float64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		log := logrus.WithField("template_id", id)

		t, err := loader.Load(r.Context(), id)
		if err != nil {
			if errors.Is(err, core.ErrTemplateNotFound) {
				chirender.Status(r, http.StatusNotFound)
				chirender.JSON(w, r, map[string]string{"error": "Template not found"})
				return
			}
			log.WithError(err).Error("Failed to load template")
			chirender.Status(r, http.StatusInternalServerError)
			chirender.JSON(w, r, map[string]string{"error": "Failed to load template"})
			return
		}

		var ctx render.Context
		body, err := io.ReadAll(r.Body)
		if err != nil {
			log.WithError(err).Error("Failed to read request body")
			chirender.Status(r, http.StatusInternalServerError)
			chirender.JSON(w, r, map[string]string{"error": "Failed to read request body"})
			return
		}
		defer r.Body.Close()
		if len(bytes.TrimSpace(body)) > 0 {
			if err := json.Unmarshal(body, &ctx); err != nil {
				chirender.Status(r, http.StatusBadRequest)
				chirender.JSON(w, r, map[string]string{"error": "Substitution context must be a JSON object of strings"})
				return
			}
		}

		opts := render.Options{
			Mode:    render.ModePreview,
			Scale:   defaultScale,
			Context: ctx.WithDefaults(time.Now()),
		}
		if r.URL.Query().Get("mode") == string(render.ModeEdit) {
			opts = render.Options{Mode: render.ModeEdit}
		}
		if raw := r.URL.Query().Get("scale"); raw != "" {
			scale, err := strconv.ParseFloat(raw, 64)
			if err != nil || scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
				chirender.Status(r, http.StatusBadRequest)
				chirender.JSON(w, r, map[string]string{"error": "scale must be a positive number"})
				return
			}
			opts.Scale = scale
		}

		var out bytes.Buffer
		if err := render.Render(t, opts).WriteSVG(&out); err != nil {
			log.WithError(err).Error("Failed to write preview")
			chirender.Status(r, http.StatusInternalServerError)
			chirender.JSON(w, r, map[string]string{"error": "Failed to render preview"})
			return
		}

		log.WithFields(logrus.Fields{
			"mode":  opts.Mode,
			"scale": opts.Scale,
		}).Debug("Preview rendered")
		w.Header().Set("Content-Type", "image/svg+xml")
		w.Write(out.Bytes())
	}
}
