package websocket

import (
	"certificate-designer/core"
	"certificate-designer/designer"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
)

const (
	EventOpenDesigner   = "open-designer"
	EventPointerDown    = "pointer-down"
	EventPointerMove    = "pointer-move"
	EventPointerUp      = "pointer-up"
	EventSetField       = "set-field"
	EventAddElement     = "add-element"
	EventSelect         = "select"
	EventDeleteSelected = "delete-selected"
	EventSetBackground  = "set-background"
	EventResize         = "resize"
	EventSetMetadata    = "set-metadata"
	EventSave           = "save"
	EventCloseDesigner  = "close-designer"

	EventDesignerState = "designer-state"
	EventDesignerError = "designer-error"
	EventDesignerSaved = "designer-saved"

	saveTimeout = 10 * time.Second
)

var errNoDesigner = errors.New("no designer is open")

type (
	Repository interface {
		Load(ctx context.Context, id string) (core.Template, error)
		Save(ctx context.Context, t core.Template) (core.Template, error)
	}

	// Emitter sends one event back to the connected client.
	Emitter interface {
		Emit(event string, args ...any) error
	}

	OpenPayload struct {
		TemplateID string `json:"templateId"`
	}

	PointerDownPayload struct {
		ElementID string        `json:"elementId"`
		X         float64       `json:"x"`
		Y         float64       `json:"y"`
		Bounds    designer.Rect `json:"bounds"`
	}

	FieldPayload struct {
		Name  string `json:"name"`
		Value string `json:"value"`
	}

	AddElementPayload struct {
		Type core.ElementType `json:"type"`
	}

	SelectPayload struct {
		ElementID string `json:"elementId"`
	}

	BackgroundPayload struct {
		URI string `json:"uri"`
	}

	ResizePayload struct {
		Width  float64 `json:"width"`
		Height float64 `json:"height"`
	}

	MetadataPayload struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
)

// Session binds one client connection to at most one open designer.
type Session struct {
	ID string

	repo    Repository
	out     Emitter
	surface designer.PointerSurface
	log     *logrus.Entry

	mu          sync.Mutex
	designer    *designer.Designer
	unsubscribe func()
	bounds      designer.Rect
}

func NewSession(repo Repository, out Emitter, surface designer.PointerSurface) *Session {
	id := uuid.NewString()
	return &Session{
		ID:      id,
		repo:    repo,
		out:     out,
		surface: surface,
		log:     logrus.WithField("session_id", id),
	}
}

// decodePayload decodes the first event argument into v. Numbers arrive as
// float64 and numeric strings are accepted.
func decodePayload(args []any, v any) error {
	if len(args) == 0 || args[0] == nil {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           v,
	})
	if err != nil {
		return err
	}
	return dec.Decode(args[0])
}

func (s *Session) emitError(err error) {
	s.log.WithError(err).Warn("Designer event failed")
	if emitErr := s.out.Emit(EventDesignerError, map[string]any{"error": err.Error()}); emitErr != nil {
		s.log.WithError(emitErr).Debug("Failed to emit designer error")
	}
}

func (s *Session) emitState(st designer.State) {
	err := s.out.Emit(EventDesignerState, map[string]any{
		"template":          st.Template,
		"selectedElementId": st.Session.SelectedElementID,
		"isDragging":        st.Session.IsDragging,
		"fields":            st.Fields,
	})
	if err != nil {
		s.log.WithError(err).Debug("Failed to emit designer state")
	}
}

func (s *Session) current() *designer.Designer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.designer
}

func (s *Session) currentBounds() designer.Rect {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bounds
}

// Open loads the template and starts a designer on it, closing any designer
// the session already had. An empty id opens a blank template.
func (s *Session) Open(ctx context.Context, templateID string) error {
	t := core.NewTemplate()
	if templateID != "" {
		loaded, err := s.repo.Load(ctx, templateID)
		if err != nil {
			return fmt.Errorf("failed to open template %s: %w", templateID, err)
		}
		t = loaded
	}

	s.Close()

	d := designer.Open(t, designer.Options{
		Surface: s.surface,
		Bounds:  s.currentBounds,
		Hooks: designer.Hooks{
			Save: func(ctx context.Context, t core.Template) error {
				_, err := s.repo.Save(ctx, t)
				return err
			},
			Close: func() {
				s.log.WithField("template_id", t.ID).Debug("Designer session closed")
			},
		},
	})

	s.mu.Lock()
	s.designer = d
	s.mu.Unlock()

	unsubscribe := d.Subscribe(s.emitState)

	s.mu.Lock()
	s.unsubscribe = unsubscribe
	s.mu.Unlock()

	s.log.WithField("template_id", t.ID).Info("Designer opened")
	return nil
}

// PointerDown records the canvas bounds the client measured for this
// gesture, then starts the drag.
func (s *Session) PointerDown(p PointerDownPayload) error {
	s.mu.Lock()
	d := s.designer
	s.bounds = p.Bounds
	s.mu.Unlock()
	if d == nil {
		return errNoDesigner
	}
	d.PointerDown(p.ElementID, designer.Point{X: p.X, Y: p.Y})
	return nil
}

func (s *Session) with(fn func(d *designer.Designer)) error {
	d := s.current()
	if d == nil {
		return errNoDesigner
	}
	fn(d)
	return nil
}

func (s *Session) SetField(p FieldPayload) error {
	return s.with(func(d *designer.Designer) { d.SetField(p.Name, p.Value) })
}

func (s *Session) AddElement(p AddElementPayload) error {
	if !p.Type.Valid() {
		return fmt.Errorf("unknown element type %q", p.Type)
	}
	return s.with(func(d *designer.Designer) { d.AddElement(p.Type) })
}

func (s *Session) Select(p SelectPayload) error {
	return s.with(func(d *designer.Designer) { d.Select(p.ElementID) })
}

func (s *Session) DeleteSelected() error {
	return s.with(func(d *designer.Designer) { d.DeleteSelected() })
}

func (s *Session) SetBackground(p BackgroundPayload) error {
	return s.with(func(d *designer.Designer) { d.SetBackground(p.URI) })
}

func (s *Session) Resize(p ResizePayload) error {
	return s.with(func(d *designer.Designer) { d.Resize(p.Width, p.Height) })
}

func (s *Session) SetMetadata(p MetadataPayload) error {
	return s.with(func(d *designer.Designer) { d.SetMetadata(p.Name, p.Description) })
}

// Save persists the open template. A failed save keeps the designer open
// with its template untouched.
func (s *Session) Save(ctx context.Context) error {
	d := s.current()
	if d == nil {
		return errNoDesigner
	}
	ctx, cancel := context.WithTimeout(ctx, saveTimeout)
	defer cancel()
	if err := d.Save(ctx); err != nil {
		return err
	}
	if err := s.out.Emit(EventDesignerSaved, map[string]any{"templateId": d.Template().ID}); err != nil {
		s.log.WithError(err).Debug("Failed to emit designer saved")
	}
	return nil
}

// Close discards the open designer, if any.
func (s *Session) Close() {
	s.mu.Lock()
	d, unsubscribe := s.designer, s.unsubscribe
	s.designer, s.unsubscribe = nil, nil
	s.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	if d != nil {
		d.Close()
	}
}
