package designer

import (
	"certificate-designer/core"
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"
)

var ErrClosed = errors.New("designer is closed")

type (
	// Hooks are supplied by the host screen. The designer does not know how
	// templates are persisted or listed.
	Hooks struct {
		Save  func(ctx context.Context, t core.Template) error
		Close func()
	}

	Options struct {
		Surface  PointerSurface
		Bounds   BoundsFunc
		Hooks    Hooks
		Defaults *core.CanvasDefaults
	}

	// State is what observers redraw from.
	State struct {
		Template core.Template `json:"template"`
		Session  Session       `json:"session"`
		Fields   []Field       `json:"fields"`
	}

	Observer func(State)
)

// Designer owns the one template being edited and its drag session. Every
// mutation replaces the template value and notifies observers in order.
// Observers run with the designer locked and must not call back into it.
type Designer struct {
	mu        sync.Mutex
	template  core.Template
	drag      *DragController
	bounds    BoundsFunc
	hooks     Hooks
	defaults  core.CanvasDefaults
	observers map[int]Observer
	nextObs   int
	closed    bool
	log       *logrus.Entry
}

// Open starts editing t.
func Open(t core.Template, opts Options) *Designer {
	d := &Designer{
		template:  t.Clone(),
		bounds:    opts.Bounds,
		hooks:     opts.Hooks,
		defaults:  core.DefaultCanvas,
		observers: make(map[int]Observer),
		log:       logrus.WithField("template_id", t.ID),
	}
	if opts.Defaults != nil {
		d.defaults = *opts.Defaults
	}
	d.drag = NewDragController(opts.Surface, d)
	d.log.Debug("Designer opened")
	return d
}

// Subscribe registers o and immediately sends it the current state.
func (d *Designer) Subscribe(o Observer) (unsubscribe func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	id := d.nextObs
	d.nextObs++
	d.observers[id] = o
	o(d.stateLocked())

	return func() {
		d.mu.Lock()
		delete(d.observers, id)
		d.mu.Unlock()
	}
}

func (d *Designer) Template() core.Template {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.template.Clone()
}

func (d *Designer) Session() Session {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.drag.Session()
}

func (d *Designer) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stateLocked()
}

// Selected returns the selected element, or nil when nothing is selected.
func (d *Designer) Selected() *core.Element {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.selectedLocked()
}

func (d *Designer) selectedLocked() *core.Element {
	id := d.drag.Session().SelectedElementID
	if id == "" {
		return nil
	}
	el, ok := d.template.Element(id)
	if !ok {
		return nil
	}
	return &el
}

func (d *Designer) stateLocked() State {
	return State{
		Template: d.template.Clone(),
		Session:  d.drag.Session(),
		Fields:   Fields(d.selectedLocked()),
	}
}

func (d *Designer) publishLocked() {
	if len(d.observers) == 0 {
		return
	}
	state := d.stateLocked()
	for i := 0; i < d.nextObs; i++ {
		if o, ok := d.observers[i]; ok {
			o(state)
		}
	}
}

// replaceLocked swaps in the next template value and publishes it.
func (d *Designer) replaceLocked(next core.Template) {
	d.template = next
	d.publishLocked()
}

// AddElement appends a default element of typ and selects it.
func (d *Designer) AddElement(typ core.ElementType) (core.Element, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed || !typ.Valid() {
		return core.Element{}, false
	}

	el := core.NewElement(typ, d.defaults)
	d.drag.Select(el.ID)
	d.replaceLocked(core.AddElement(d.template, el))
	d.log.WithFields(logrus.Fields{"element_id": el.ID, "type": typ}).Debug("Element added")
	return el, true
}

// UpdateElement merges p into element id. Unknown ids change nothing.
func (d *Designer) UpdateElement(id string, p core.ElementPatch) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	d.replaceLocked(core.UpdateElement(d.template, id, p))
}

// RemoveElement deletes element id and clears the selection if it pointed there.
func (d *Designer) RemoveElement(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	d.removeLocked(id)
}

func (d *Designer) removeLocked(id string) {
	session := d.drag.Session()
	if session.SelectedElementID == id {
		d.drag.End()
		d.drag.ClearSelection()
	}
	d.replaceLocked(core.RemoveElement(d.template, id))
}

// Select selects element id without dragging. A stale id is ignored.
func (d *Designer) Select(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	if id == "" {
		d.drag.ClearSelection()
	} else if _, ok := d.template.Element(id); ok {
		d.drag.Select(id)
	} else {
		return
	}
	d.publishLocked()
}

// SetField applies one property-panel edit to the selected element.
func (d *Designer) SetField(name, raw string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	selected := d.selectedLocked()
	if d.closed || selected == nil {
		return
	}
	patch, ok := FieldPatch(name, raw)
	if !ok {
		d.log.WithField("field", name).Debug("Ignoring unknown field edit")
		return
	}
	d.replaceLocked(core.UpdateElement(d.template, selected.ID, patch))
}

// DeleteSelected removes the selected element and leaves nothing selected.
func (d *Designer) DeleteSelected() {
	d.mu.Lock()
	defer d.mu.Unlock()

	selected := d.selectedLocked()
	if d.closed || selected == nil {
		return
	}
	d.removeLocked(selected.ID)
}

// SetBackground ends any drag in progress before changing the canvas.
func (d *Designer) SetBackground(uri string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	d.drag.End()
	d.replaceLocked(core.SetBackground(d.template, uri))
}

// Resize ends any drag in progress before changing the canvas.
func (d *Designer) Resize(width, height float64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	d.drag.End()
	d.replaceLocked(core.Resize(d.template, width, height))
}

// SetMetadata updates name and description; issuer and published belong to
// the host and pass through untouched.
func (d *Designer) SetMetadata(name, description string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	next := d.template.Clone()
	next.Name = name
	next.Description = description
	d.replaceLocked(next)
}

// PointerDown starts dragging element id from a viewport pointer position.
// The canvas bounds are read now, not reused from an earlier gesture.
func (d *Designer) PointerDown(id string, pointer Point) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	el, ok := d.template.Element(id)
	if !ok {
		return
	}

	var bounds Rect
	if d.bounds != nil {
		bounds = d.bounds()
	}
	d.drag.Begin(el, pointer, bounds)
	d.publishLocked()
}

// PointerMove applies one move event. If anything panics mid-move the drag is
// ended before the panic continues.
func (d *Designer) PointerMove(pointer Point) {
	d.mu.Lock()
	defer d.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			d.drag.End()
			panic(r)
		}
	}()

	id, patch, ok := d.drag.Move(pointer)
	if !ok {
		return
	}
	d.replaceLocked(core.UpdateElement(d.template, id, patch))
}

// PointerUp ends the drag wherever the pointer is. The selection stays.
func (d *Designer) PointerUp(Point) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.drag.Dragging() {
		return
	}
	d.drag.End()
	d.publishLocked()
}

// Save hands the current template to the host. On failure the template is
// kept so the operator can retry.
func (d *Designer) Save(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrClosed
	}
	snapshot := d.template.Clone()
	save := d.hooks.Save
	d.mu.Unlock()

	if save == nil {
		return nil
	}
	if err := save(ctx, snapshot); err != nil {
		d.log.WithError(err).Error("Failed to save template")
		return err
	}
	d.log.Info("Template saved")
	return nil
}

// Close ends any drag, drops observers and tells the host. Unsaved changes
// are discarded. Close is idempotent.
func (d *Designer) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	d.drag.End()
	d.observers = make(map[int]Observer)
	closeHook := d.hooks.Close
	d.mu.Unlock()

	if closeHook != nil {
		closeHook()
	}
	d.log.Debug("Designer closed")
}
