package designer

import (
	"certificate-designer/core"
)

type (
	// Point is a pointer position. Depending on where it comes from it is
	// either viewport-global or canvas-local.
	Point struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	}

	// Rect is the canvas surface's on-screen bounding box in the same space
	// as the pointer positions.
	Rect struct {
		X      float64 `json:"x"`
		Y      float64 `json:"y"`
		Width  float64 `json:"width"`
		Height float64 `json:"height"`
	}

	// BoundsFunc reports the canvas bounding box as it is right now.
	BoundsFunc func() Rect

	// PointerListener receives the global move/up events of a drag gesture.
	PointerListener interface {
		PointerMove(p Point)
		PointerUp(p Point)
	}

	// PointerSurface is the global input surface. Listen attaches l and
	// returns the function that detaches it.
	PointerSurface interface {
		Listen(l PointerListener) (detach func())
	}

	// Session is the ephemeral selection and drag state.
	Session struct {
		SelectedElementID string `json:"selectedElementId,omitempty"`
		DragOffset        Point  `json:"dragOffset"`
		IsDragging        bool   `json:"isDragging"`
	}
)

func (r Rect) Origin() Point {
	return Point{X: r.X, Y: r.Y}
}

// ToLocal translates a global pointer position into canvas-local coordinates.
func (r Rect) ToLocal(p Point) Point {
	return Point{X: p.X - r.X, Y: p.Y - r.Y}
}

// DragController is the Idle/Dragging state machine. It does not touch the
// template itself; Move returns the patch to apply to the latest copy.
type DragController struct {
	surface  PointerSurface
	listener PointerListener
	detach   func()
	origin   Point
	session  Session
}

func NewDragController(surface PointerSurface, listener PointerListener) *DragController {
	return &DragController{surface: surface, listener: listener}
}

func (c *DragController) Session() Session {
	return c.session
}

func (c *DragController) Dragging() bool {
	return c.session.IsDragging
}

// Select changes the selection without starting a drag. A drag in progress
// ends first, so later moves never reach the newly selected element.
func (c *DragController) Select(id string) {
	if c.session.IsDragging && id != c.session.SelectedElementID {
		c.End()
	}
	c.session.SelectedElementID = id
}

func (c *DragController) ClearSelection() {
	c.End()
	c.session.SelectedElementID = ""
}

// Begin moves Idle to Dragging. bounds must be read at the moment of the
// pointer-down; it stays fixed for the rest of the gesture.
func (c *DragController) Begin(el core.Element, pointer Point, bounds Rect) {
	if c.session.IsDragging {
		c.End()
	}

	local := bounds.ToLocal(pointer)
	c.origin = bounds.Origin()
	c.session = Session{
		SelectedElementID: el.ID,
		DragOffset:        Point{X: local.X - el.X, Y: local.Y - el.Y},
		IsDragging:        true,
	}

	if c.surface != nil && c.listener != nil {
		c.detach = c.surface.Listen(c.listener)
	}
}

// Move computes the new element position for a pointer-move. Positions are
// not clamped to the canvas.
func (c *DragController) Move(pointer Point) (string, core.ElementPatch, bool) {
	if !c.session.IsDragging || c.session.SelectedElementID == "" {
		return "", core.ElementPatch{}, false
	}

	x := pointer.X - c.origin.X - c.session.DragOffset.X
	y := pointer.Y - c.origin.Y - c.session.DragOffset.Y
	return c.session.SelectedElementID, core.MoveTo(x, y), true
}

// End moves back to Idle and detaches the global listeners. The selection is
// kept. Calling End while idle does nothing.
func (c *DragController) End() {
	c.session.IsDragging = false
	c.session.DragOffset = Point{}
	if c.detach != nil {
		detach := c.detach
		c.detach = nil
		detach()
	}
}
