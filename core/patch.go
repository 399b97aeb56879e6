package core

// ElementPatch is a partial update. Nil fields are left alone. Style fields
// are ignored for elements that are not text.
type ElementPatch struct {
	Content    *string     `json:"content,omitempty"`
	X          *float64    `json:"x,omitempty"`
	Y          *float64    `json:"y,omitempty"`
	Width      *float64    `json:"width,omitempty"`
	Height     *float64    `json:"height,omitempty"`
	FontSize   *float64    `json:"fontSize,omitempty"`
	FontFamily *string     `json:"fontFamily,omitempty"`
	Color      *string     `json:"color,omitempty"`
	FontWeight *FontWeight `json:"fontWeight,omitempty"`
	TextAlign  *TextAlign  `json:"textAlign,omitempty"`
}

// Ptr returns a pointer to v, for building patches.
func Ptr[T any](v T) *T {
	return &v
}

// MoveTo is the patch the drag controller sends.
func MoveTo(x, y float64) ElementPatch {
	return ElementPatch{X: &x, Y: &y}
}

func (p ElementPatch) IsEmpty() bool {
	return p == ElementPatch{}
}

func (p ElementPatch) hasStyle() bool {
	return p.FontSize != nil || p.FontFamily != nil || p.Color != nil || p.FontWeight != nil || p.TextAlign != nil
}

// Apply returns a copy of e with p merged in.
func (p ElementPatch) Apply(e Element) Element {
	out := e.Clone()
	if p.Content != nil {
		out.Content = *p.Content
	}
	if p.X != nil {
		out.X = *p.X
	}
	if p.Y != nil {
		out.Y = *p.Y
	}
	if p.Width != nil {
		out.Width = *p.Width
	}
	if p.Height != nil {
		out.Height = *p.Height
	}

	if out.Type != ElementText || !p.hasStyle() {
		return out
	}

	if out.Text == nil {
		out.Text = &TextStyle{}
	}
	if p.FontSize != nil {
		out.Text.FontSize = *p.FontSize
	}
	if p.FontFamily != nil {
		out.Text.FontFamily = *p.FontFamily
	}
	if p.Color != nil {
		out.Text.Color = *p.Color
	}
	if p.FontWeight != nil {
		out.Text.FontWeight = *p.FontWeight
	}
	if p.TextAlign != nil {
		out.Text.TextAlign = *p.TextAlign
	}
	return out
}
