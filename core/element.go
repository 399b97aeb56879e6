package core

import (
	"encoding/json"
	"fmt"

	"github.com/oklog/ulid/v2"
)

type (
	// ElementType is the closed set of objects that can be placed on a certificate.
	ElementType string

	FontWeight string

	TextAlign string

	// TextStyle holds the attributes that only make sense for text elements.
	TextStyle struct {
		FontSize   float64
		FontFamily string
		Color      string
		FontWeight FontWeight
		TextAlign  TextAlign
	}

	// Element is one positioned object on a template. Geometry is in canvas units.
	// Text is non-nil only for text elements; image and signature elements carry
	// no style.
	Element struct {
		ID      string
		Type    ElementType
		Content string
		X       float64
		Y       float64
		Width   float64
		Height  float64
		Text    *TextStyle
	}

	// CanvasDefaults controls where new elements land and how new text looks.
	CanvasDefaults struct {
		X    float64
		Y    float64
		Text TextStyle
	}
)

const (
	ElementText      ElementType = "text"
	ElementImage     ElementType = "image"
	ElementSignature ElementType = "signature"

	FontWeightNormal FontWeight = "normal"
	FontWeightBold   FontWeight = "bold"

	TextAlignLeft   TextAlign = "left"
	TextAlignCenter TextAlign = "center"
	TextAlignRight  TextAlign = "right"
)

// FontFamilies is the list offered by the property editor. Other values are accepted.
var FontFamilies = []string{"Arial", "Times New Roman", "Georgia", "Verdana", "Courier New"}

var DefaultCanvas = CanvasDefaults{
	X: 100,
	Y: 100,
	Text: TextStyle{
		FontSize:   24,
		FontFamily: "Arial",
		Color:      "#000000",
		FontWeight: FontWeightNormal,
		TextAlign:  TextAlignCenter,
	},
}

func (t ElementType) Valid() bool {
	switch t {
	case ElementText, ElementImage, ElementSignature:
		return true
	}
	return false
}

// NewID returns a ULID string. ULIDs from one process are monotonic, so two
// calls never collide.
func NewID() string {
	return ulid.Make().String()
}

// NewElement builds an element of the given type with its default size,
// position and content.
func NewElement(typ ElementType, defaults CanvasDefaults) Element {
	el := Element{
		ID:   NewID(),
		Type: typ,
		X:    defaults.X,
		Y:    defaults.Y,
	}

	switch typ {
	case ElementText:
		el.Width, el.Height = 200, 40
		el.Content = "New Text"
		style := defaults.Text
		el.Text = &style
	case ElementSignature:
		el.Width, el.Height = 150, 80
		el.Content = "Signature"
	default:
		el.Width, el.Height = 150, 80
	}
	return el
}

// Clone returns a copy that shares no memory with e.
func (e Element) Clone() Element {
	if e.Text != nil {
		style := *e.Text
		e.Text = &style
	}
	return e
}

// elementJSON is the flat record the browser console stores.
type elementJSON struct {
	ID         string      `json:"id"`
	Type       ElementType `json:"type"`
	Content    string      `json:"content"`
	X          float64     `json:"x"`
	Y          float64     `json:"y"`
	Width      float64     `json:"width"`
	Height     float64     `json:"height"`
	FontSize   *float64    `json:"fontSize,omitempty"`
	FontFamily *string     `json:"fontFamily,omitempty"`
	Color      *string     `json:"color,omitempty"`
	FontWeight *FontWeight `json:"fontWeight,omitempty"`
	TextAlign  *TextAlign  `json:"textAlign,omitempty"`
}

func (e Element) MarshalJSON() ([]byte, error) {
	out := elementJSON{
		ID:      e.ID,
		Type:    e.Type,
		Content: e.Content,
		X:       e.X,
		Y:       e.Y,
		Width:   e.Width,
		Height:  e.Height,
	}
	if e.Type == ElementText && e.Text != nil {
		style := *e.Text
		out.FontSize = &style.FontSize
		out.FontFamily = &style.FontFamily
		out.Color = &style.Color
		out.FontWeight = &style.FontWeight
		out.TextAlign = &style.TextAlign
	}
	return json.Marshal(out)
}

// UnmarshalJSON rejects unknown element types and drops style attributes on
// anything that is not text.
func (e *Element) UnmarshalJSON(data []byte) error {
	var in elementJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	if !in.Type.Valid() {
		return fmt.Errorf("unknown element type %q", in.Type)
	}

	*e = Element{
		ID:      in.ID,
		Type:    in.Type,
		Content: in.Content,
		X:       in.X,
		Y:       in.Y,
		Width:   in.Width,
		Height:  in.Height,
	}

	if in.Type != ElementText {
		return nil
	}
	if in.FontSize == nil && in.FontFamily == nil && in.Color == nil && in.FontWeight == nil && in.TextAlign == nil {
		return nil
	}

	style := &TextStyle{}
	if in.FontSize != nil {
		style.FontSize = *in.FontSize
	}
	if in.FontFamily != nil {
		style.FontFamily = *in.FontFamily
	}
	if in.Color != nil {
		style.Color = *in.Color
	}
	if in.FontWeight != nil {
		style.FontWeight = *in.FontWeight
	}
	if in.TextAlign != nil {
		style.TextAlign = *in.TextAlign
	}
	e.Text = style
	return nil
}
