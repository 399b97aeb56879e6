package designer

import (
	"certificate-designer/core"
	"math"
	"strconv"
	"strings"
)

type FieldKind string

const (
	FieldNumber FieldKind = "number"
	FieldText   FieldKind = "text"
	FieldColor  FieldKind = "color"
	FieldSelect FieldKind = "select"
)

// Field is one row of the property panel.
type Field struct {
	Name    string    `json:"name"`
	Kind    FieldKind `json:"kind"`
	Value   string    `json:"value"`
	Options []string  `json:"options,omitempty"`
}

var (
	fontWeights = []string{string(core.FontWeightNormal), string(core.FontWeightBold)}
	textAligns  = []string{string(core.TextAlignLeft), string(core.TextAlignCenter), string(core.TextAlignRight)}
)

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ParseNumber reads a numeric field. Anything unparsable or non-finite becomes 0.
func ParseNumber(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Fields lists the editable attributes of el. A nil element has nothing bound.
func Fields(el *core.Element) []Field {
	if el == nil {
		return nil
	}

	fields := []Field{
		{Name: "content", Kind: FieldText, Value: el.Content},
		{Name: "x", Kind: FieldNumber, Value: formatNumber(el.X)},
		{Name: "y", Kind: FieldNumber, Value: formatNumber(el.Y)},
		{Name: "width", Kind: FieldNumber, Value: formatNumber(el.Width)},
		{Name: "height", Kind: FieldNumber, Value: formatNumber(el.Height)},
	}
	if el.Type != core.ElementText {
		return fields
	}

	style := core.TextStyle{}
	if el.Text != nil {
		style = *el.Text
	}
	return append(fields,
		Field{Name: "fontSize", Kind: FieldNumber, Value: formatNumber(style.FontSize)},
		Field{Name: "fontFamily", Kind: FieldSelect, Value: style.FontFamily, Options: core.FontFamilies},
		Field{Name: "color", Kind: FieldColor, Value: style.Color},
		Field{Name: "fontWeight", Kind: FieldSelect, Value: string(style.FontWeight), Options: fontWeights},
		Field{Name: "textAlign", Kind: FieldSelect, Value: string(style.TextAlign), Options: textAligns},
	)
}

// FieldPatch turns one edited field into a single-attribute patch. It returns
// false for unknown fields and for select values outside their option list.
func FieldPatch(name, raw string) (core.ElementPatch, bool) {
	switch name {
	case "content":
		return core.ElementPatch{Content: &raw}, true
	case "x":
		return core.ElementPatch{X: core.Ptr(ParseNumber(raw))}, true
	case "y":
		return core.ElementPatch{Y: core.Ptr(ParseNumber(raw))}, true
	case "width":
		return core.ElementPatch{Width: core.Ptr(math.Max(ParseNumber(raw), 0))}, true
	case "height":
		return core.ElementPatch{Height: core.Ptr(math.Max(ParseNumber(raw), 0))}, true
	case "fontSize":
		return core.ElementPatch{FontSize: core.Ptr(ParseNumber(raw))}, true
	case "fontFamily":
		return core.ElementPatch{FontFamily: &raw}, true
	case "color":
		return core.ElementPatch{Color: &raw}, true
	case "fontWeight":
		switch w := core.FontWeight(raw); w {
		case core.FontWeightNormal, core.FontWeightBold:
			return core.ElementPatch{FontWeight: &w}, true
		}
	case "textAlign":
		switch a := core.TextAlign(raw); a {
		case core.TextAlignLeft, core.TextAlignCenter, core.TextAlignRight:
			return core.ElementPatch{TextAlign: &a}, true
		}
	}
	return core.ElementPatch{}, false
}
