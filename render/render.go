// Package render draws a certificate template. The live editing canvas and
// the read-only preview share one algorithm that differs only by scale and by
// whether placeholder tokens are substituted.
package render

import (
	"certificate-designer/core"

	"github.com/sirupsen/logrus"
)

type Mode string

const (
	ModeEdit    Mode = "edit"
	ModePreview Mode = "preview"

	PreviewScale = 0.8

	placeholderLabelSize = 14.0
)

type (
	Box struct {
		X      float64 `json:"x"`
		Y      float64 `json:"y"`
		Width  float64 `json:"width"`
		Height float64 `json:"height"`
	}

	Background struct {
		URI    string `json:"uri"`
		Box    Box    `json:"box"`
		Hidden bool   `json:"hidden"`
	}

	// Item is one drawn element. Text items carry the scaled font and the
	// anchor point implied by their alignment; image and signature items are
	// labeled placeholder boxes.
	Item struct {
		ElementID   string           `json:"elementId"`
		Type        core.ElementType `json:"type"`
		Box         Box              `json:"box"`
		Text        string           `json:"text,omitempty"`
		FontSize    float64          `json:"fontSize,omitempty"`
		FontFamily  string           `json:"fontFamily,omitempty"`
		Color       string           `json:"color,omitempty"`
		FontWeight  core.FontWeight  `json:"fontWeight,omitempty"`
		Align       core.TextAlign   `json:"textAlign,omitempty"`
		AnchorX     float64          `json:"anchorX"`
		AnchorY     float64          `json:"anchorY"`
		Placeholder bool             `json:"placeholder"`
		Label       string           `json:"label,omitempty"`
	}

	// Scene is the display list for one render.
	Scene struct {
		Mode       Mode        `json:"mode"`
		Scale      float64     `json:"scale"`
		Width      float64     `json:"width"`
		Height     float64     `json:"height"`
		Background *Background `json:"background,omitempty"`
		Items      []Item      `json:"items"`
	}

	// AssetChecker reports whether a background URI can be shown.
	AssetChecker func(uri string) error

	Options struct {
		Mode Mode
		// Scale defaults to 1.0 in edit mode and PreviewScale in preview mode.
		Scale   float64
		Context Context
		// Assets defaults to CheckAsset.
		Assets AssetChecker
	}
)

func (b Box) Scaled(s float64) Box {
	return Box{X: b.X * s, Y: b.Y * s, Width: b.Width * s, Height: b.Height * s}
}

// Edit renders the live canvas: scale 1.0, raw tokens visible.
func Edit(t core.Template) Scene {
	return Render(t, Options{Mode: ModeEdit})
}

// Preview renders the scaled read-only preview with tokens substituted.
func Preview(t core.Template, ctx Context) Scene {
	return Render(t, Options{Mode: ModePreview, Context: ctx})
}

func Render(t core.Template, opts Options) Scene {
	if opts.Mode == "" {
		opts.Mode = ModeEdit
	}
	s := opts.Scale
	if s <= 0 {
		s = 1.0
		if opts.Mode == ModePreview {
			s = PreviewScale
		}
	}
	check := opts.Assets
	if check == nil {
		check = CheckAsset
	}

	scene := Scene{
		Mode:   opts.Mode,
		Scale:  s,
		Width:  t.Width * s,
		Height: t.Height * s,
		Items:  make([]Item, 0, len(t.Elements)),
	}

	if t.BackgroundImage != "" {
		bg := &Background{
			URI: t.BackgroundImage,
			Box: Box{Width: scene.Width, Height: scene.Height},
		}
		if err := check(t.BackgroundImage); err != nil {
			logrus.WithFields(logrus.Fields{
				"template_id": t.ID,
				"error":       err,
			}).Debug("Hiding background image")
			bg.Hidden = true
		}
		scene.Background = bg
	}

	for _, el := range t.Elements {
		scene.Items = append(scene.Items, renderElement(el, s, opts))
	}
	return scene
}

func renderElement(el core.Element, s float64, opts Options) Item {
	item := Item{
		ElementID: el.ID,
		Type:      el.Type,
		Box:       Box{X: el.X, Y: el.Y, Width: el.Width, Height: el.Height}.Scaled(s),
	}
	item.AnchorX = item.Box.X + item.Box.Width/2
	item.AnchorY = item.Box.Y + item.Box.Height/2

	if el.Type != core.ElementText {
		item.Placeholder = true
		item.Label = placeholderLabel(el)
		item.FontSize = placeholderLabelSize * s
		return item
	}

	style := core.DefaultCanvas.Text
	if el.Text != nil {
		style = *el.Text
	}

	item.Text = el.Content
	if opts.Mode == ModePreview {
		item.Text = Substitute(el.Content, opts.Context)
	}
	item.FontSize = style.FontSize * s
	item.FontFamily = style.FontFamily
	item.Color = style.Color
	item.FontWeight = style.FontWeight
	item.Align = style.TextAlign

	switch style.TextAlign {
	case core.TextAlignLeft:
		item.AnchorX = item.Box.X
	case core.TextAlignRight:
		item.AnchorX = item.Box.X + item.Box.Width
	}
	return item
}

func placeholderLabel(el core.Element) string {
	if el.Type == core.ElementSignature {
		if el.Content != "" {
			return el.Content
		}
		return "Signature"
	}
	return "Image"
}
