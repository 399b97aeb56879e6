package render

import (
	"bufio"
	"certificate-designer/core"
	"fmt"
	"html"
	"io"
	"strconv"
)

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func textAnchor(a core.TextAlign) string {
	switch a {
	case core.TextAlignLeft:
		return "start"
	case core.TextAlignRight:
		return "end"
	}
	return "middle"
}

// WriteSVG serializes the scene. A hidden background is left out entirely.
func (s Scene) WriteSVG(w io.Writer) error {
	bw := bufio.NewWriter(w)
	width, height := formatFloat(s.Width), formatFloat(s.Height)

	bw.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	fmt.Fprintf(bw, `<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s">`+"\n",
		width, height, width, height)
	fmt.Fprintf(bw, `  <rect x="0" y="0" width="%s" height="%s" fill="#ffffff"/>`+"\n", width, height)

	if bg := s.Background; bg != nil && !bg.Hidden {
		fmt.Fprintf(bw, `  <image href="%s" x="0" y="0" width="%s" height="%s" preserveAspectRatio="xMidYMid slice"/>`+"\n",
			html.EscapeString(bg.URI), formatFloat(bg.Box.Width), formatFloat(bg.Box.Height))
	}

	for _, item := range s.Items {
		if item.Placeholder {
			writePlaceholder(bw, item)
			continue
		}
		writeText(bw, item)
	}

	bw.WriteString("</svg>\n")
	return bw.Flush()
}

func writeText(w *bufio.Writer, item Item) {
	weight := item.FontWeight
	if weight == "" {
		weight = core.FontWeightNormal
	}
	fmt.Fprintf(w, `  <text data-element-id="%s" x="%s" y="%s" font-size="%s" font-family="%s" fill="%s" font-weight="%s" text-anchor="%s" dominant-baseline="middle">%s</text>`+"\n",
		html.EscapeString(item.ElementID),
		formatFloat(item.AnchorX),
		formatFloat(item.AnchorY),
		formatFloat(item.FontSize),
		html.EscapeString(item.FontFamily),
		html.EscapeString(item.Color),
		weight,
		textAnchor(item.Align),
		html.EscapeString(item.Text),
	)
}

func writePlaceholder(w *bufio.Writer, item Item) {
	fmt.Fprintf(w, `  <g data-element-id="%s" data-element-type="%s">`+"\n", html.EscapeString(item.ElementID), item.Type)
	fmt.Fprintf(w, `    <rect x="%s" y="%s" width="%s" height="%s" fill="#f3f4f6" stroke="#9ca3af" stroke-dasharray="4 2"/>`+"\n",
		formatFloat(item.Box.X), formatFloat(item.Box.Y), formatFloat(item.Box.Width), formatFloat(item.Box.Height))
	fmt.Fprintf(w, `    <text x="%s" y="%s" font-size="%s" fill="#6b7280" text-anchor="middle" dominant-baseline="middle">%s</text>`+"\n",
		formatFloat(item.AnchorX), formatFloat(item.AnchorY), formatFloat(item.FontSize), html.EscapeString(item.Label))
	w.WriteString("  </g>\n")
}
