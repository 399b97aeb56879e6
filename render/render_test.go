package render

import (
	"bytes"
	"certificate-designer/core"
	"errors"
	"math"
	"strings"
	"testing"
	"time"
)

const pixelPNG = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII="

func sampleTemplate() core.Template {
	tpl := core.NewTemplate()

	title := core.NewElement(core.ElementText, core.DefaultCanvas)
	title.Content = "Awarded to {{studentName}}"
	title.X, title.Y = 300, 150
	tpl = core.AddElement(tpl, title)

	left := core.NewElement(core.ElementText, core.DefaultCanvas)
	left.Content = "{{courseName}} on {{completionDate}}"
	left.Text.TextAlign = core.TextAlignLeft
	left.X, left.Y = 50, 400
	tpl = core.AddElement(tpl, left)

	right := core.NewElement(core.ElementText, core.DefaultCanvas)
	right.Content = "{{unknownToken}}"
	right.Text.TextAlign = core.TextAlignRight
	right.X, right.Y = 500, 500
	tpl = core.AddElement(tpl, right)

	tpl = core.AddElement(tpl, core.NewElement(core.ElementImage, core.DefaultCanvas))
	tpl = core.AddElement(tpl, core.NewElement(core.ElementSignature, core.DefaultCanvas))
	return tpl
}

func TestSubstitute(t *testing.T) {
	ctx := Context{StudentName: "Jane Roe", CourseName: "Go 101"}

	tests := []struct {
		content string
		want    string
	}{
		{"Awarded to {{studentName}}", "Awarded to Jane Roe"},
		{"{{unknownToken}}", "{{unknownToken}}"},
		{"{{studentName}} / {{studentName}}", "Jane Roe / Jane Roe"},
		{"{{courseName}} on {{completionDate}}", "Go 101 on {{completionDate}}"},
		{"{{ studentName }}", "{{ studentName }}"},
		{"plain text", "plain text"},
	}

	for _, tt := range tests {
		if got := Substitute(tt.content, ctx); got != tt.want {
			t.Errorf("Substitute(%q) = %q, want %q", tt.content, got, tt.want)
		}
	}
}

func TestSampleContext(t *testing.T) {
	now := time.Date(2026, time.October, 19, 9, 0, 0, 0, time.UTC)
	ctx := Context{StudentName: "Jane Roe", CourseName: ""}.WithDefaults(now)

	if ctx[StudentName] != "Jane Roe" {
		t.Errorf("StudentName mismatch: got %q", ctx[StudentName])
	}
	if ctx[CourseName] != "Sample Course" {
		t.Errorf("CourseName should fall back to sample: got %q", ctx[CourseName])
	}
	if ctx[CompletionDate] != "October 19, 2026" {
		t.Errorf("CompletionDate mismatch: got %q", ctx[CompletionDate])
	}
}

func TestEdit_KeepsTokens(t *testing.T) {
	scene := Edit(sampleTemplate())

	if scene.Scale != 1.0 || scene.Width != 800 || scene.Height != 600 {
		t.Errorf("Unexpected edit surface: scale=%v size=%vx%v", scene.Scale, scene.Width, scene.Height)
	}
	if scene.Items[0].Text != "Awarded to {{studentName}}" {
		t.Errorf("Edit mode substituted tokens: %q", scene.Items[0].Text)
	}
}

func TestPreview_SubstitutesTokens(t *testing.T) {
	scene := Preview(sampleTemplate(), Context{StudentName: "Jane Roe"})

	if scene.Scale != PreviewScale {
		t.Errorf("Preview scale mismatch: got %v, want %v", scene.Scale, PreviewScale)
	}
	if got := scene.Items[0].Text; got != "Awarded to Jane Roe" {
		t.Errorf("Preview text mismatch: got %q", got)
	}
	if got := scene.Items[2].Text; got != "{{unknownToken}}" {
		t.Errorf("Unknown token changed: got %q", got)
	}
}

func TestRender_ScaleInvariance(t *testing.T) {
	tpl := sampleTemplate()
	full := Render(tpl, Options{Mode: ModePreview, Scale: 1.0})

	for _, s := range []float64{0.8, 0.5, 0.33, 2} {
		scaled := Render(tpl, Options{Mode: ModePreview, Scale: s})
		if math.Abs(scaled.Width-full.Width*s) > 1e-9 || math.Abs(scaled.Height-full.Height*s) > 1e-9 {
			t.Errorf("scale %v: surface mismatch", s)
		}
		for i := range full.Items {
			want := full.Items[i].Box.Scaled(s)
			got := scaled.Items[i].Box
			if !boxesClose(got, want) {
				t.Errorf("scale %v item %d: got %+v, want %+v", s, i, got, want)
			}
			if math.Abs(scaled.Items[i].FontSize-full.Items[i].FontSize*s) > 1e-9 {
				t.Errorf("scale %v item %d: font size not scaled", s, i)
			}
		}
	}
}

func boxesClose(a, b Box) bool {
	const eps = 1e-9
	return math.Abs(a.X-b.X) < eps && math.Abs(a.Y-b.Y) < eps &&
		math.Abs(a.Width-b.Width) < eps && math.Abs(a.Height-b.Height) < eps
}

func TestRender_TextAnchors(t *testing.T) {
	scene := Edit(sampleTemplate())

	center, left, right := scene.Items[0], scene.Items[1], scene.Items[2]
	if center.AnchorX != 300+100 {
		t.Errorf("Center anchor: got %v, want 400", center.AnchorX)
	}
	if left.AnchorX != 50 {
		t.Errorf("Left anchor: got %v, want 50", left.AnchorX)
	}
	if right.AnchorX != 500+200 {
		t.Errorf("Right anchor: got %v, want 700", right.AnchorX)
	}
	if center.AnchorY != 150+20 {
		t.Errorf("Vertical center: got %v, want 170", center.AnchorY)
	}
}

func TestRender_Placeholders(t *testing.T) {
	for _, mode := range []Mode{ModeEdit, ModePreview} {
		scene := Render(sampleTemplate(), Options{Mode: mode})
		img, sig := scene.Items[3], scene.Items[4]
		if !img.Placeholder || img.Label != "Image" {
			t.Errorf("%s: image placeholder mismatch: %+v", mode, img)
		}
		if !sig.Placeholder || sig.Label != "Signature" {
			t.Errorf("%s: signature placeholder mismatch: %+v", mode, sig)
		}
	}
}

func TestRender_BackgroundCheck(t *testing.T) {
	tpl := core.SetBackground(sampleTemplate(), pixelPNG)

	scene := Edit(tpl)
	if scene.Background == nil || scene.Background.Hidden {
		t.Fatalf("Valid background hidden: %+v", scene.Background)
	}
	if scene.Background.Box.Width != 800 || scene.Background.Box.Height != 600 {
		t.Errorf("Background does not cover surface: %+v", scene.Background.Box)
	}

	failing := Render(tpl, Options{Assets: func(string) error { return errors.New("404") }})
	if !failing.Background.Hidden {
		t.Error("Broken background not hidden")
	}

	var buf bytes.Buffer
	if err := failing.WriteSVG(&buf); err != nil {
		t.Fatalf("WriteSVG failed: %v", err)
	}
	if strings.Contains(buf.String(), "<image") {
		t.Error("Hidden background written to SVG")
	}
}

func TestCheckAsset(t *testing.T) {
	tests := []struct {
		uri string
		ok  bool
	}{
		{pixelPNG, true},
		{"https://cdn.example.com/bg.jpg", true},
		{"/static/backgrounds/gold.png", true},
		{"data:text/plain;base64,aGVsbG8=", false},
		{"data:image/png;base64,!!!", false},
		{"data:image/png", false},
		{"javascript:alert(1)", false},
		{"https://", false},
	}

	for _, tt := range tests {
		err := CheckAsset(tt.uri)
		if (err == nil) != tt.ok {
			t.Errorf("CheckAsset(%q) error = %v, want ok=%v", tt.uri, err, tt.ok)
		}
		if err != nil && !errors.Is(err, ErrUnsupportedAsset) {
			t.Errorf("CheckAsset(%q) error not wrapped: %v", tt.uri, err)
		}
	}
}

func TestWriteSVG(t *testing.T) {
	scene := Preview(sampleTemplate(), Context{StudentName: "Jane <Roe> & Co"})

	var buf bytes.Buffer
	if err := scene.WriteSVG(&buf); err != nil {
		t.Fatalf("WriteSVG failed: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		`width="640" height="480"`,
		`Awarded to Jane &lt;Roe&gt; &amp; Co`,
		`text-anchor="start"`,
		`text-anchor="end"`,
		`data-element-type="signature"`,
		"</svg>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("SVG missing %q", want)
		}
	}
}
