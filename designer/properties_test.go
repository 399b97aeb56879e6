package designer

import (
	"certificate-designer/core"
	"testing"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"12", 12},
		{" 3.5 ", 3.5},
		{"-40", -40},
		{"", 0},
		{"abc", 0},
		{"12px", 0},
		{"NaN", 0},
		{"Inf", 0},
	}

	for _, tt := range tests {
		if got := ParseNumber(tt.raw); got != tt.want {
			t.Errorf("ParseNumber(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestFields_ByType(t *testing.T) {
	if got := Fields(nil); got != nil {
		t.Errorf("Fields(nil) = %+v, want nil", got)
	}

	text := core.NewElement(core.ElementText, core.DefaultCanvas)
	if got := len(Fields(&text)); got != 10 {
		t.Errorf("Text element field count: got %d, want 10", got)
	}

	img := core.NewElement(core.ElementImage, core.DefaultCanvas)
	fields := Fields(&img)
	if len(fields) != 5 {
		t.Errorf("Image element field count: got %d, want 5", len(fields))
	}
	for _, f := range fields {
		if f.Name == "textAlign" || f.Name == "fontSize" {
			t.Errorf("Style field %q bound on image element", f.Name)
		}
	}
}

func TestFieldPatch_SingleAttribute(t *testing.T) {
	patch, ok := FieldPatch("width", "250")
	if !ok {
		t.Fatal("FieldPatch(width) rejected")
	}
	if patch.Width == nil || *patch.Width != 250 {
		t.Errorf("Width patch mismatch: %+v", patch)
	}
	patch.Width = nil
	if !patch.IsEmpty() {
		t.Errorf("FieldPatch set more than one attribute: %+v", patch)
	}

	if _, ok := FieldPatch("textAlign", "justify"); ok {
		t.Error("FieldPatch accepted an invalid alignment")
	}
	if _, ok := FieldPatch("rotation", "90"); ok {
		t.Error("FieldPatch accepted an unknown field")
	}
}

func TestFieldPatch_NegativeExtentsClamped(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want float64
	}{
		{"width", "-40", 0},
		{"height", "-0.5", 0},
		{"width", "120", 120},
		{"height", "abc", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name+"="+tt.raw, func(t *testing.T) {
			patch, ok := FieldPatch(tt.name, tt.raw)
			if !ok {
				t.Fatalf("FieldPatch(%s) rejected", tt.name)
			}
			got := patch.Width
			if tt.name == "height" {
				got = patch.Height
			}
			if got == nil || *got != tt.want {
				t.Errorf("%s patch mismatch: %+v, want %v", tt.name, patch, tt.want)
			}
		})
	}
}
