package graphviz

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/dotgraph/pkg/errors"
)

const sample = "digraph {\nnode0 [ label=\"a\"];\nnode1 [ label=\"b\"];\nnode0 -> node1;\n}\n"

func TestNormalizeViewBox(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "rewrites root tag",
			in:   `<svg width="62pt" height="116pt" viewBox="0.00 0.00 62.00 116.00"><g/></svg>`,
			want: `<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="0 0 62.00 116.00" width="62" height="116"><g/></svg>`,
		},
		{
			name: "no viewBox unchanged",
			in:   `<svg width="10"><g/></svg>`,
			want: `<svg width="10"><g/></svg>`,
		},
		{
			name: "zero size unchanged",
			in:   `<svg viewBox="0 0 0 0"></svg>`,
			want: `<svg viewBox="0 0 0 0"></svg>`,
		},
		{
			name: "nested svg untouched",
			in:   `<svg viewBox="0 0 10 20"><svg id="inner"/></svg>`,
			want: `<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="0 0 10.00 20.00" width="10" height="20"><svg id="inner"/></svg>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(normalizeViewBox([]byte(tt.in))); got != tt.want {
				t.Errorf("normalizeViewBox() =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"svg", FormatSVG, false},
		{"PNG", FormatPNG, false},
		{"jpeg", FormatJPG, false},
		{"jpg", FormatJPG, false},
		{"pdf", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v", tt.in, err)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
				t.Errorf("error code = %s", errors.GetCode(err))
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestContentType(t *testing.T) {
	if FormatSVG.ContentType() != "image/svg+xml" || FormatPNG.ContentType() != "image/png" {
		t.Error("unexpected content types")
	}
}

func TestRender(t *testing.T) {
	ctx := context.Background()

	svg, err := Render(ctx, []byte(sample), FormatSVG)
	if err != nil {
		t.Fatalf("Render(svg) error: %v", err)
	}
	if !strings.Contains(string(svg), `viewBox="0 0 `) {
		t.Errorf("svg not normalized: %.200s", svg)
	}

	png, err := Render(ctx, []byte(sample), FormatPNG)
	if err != nil {
		t.Fatalf("Render(png) error: %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Error("png output lacks PNG signature")
	}
}

func TestRender_Errors(t *testing.T) {
	ctx := context.Background()

	if _, err := Render(ctx, []byte(sample), Format("pdf")); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("bad format error = %v", err)
	}
	if _, err := RenderWith(ctx, []byte(sample), FormatSVG, "spring"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("bad engine error = %v", err)
	}
}
