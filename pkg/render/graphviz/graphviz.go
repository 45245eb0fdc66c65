package graphviz

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	gv "github.com/goccy/go-graphviz"

	"github.com/matzehuels/dotgraph/pkg/errors"
)

// Format is an output image format.
type Format string

// Supported output formats.
const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
	FormatJPG Format = "jpg"
)

// Formats lists the supported output formats.
var Formats = []Format{FormatSVG, FormatPNG, FormatJPG}

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	switch f {
	case FormatSVG:
		return "image/svg+xml"
	case FormatPNG:
		return "image/png"
	case FormatJPG:
		return "image/jpeg"
	}
	return "application/octet-stream"
}

// ParseFormat validates a format name. "jpeg" is accepted for "jpg".
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(s))
	if f == "jpeg" {
		f = FormatJPG
	}
	if !slices.Contains(Formats, f) {
		return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported output format: %q (use svg, png or jpg)", s)
	}
	return f, nil
}

// Layout engines accepted by [RenderWith].
var Engines = []string{"dot", "neato", "fdp", "sfdp", "circo", "twopi", "osage", "patchwork"}

// Render lays out dot with the "dot" engine and renders it in format.
func Render(ctx context.Context, dot []byte, format Format) ([]byte, error) {
	return RenderWith(ctx, dot, format, "dot")
}

// RenderWith lays out dot with the given engine and renders it in format.
func RenderWith(ctx context.Context, dot []byte, format Format, engine string) ([]byte, error) {
	target, err := gvFormat(format)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(Engines, engine) {
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown layout engine: %q", engine)
	}

	g, err := gv.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "init graphviz")
	}
	defer g.Close()
	g.SetLayout(gv.Layout(engine))

	graph, err := gv.ParseBytes(dot)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "parse dot")
	}
	defer graph.Close()

	var buf bytes.Buffer
	if err := g.Render(ctx, graph, target, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "render %s", format)
	}
	if format == FormatSVG {
		return normalizeViewBox(buf.Bytes()), nil
	}
	return buf.Bytes(), nil
}

func gvFormat(f Format) (gv.Format, error) {
	switch f {
	case FormatSVG:
		return gv.SVG, nil
	case FormatPNG:
		return gv.PNG, nil
	case FormatJPG:
		return gv.JPG, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported output format: %q", f)
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="(-?[0-9.]+)\s+(-?[0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root <svg> tag with a zero-origin viewBox
// and matching width and height in user units.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	replaced := false
	return svgTagRe.ReplaceAllFunc(svg, func(m []byte) []byte {
		if replaced {
			return m
		}
		replaced = true
		return []byte(tag)
	})
}
