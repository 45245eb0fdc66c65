// Package graphviz renders DOT text to images with an embedded Graphviz.
//
// # Overview
//
// [Render] parses DOT text, runs a Graphviz layout engine and writes the
// result in one of the supported [Format] values. SVG output is normalized
// so the root element carries a zero-origin viewBox and explicit size,
// which keeps the image scalable when embedded in HTML.
//
//	svg, err := graphviz.Render(ctx, dotText, graphviz.FormatSVG)
//
// # Layout Engines
//
// The default engine is "dot", which honours clusters and rank groups.
// [RenderWith] accepts another engine name such as "neato" or "fdp".
//
// # Concurrency
//
// Each call creates its own Graphviz instance, so concurrent calls are
// safe. Instances are not shared because the underlying runtime is single
// threaded.
package graphviz
