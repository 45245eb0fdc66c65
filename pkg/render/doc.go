// Package render groups the output stages of dotgraph.
//
// # Overview
//
// Rendering happens in two steps:
//
//   - [dot] serializes a [graph.Graph] tree to DOT text. The output is
//     byte-for-byte deterministic.
//   - [graphviz] lays out DOT text and draws it as SVG, PNG or JPEG using
//     an embedded Graphviz build. No external binaries are required.
//
//	text := dot.ToDOT(root)
//	svg, err := graphviz.Render(ctx, []byte(text), graphviz.FormatSVG)
//
// [dot]: github.com/matzehuels/dotgraph/pkg/render/dot
// [graphviz]: github.com/matzehuels/dotgraph/pkg/render/graphviz
// [graph.Graph]: github.com/matzehuels/dotgraph/pkg/graph.Graph
package render
