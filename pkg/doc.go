// Package pkg holds the public libraries of dotgraph.
//
// # Overview
//
// dotgraph turns graphs described as named clusters, nodes and edges into
// Graphviz DOT text. The libraries are layered so that each one can be used
// on its own:
//
//  1. [graph] - The graph tree: clusters, nodes, edges and attributes
//  2. [graph/transform] - Fan-in edge bundling
//  3. [render] - DOT serialization and Graphviz rendering
//  4. [io] - Graph documents in JSON, TOML and YAML
//  5. [pipeline] - Orchestration with caching
//
// Supporting packages: [builder] resolves names to graph handles, [cache]
// stores results in several backends, [config] loads settings, [errors]
// carries error codes, [httputil] fetches remote documents, and
// [observability] exposes hooks for logging and metrics.
//
// # Data Flow
//
//	Document (JSON/TOML/YAML, file or URL)
//	         ↓
//	    [io] package (decode + validate + build)
//	         ↓
//	    [graph/transform] package (bundle fan-in edges)
//	         ↓
//	    [render/dot] package (DOT text)
//	         ↓
//	    [render/graphviz] package (SVG/PNG/JPG)
//
// # Quick Start
//
//	doc, err := io.Import("services.toml")
//	if err != nil {
//	    return err
//	}
//	b, err := io.Build(doc, config.Default())
//	if err != nil {
//	    return err
//	}
//	if _, err := transform.MergeEdges(b.Graph()); err != nil {
//	    return err
//	}
//	text := dot.ToDOT(b.Graph())
//
// [graph]: github.com/matzehuels/dotgraph/pkg/graph
// [graph/transform]: github.com/matzehuels/dotgraph/pkg/graph/transform
// [render]: github.com/matzehuels/dotgraph/pkg/render
// [render/dot]: github.com/matzehuels/dotgraph/pkg/render/dot
// [render/graphviz]: github.com/matzehuels/dotgraph/pkg/render/graphviz
// [io]: github.com/matzehuels/dotgraph/pkg/io
// [pipeline]: github.com/matzehuels/dotgraph/pkg/pipeline
// [builder]: github.com/matzehuels/dotgraph/pkg/builder
// [cache]: github.com/matzehuels/dotgraph/pkg/cache
// [config]: github.com/matzehuels/dotgraph/pkg/config
// [errors]: github.com/matzehuels/dotgraph/pkg/errors
// [httputil]: github.com/matzehuels/dotgraph/pkg/httputil
// [observability]: github.com/matzehuels/dotgraph/pkg/observability
package pkg
