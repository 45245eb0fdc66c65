// Package dot serializes a [graph.Graph] tree to Graphviz DOT text.
//
// # Output Format
//
// The output is deterministic: identical trees always produce identical
// bytes, which makes the text suitable for golden-file tests and as a cache
// key for rendered artifacts. Each graph body is written in a fixed order:
//
//  1. Graph attributes, one `key = "value";` line each, ascending by key.
//  2. The common `node  [...];` and `edge  [...];` declarations. They hold
//     the top-level graph's defaults and are repeated in every body,
//     including clusters, but only when the top-level edge defaults are
//     non-empty.
//  3. Nodes. Ranked nodes come first, one `rank=same` block per label in
//     the order labels were first used, followed by the remaining nodes in
//     creation order.
//  4. Edges created in the graph, in creation order.
//  5. Child clusters as `subgraph clusterN { ... }`, recursively.
//
// Nodes are named `node<ID>` after their tree-wide ID. Graph attribute
// values are always double-quoted. Values in bracketed lists are quoted too,
// except those wrapped in angle brackets, which Graphviz treats as HTML-like
// labels and are written verbatim. Embedded double quotes are escaped.
//
// # Usage
//
//	gen, err := dot.NewGenerator(root)
//	if err != nil {
//	    return err
//	}
//	if err := gen.Generate(os.Stdout); err != nil {
//	    return err
//	}
//
// [ToDOT] returns the same text as a string.
package dot
