// Package transform provides rewrites of a [graph.Graph] tree that make the
// rendered diagram easier to read.
//
// # Fan-in Bundling
//
// Dependency diagrams often have many edges converging on one popular node.
// [EdgeMerge] replaces such fans with a bundle: the converging edges are
// retargeted to an invisible intermediate node, and a single edge continues
// from there to the real target.
//
//	Before: a → t, b → t, c → t
//	After:  a → s, b → s, c → s, s → t     (s is invisible)
//
// The rewrite runs in two phases, each exactly once:
//
//   - Same-cluster: for every graph, edges created in that graph are grouped
//     by target. Each group of two or more gets a synthetic node inside that
//     graph.
//   - Cross-cluster: edges whose source and target are owned by different
//     graphs are grouped by target. Each group of two or more gets a new
//     invisible cluster directly below the root holding the intermediate node.
//
// Edges created by the rewrite itself are never reconsidered, so deep fan-in
// chains may stay partially bundled. Existing edges keep their identity and
// attributes; only their target changes.
//
// # Usage
//
//	m, err := transform.NewEdgeMerge(root)
//	if err != nil {
//	    return err
//	}
//	result := m.Execute()
//	log.Info("merged edges", "bundles", result.Bundles())
package transform
