// Package graph provides the hierarchical directed-graph model that dotgraph
// serializes to Graphviz DOT.
//
// # Overview
//
// A tree consists of one root [Graph], any number of nested clusters
// (subgraphs), the [Node] values owned by each of them, and the directed
// [Edge] values created in them. Every graph, node and edge carries an
// [Attributes] table whose iteration order is always ascending by key, which
// makes the DOT output deterministic.
//
// # Identity
//
// Each tree has two independent [Allocator] instances: one for cluster IDs
// (the root consumes cluster 0) and one for node IDs. Both start at zero, so
// node 0 and cluster 0 coexist. IDs are never reused and nothing is ever
// deleted from a tree.
//
// # Handles
//
// [Graph], [Node] and [Edge] are small comparable values referencing data
// owned by the tree root (an arena). Two handles are equal exactly when they
// refer to the same entity; they can be used as map keys:
//
//	g := graph.New()
//	a, b := g.NewNode(), g.NewNode()
//	e, _ := g.NewEdge(a, b)
//	same, _ := g.NewEdge(a, b) // same == e, no new edge
//
// The zero value of each handle is "missing". Passing a zero [Node] to
// [Graph.NewEdge] or [Graph.Rank] returns [ErrMissingEndpoint] without
// touching the tree.
//
// # Edge deduplication
//
// Within one graph at most one edge exists per ordered (source, target)
// pair. Deduplication is scoped to the graph the edge was created in: a
// cluster's edges are not deduplicated against its parent's.
//
// # Rank groups
//
// [Graph.Rank] registers a node under a label. The DOT emitter renders each
// label as a rank=same block, labels in first-registration order.
//
// # Concurrency
//
// Only [Allocator] is safe for concurrent use. A tree must be built by one
// goroutine (or under external synchronization) and must not be mutated
// while it is transformed or serialized.
package graph
