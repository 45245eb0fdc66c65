package graph

import (
	"errors"
	"slices"
)

var (
	// ErrNilGraph is returned by consumers of the model (transformations,
	// emitters) when they are handed the zero [Graph].
	ErrNilGraph = errors.New("graph must not be nil")

	// ErrMissingEndpoint is returned by [Graph.NewEdge], [Graph.Rank] and
	// [Edge.Retarget] when a node argument is the zero [Node].
	ErrMissingEndpoint = errors.New("missing node")

	// ErrForeignNode is returned when a node of a different tree is passed
	// to a graph. Nodes can only be connected within their own tree.
	ErrForeignNode = errors.New("node belongs to another graph tree")

	// ErrDuplicateEdge is returned by [Edge.Retarget] when the graph owning
	// the edge already holds an edge for the new (source, target) pair.
	ErrDuplicateEdge = errors.New("duplicate edge")
)

// tree is the arena shared by all handles of one graph hierarchy.
type tree struct {
	clusterIDs Allocator
	nodeIDs    Allocator

	root   ID
	graphs map[ID]*graphData
	nodes  map[ID]*nodeData
	edges  []*edgeData
	names  map[string]ID // Register: name -> node ID
}

type edgeKey struct{ source, target ID }

type graphData struct {
	parent    ID
	hasParent bool

	attrs     Attributes
	nodeAttrs Attributes
	edgeAttrs Attributes

	clusters   []ID
	nodes      []ID
	rankLabels []string
	ranks      map[string][]ID
	edgeIndex  map[edgeKey]int // key -> index into tree.edges
	edges      []int
}

type nodeData struct {
	owner ID
	attrs Attributes
}

type edgeData struct {
	owner  ID
	source ID
	target ID
	attrs  Attributes
}

// Graph is a handle to the root graph or to one of its clusters.
//
// The zero value is not usable - use [New] to create a root graph and
// [Graph.NewGraph] to create clusters.
type Graph struct {
	t  *tree
	id ID
}

// New creates an empty root graph. The root consumes cluster ID 0, so the
// first cluster created below it is cluster 1.
func New() Graph {
	t := &tree{
		graphs: make(map[ID]*graphData),
		nodes:  make(map[ID]*nodeData),
		names:  make(map[string]ID),
	}
	t.root = t.clusterIDs.Next()
	t.graphs[t.root] = newGraphData()
	return Graph{t: t, id: t.root}
}

func newGraphData() *graphData {
	return &graphData{
		ranks:     make(map[string][]ID),
		edgeIndex: make(map[edgeKey]int),
	}
}

func (g Graph) data() *graphData { return g.t.graphs[g.id] }

// ID returns the cluster ID of g.
func (g Graph) ID() ID { return g.id }

// IsZero reports whether g is the zero handle.
func (g Graph) IsZero() bool { return g.t == nil }

// IsRoot reports whether g has no parent.
func (g Graph) IsRoot() bool { return !g.data().hasParent }

// Root returns the root of the tree containing g.
func (g Graph) Root() Graph { return Graph{t: g.t, id: g.t.root} }

// Parent returns the parent graph, or false for the root.
func (g Graph) Parent() (Graph, bool) {
	d := g.data()
	if !d.hasParent {
		return Graph{}, false
	}
	return Graph{t: g.t, id: d.parent}, true
}

// Attributes returns the graph's own attributes.
func (g Graph) Attributes() *Attributes { return &g.data().attrs }

// NodeAttributes returns the attributes applied to every node of g.
func (g Graph) NodeAttributes() *Attributes { return &g.data().nodeAttrs }

// EdgeAttributes returns the attributes applied to every edge of g.
func (g Graph) EdgeAttributes() *Attributes { return &g.data().edgeAttrs }

// NewGraph creates a cluster below g sharing the tree's allocators.
func (g Graph) NewGraph() Graph {
	id := g.t.clusterIDs.Next()
	child := newGraphData()
	child.parent, child.hasParent = g.id, true
	g.t.graphs[id] = child

	d := g.data()
	d.clusters = append(d.clusters, id)
	return Graph{t: g.t, id: id}
}

// NewNode creates a node owned by g.
func (g Graph) NewNode() Node {
	id := g.t.nodeIDs.Next()
	g.t.nodes[id] = &nodeData{owner: g.id}

	d := g.data()
	d.nodes = append(d.nodes, id)
	return Node{t: g.t, id: id}
}

// NewEdge creates a directed edge source -> target in g.
//
// If g already holds an edge for the ordered pair, that edge is returned
// unchanged (attributes are not merged). Either endpoint may be owned by any
// graph of the tree. Returns [ErrMissingEndpoint] for a zero node and
// [ErrForeignNode] for a node of another tree; g is not modified on error.
func (g Graph) NewEdge(source, target Node) (Edge, error) {
	if err := g.check(source); err != nil {
		return Edge{}, err
	}
	if err := g.check(target); err != nil {
		return Edge{}, err
	}

	d := g.data()
	key := edgeKey{source.id, target.id}
	if idx, ok := d.edgeIndex[key]; ok {
		return Edge{t: g.t, idx: idx}, nil
	}

	idx := len(g.t.edges)
	g.t.edges = append(g.t.edges, &edgeData{owner: g.id, source: source.id, target: target.id})
	d.edgeIndex[key] = idx
	d.edges = append(d.edges, idx)
	return Edge{t: g.t, idx: idx}, nil
}

// Rank registers n under label. Labels are remembered in first-registration
// order; the same node may be registered any number of times under any
// number of labels.
func (g Graph) Rank(label string, n Node) error {
	if err := g.check(n); err != nil {
		return err
	}
	d := g.data()
	if _, ok := d.ranks[label]; !ok {
		d.rankLabels = append(d.rankLabels, label)
	}
	d.ranks[label] = append(d.ranks[label], n.id)
	return nil
}

// Register returns the node registered under name anywhere in the tree, or
// creates it in g. The boolean reports whether a node was created.
func (g Graph) Register(name string) (Node, bool) {
	if id, ok := g.t.names[name]; ok {
		return Node{t: g.t, id: id}, false
	}
	n := g.NewNode()
	g.t.names[name] = n.id
	return n, true
}

// Lookup returns the node registered under name anywhere in the tree.
func (g Graph) Lookup(name string) (Node, bool) {
	id, ok := g.t.names[name]
	if !ok {
		return Node{}, false
	}
	return Node{t: g.t, id: id}, true
}

func (g Graph) check(n Node) error {
	if n.t == nil {
		return ErrMissingEndpoint
	}
	if n.t != g.t {
		return ErrForeignNode
	}
	return nil
}

// Clusters returns the direct child clusters of g in creation order.
func (g Graph) Clusters() []Graph {
	ids := g.data().clusters
	out := make([]Graph, len(ids))
	for i, id := range ids {
		out[i] = Graph{t: g.t, id: id}
	}
	return out
}

// Nodes returns the nodes owned directly by g in creation order. Nodes of
// descendant clusters are not included.
func (g Graph) Nodes() []Node { return g.handles(g.data().nodes) }

// Edges returns the edges created in g in creation order.
func (g Graph) Edges() []Edge {
	idxs := g.data().edges
	out := make([]Edge, len(idxs))
	for i, idx := range idxs {
		out[i] = Edge{t: g.t, idx: idx}
	}
	return out
}

// RankLabels returns the rank labels of g in first-registration order.
func (g Graph) RankLabels() []string { return slices.Clone(g.data().rankLabels) }

// Ranked returns the nodes registered under label, in registration order.
func (g Graph) Ranked(label string) []Node { return g.handles(g.data().ranks[label]) }

func (g Graph) handles(ids []ID) []Node {
	out := make([]Node, len(ids))
	for i, id := range ids {
		out[i] = Node{t: g.t, id: id}
	}
	return out
}

// Walk calls fn for g and every cluster below it, parents before children,
// siblings in creation order.
func (g Graph) Walk(fn func(Graph)) {
	fn(g)
	for _, c := range g.Clusters() {
		c.Walk(fn)
	}
}

// AllEdges returns every edge of the tree in creation order.
func (g Graph) AllEdges() []Edge {
	out := make([]Edge, len(g.t.edges))
	for i := range g.t.edges {
		out[i] = Edge{t: g.t, idx: i}
	}
	return out
}

// NodeCount returns the number of nodes in the whole tree.
func (g Graph) NodeCount() int { return len(g.t.nodes) }

// EdgeCount returns the number of edges in the whole tree.
func (g Graph) EdgeCount() int { return len(g.t.edges) }

// ClusterCount returns the number of graphs in the whole tree, root included.
func (g Graph) ClusterCount() int { return len(g.t.graphs) }

// Node is a handle to a node of a tree. The zero value represents a
// missing node.
type Node struct {
	t  *tree
	id ID
}

// ID returns the node ID.
func (n Node) ID() ID { return n.id }

// IsZero reports whether n is the zero handle.
func (n Node) IsZero() bool { return n.t == nil }

// Attributes returns the node's attributes.
func (n Node) Attributes() *Attributes { return &n.t.nodes[n.id].attrs }

// Graph returns the graph owning n. Ownership never changes.
func (n Node) Graph() Graph { return Graph{t: n.t, id: n.t.nodes[n.id].owner} }

// Edge is a handle to a directed edge. The zero value represents a missing
// edge.
type Edge struct {
	t   *tree
	idx int
}

func (e Edge) data() *edgeData { return e.t.edges[e.idx] }

// IsZero reports whether e is the zero handle.
func (e Edge) IsZero() bool { return e.t == nil }

// Source returns the start node.
func (e Edge) Source() Node { return Node{t: e.t, id: e.data().source} }

// Target returns the end node.
func (e Edge) Target() Node { return Node{t: e.t, id: e.data().target} }

// Attributes returns the edge's attributes.
func (e Edge) Attributes() *Attributes { return &e.data().attrs }

// Graph returns the graph the edge was created in.
func (e Edge) Graph() Graph { return Graph{t: e.t, id: e.data().owner} }

// Retarget replaces the end node of e, keeping the edge's identity and
// attributes. The edge is rekeyed in its graph; if that graph already holds
// an edge from the same source to n, [ErrDuplicateEdge] is returned and
// nothing changes.
func (e Edge) Retarget(n Node) error {
	g := e.Graph()
	if err := g.check(n); err != nil {
		return err
	}
	d := e.data()
	if d.target == n.id {
		return nil
	}

	gd := g.data()
	key := edgeKey{d.source, n.id}
	if _, ok := gd.edgeIndex[key]; ok {
		return ErrDuplicateEdge
	}
	delete(gd.edgeIndex, edgeKey{d.source, d.target})
	gd.edgeIndex[key] = e.idx
	d.target = n.id
	return nil
}
