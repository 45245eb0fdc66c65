// Package builder assembles [graph.Graph] trees from named clusters and
// nodes.
//
// The graph model identifies nodes by numeric IDs. Callers usually have
// names instead: package names, service names, table names. A [Builder]
// keeps the name registries, applies the standard dotgraph styling, and
// creates clusters and nodes on first use:
//
//	b := builder.New(config.Default())
//	b.Cluster("backend", "")
//	b.Node("api", "tier1", "backend")
//	b.Node("db", "tier2", "backend")
//	b.Edge("api", "db")
//	root := b.Graph()
//
// Looking up a name that was already registered returns the existing cluster
// or node unchanged, so builders can be driven by unordered input.
package builder

import (
	"errors"
	"strconv"

	"github.com/matzehuels/dotgraph/pkg/config"
	"github.com/matzehuels/dotgraph/pkg/graph"
)

var (
	// ErrEmptyName is returned when a cluster or node name is empty.
	ErrEmptyName = errors.New("name must not be empty")

	// ErrUnknownCluster is returned by [Builder.Cluster] when the parent
	// cluster has not been created.
	ErrUnknownCluster = errors.New("unknown cluster")

	// ErrUnknownNode is returned by [Builder.Edge] when an endpoint has not
	// been created.
	ErrUnknownNode = errors.New("unknown node")
)

// Builder creates a styled graph tree from named elements.
// A Builder is not safe for concurrent use.
type Builder struct {
	root     graph.Graph
	cfg      config.Config
	clusters map[string]graph.Graph
}

// New creates a builder whose root graph carries the global layout
// attributes derived from cfg.
func New(cfg config.Config) *Builder {
	root := graph.New()
	attrs := root.Attributes()
	attrs.Set("shape", "record")
	attrs.Set("rankdir", cfg.RankDir)
	attrs.Set("ranksep", "equally")
	attrs.Set("compound", "true")
	attrs.Set("newrank", "true")
	attrs.Set("fontsize", strconv.Itoa(cfg.FontSize))

	root.NodeAttributes().Set("shape", "record")

	return &Builder{
		root:     root,
		cfg:      cfg,
		clusters: make(map[string]graph.Graph),
	}
}

// Graph returns the root graph.
func (b *Builder) Graph() graph.Graph { return b.root }

// Cluster returns the cluster registered under name, creating it below
// parent if needed. An empty parent means the root graph. New clusters are
// labelled with their name.
//
// In cluster mode "none" every name resolves to the root graph.
func (b *Builder) Cluster(name, parent string) (graph.Graph, error) {
	if name == "" {
		return graph.Graph{}, ErrEmptyName
	}
	if b.cfg.ClusterMode == config.ClusterModeNone {
		return b.root, nil
	}
	if c, ok := b.clusters[name]; ok {
		return c, nil
	}

	owner := b.root
	if parent != "" {
		p, ok := b.clusters[parent]
		if !ok {
			return graph.Graph{}, ErrUnknownCluster
		}
		owner = p
	}

	c := owner.NewGraph()
	c.Attributes().Set("label", name)
	b.clusters[name] = c
	return c, nil
}

// Node returns the node registered under name, creating it if needed. A new
// node is placed in the named cluster (created below the root if it does not
// exist yet, or the root itself for ""), styled, and ranked under rank in
// its cluster when rank is non-empty.
//
// An existing node is returned unchanged: its cluster and rank are fixed by
// the first call.
func (b *Builder) Node(name, rank, cluster string) (graph.Node, error) {
	if name == "" {
		return graph.Node{}, ErrEmptyName
	}
	if n, ok := b.root.Lookup(name); ok {
		return n, nil
	}

	owner := b.root
	if cluster != "" {
		c, err := b.Cluster(cluster, "")
		if err != nil {
			return graph.Node{}, err
		}
		owner = c
	}

	n, _ := owner.Register(name)
	attrs := n.Attributes()
	attrs.Set("shape", "record")
	attrs.Set("fontsize", strconv.Itoa(b.cfg.FontSize))

	if rank != "" {
		if err := owner.Rank(rank, n); err != nil {
			return graph.Node{}, err
		}
	}
	return n, nil
}

// Edge connects two registered nodes with an edge created in the root
// graph. Repeated calls for the same pair return the same edge.
func (b *Builder) Edge(from, to string) (graph.Edge, error) {
	source, ok := b.root.Lookup(from)
	if !ok {
		return graph.Edge{}, ErrUnknownNode
	}
	target, ok := b.root.Lookup(to)
	if !ok {
		return graph.Edge{}, ErrUnknownNode
	}
	return b.root.NewEdge(source, target)
}

// LookupNode returns the node registered under name.
func (b *Builder) LookupNode(name string) (graph.Node, bool) { return b.root.Lookup(name) }

// LookupCluster returns the cluster registered under name.
func (b *Builder) LookupCluster(name string) (graph.Graph, bool) {
	c, ok := b.clusters[name]
	return c, ok
}
