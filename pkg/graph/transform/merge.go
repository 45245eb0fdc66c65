package transform

import (
	"fmt"

	"github.com/matzehuels/dotgraph/pkg/graph"
)

// MergeResult summarizes the changes made by [EdgeMerge.Execute].
type MergeResult struct {
	SameClusterBundles  int // groups rewritten by the same-cluster phase
	CrossClusterBundles int // groups rewritten by the cross-cluster phase
	EdgesRetargeted     int // existing edges whose target was replaced
	NodesAdded          int // synthetic intermediate nodes
	EdgesAdded          int // synthetic intermediate -> target edges
	ClustersAdded       int // invisible clusters below the root
}

// Bundles returns the total number of rewritten groups.
func (r MergeResult) Bundles() int { return r.SameClusterBundles + r.CrossClusterBundles }

// EdgeMerge bundles edges converging on the same target node.
// It operates on the whole tree containing the graph it was created for.
type EdgeMerge struct {
	root graph.Graph
}

// NewEdgeMerge creates the algorithm for the tree containing g.
// Returns [graph.ErrNilGraph] if g is the zero graph.
func NewEdgeMerge(g graph.Graph) (*EdgeMerge, error) {
	if g.IsZero() {
		return nil, graph.ErrNilGraph
	}
	return &EdgeMerge{root: g.Root()}, nil
}

// MergeEdges is a convenience wrapper around [NewEdgeMerge] and
// [EdgeMerge.Execute].
func MergeEdges(g graph.Graph) (MergeResult, error) {
	m, err := NewEdgeMerge(g)
	if err != nil {
		return MergeResult{}, err
	}
	return m.Execute(), nil
}

// Execute runs the same-cluster phase over every graph of the tree, then the
// cross-cluster phase over the edges that existed before Execute was called.
// Each phase runs once; groups with fewer than two edges are left alone.
func (m *EdgeMerge) Execute() MergeResult {
	var res MergeResult
	original := m.root.AllEdges()

	m.root.Walk(func(c graph.Graph) {
		for _, fan := range groupByTarget(c.Edges()) {
			if len(fan.edges) < 2 {
				continue
			}
			hub := c.NewNode()
			hide(hub.Attributes())
			bundle(c, hub, fan, &res)
			res.SameClusterBundles++
		}
	})

	var crossing []graph.Edge
	for _, e := range original {
		if e.Source().Graph() != e.Target().Graph() {
			crossing = append(crossing, e)
		}
	}
	for _, fan := range groupByTarget(crossing) {
		if len(fan.edges) < 2 {
			continue
		}
		cluster := m.root.NewGraph()
		cluster.Attributes().Set("label", "")
		cluster.Attributes().Set("style", "invis")
		res.ClustersAdded++

		hub := cluster.NewNode()
		hide(hub.Attributes())
		bundle(m.root, hub, fan, &res)
		res.CrossClusterBundles++
	}

	return res
}

// fan is a group of edges sharing one target.
type fan struct {
	target graph.Node
	edges  []graph.Edge
}

// groupByTarget groups edges by target node, groups ordered by the first
// edge reaching each target.
func groupByTarget(edges []graph.Edge) []*fan {
	var fans []*fan
	byTarget := make(map[graph.Node]*fan)
	for _, e := range edges {
		t := e.Target()
		f, ok := byTarget[t]
		if !ok {
			f = &fan{target: t}
			byTarget[t] = f
			fans = append(fans, f)
		}
		f.edges = append(f.edges, e)
	}
	return fans
}

// bundle connects hub to the fan's target inside owner and retargets every
// edge of the fan to hub.
func bundle(owner graph.Graph, hub graph.Node, f *fan, res *MergeResult) {
	if _, err := owner.NewEdge(hub, f.target); err != nil {
		panic(fmt.Sprintf("transform: connect hub %s: %v", hub.ID(), err))
	}
	res.NodesAdded++
	res.EdgesAdded++

	for _, e := range f.edges {
		// hub is fresh and the fan's sources are pairwise distinct per
		// graph, so the new keys cannot collide.
		if err := e.Retarget(hub); err != nil {
			panic(fmt.Sprintf("transform: retarget edge to hub %s: %v", hub.ID(), err))
		}
		res.EdgesRetargeted++
	}
}

// hide makes a synthetic node render as an invisible point.
func hide(a *graph.Attributes) {
	a.Set("label", "")
	a.Set("shape", "none")
	a.Set("width", "0")
	a.Set("height", "0")
}
