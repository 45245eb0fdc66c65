package builder

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matzehuels/dotgraph/pkg/config"
	"github.com/matzehuels/dotgraph/pkg/graph"
	"github.com/matzehuels/dotgraph/pkg/graph/transform"
	"github.com/matzehuels/dotgraph/pkg/render/dot"
)

func TestNew_GlobalAttributes(t *testing.T) {
	cfg := config.Default()
	cfg.RankDir = "LR"
	cfg.FontSize = 10

	root := New(cfg).Graph()
	attrs := root.Attributes()

	for k, want := range map[string]string{
		"shape":    "record",
		"rankdir":  "LR",
		"ranksep":  "equally",
		"compound": "true",
		"newrank":  "true",
		"fontsize": "10",
	} {
		got, ok := attrs.Get(k)
		require.True(t, ok, "missing attribute %s", k)
		require.Equal(t, want, got, "attribute %s", k)
	}

	shape, ok := root.NodeAttributes().Get("shape")
	require.True(t, ok)
	require.Equal(t, "record", shape)
	require.True(t, root.EdgeAttributes().IsEmpty())
}

func TestCluster(t *testing.T) {
	b := New(config.Default())

	backend, err := b.Cluster("backend", "")
	require.NoError(t, err)
	label, _ := backend.Attributes().Get("label")
	require.Equal(t, "backend", label)

	again, err := b.Cluster("backend", "")
	require.NoError(t, err)
	require.Equal(t, backend, again)

	db, err := b.Cluster("db", "backend")
	require.NoError(t, err)
	parent, ok := db.Parent()
	require.True(t, ok)
	require.Equal(t, backend, parent)

	_, err = b.Cluster("x", "missing")
	require.ErrorIs(t, err, ErrUnknownCluster)

	_, err = b.Cluster("", "")
	require.ErrorIs(t, err, ErrEmptyName)

	require.Equal(t, 3, b.Graph().ClusterCount())
}

func TestCluster_ModeNone(t *testing.T) {
	cfg := config.Default()
	cfg.ClusterMode = config.ClusterModeNone
	b := New(cfg)

	c, err := b.Cluster("backend", "")
	require.NoError(t, err)
	require.True(t, c.IsRoot())

	n, err := b.Node("api", "", "backend")
	require.NoError(t, err)
	require.True(t, n.Graph().IsRoot())
	require.Equal(t, 1, b.Graph().ClusterCount())
}

func TestNode(t *testing.T) {
	b := New(config.Default())

	api, err := b.Node("api", "top", "backend")
	require.NoError(t, err)

	backend, ok := b.LookupCluster("backend")
	require.True(t, ok, "cluster should be created on demand")
	require.Equal(t, backend, api.Graph())
	require.Equal(t, []string{"top"}, backend.RankLabels())

	fontsize, _ := api.Attributes().Get("fontsize")
	require.Equal(t, "12", fontsize)

	same, err := b.Node("api", "other", "")
	require.NoError(t, err)
	require.Equal(t, api, same)
	require.Equal(t, 1, b.Graph().NodeCount())
	require.Equal(t, []string{"top"}, backend.RankLabels(), "existing node must not be re-ranked")

	root, err := b.Node("cli", "", "")
	require.NoError(t, err)
	require.True(t, root.Graph().IsRoot())
	require.Empty(t, b.Graph().RankLabels())

	_, err = b.Node("", "", "")
	require.ErrorIs(t, err, ErrEmptyName)
}

func TestEdge(t *testing.T) {
	b := New(config.Default())
	_, err := b.Node("a", "", "x")
	require.NoError(t, err)
	_, err = b.Node("b", "", "y")
	require.NoError(t, err)

	e, err := b.Edge("a", "b")
	require.NoError(t, err)
	require.True(t, e.Graph().IsRoot())

	dup, err := b.Edge("a", "b")
	require.NoError(t, err)
	require.Equal(t, e, dup)
	require.Equal(t, 1, b.Graph().EdgeCount())

	_, err = b.Edge("a", "missing")
	require.ErrorIs(t, err, ErrUnknownNode)
	_, err = b.Edge("missing", "a")
	require.ErrorIs(t, err, ErrUnknownNode)
}

func TestBuilderOutput(t *testing.T) {
	cfg := config.Default()
	b := New(cfg)
	_, err := b.Node("a", "", "")
	require.NoError(t, err)
	_, err = b.Node("b", "", "")
	require.NoError(t, err)
	_, err = b.Edge("a", "b")
	require.NoError(t, err)

	want := "digraph {\n" +
		"compound = \"true\";\n" +
		"fontsize = \"12\";\n" +
		"newrank = \"true\";\n" +
		"rankdir = \"TB\";\n" +
		"ranksep = \"equally\";\n" +
		"shape = \"record\";\n" +
		"node0 [ fontsize=\"12\" shape=\"record\"];\n" +
		"node1 [ fontsize=\"12\" shape=\"record\"];\n" +
		"node0 -> node1;\n" +
		"}\n"
	require.Equal(t, want, dot.ToDOT(b.Graph()))
}

// Builder edges all live in the root, so a fan-in from two clusters is
// bundled by both merge phases: first by a root hub, then again by a hub in
// a new invisible cluster because the retargeted edges still cross clusters.
func TestBuilderMerge_CrossClusterFanIn(t *testing.T) {
	b := New(config.Default())
	_, err := b.Node("a", "", "c1")
	require.NoError(t, err)
	_, err = b.Node("b", "", "c2")
	require.NoError(t, err)
	target, err := b.Node("t", "", "")
	require.NoError(t, err)
	ea, err := b.Edge("a", "t")
	require.NoError(t, err)
	eb, err := b.Edge("b", "t")
	require.NoError(t, err)

	root := b.Graph()
	require.Equal(t, 3, root.ClusterCount())

	res, err := transform.MergeEdges(root)
	require.NoError(t, err)
	require.Equal(t, transform.MergeResult{
		SameClusterBundles:  1,
		CrossClusterBundles: 1,
		EdgesRetargeted:     4,
		NodesAdded:          2,
		EdgesAdded:          2,
		ClustersAdded:       1,
	}, res)
	require.Equal(t, 4, root.EdgeCount())
	require.Equal(t, 4, root.ClusterCount())

	hubB := ea.Target()
	require.Equal(t, hubB, eb.Target())
	hubCluster := hubB.Graph()
	require.False(t, hubCluster.IsRoot())
	style, _ := hubCluster.Attributes().Get("style")
	require.Equal(t, "invis", style)

	next := func(n graph.Node) graph.Node {
		for _, e := range root.AllEdges() {
			if e.Source() == n {
				return e.Target()
			}
		}
		t.Fatalf("no edge leaves node%s", n.ID())
		return graph.Node{}
	}
	hubA := next(hubB)
	require.True(t, hubA.Graph().IsRoot())
	require.NotEqual(t, target, hubA)
	require.Equal(t, target, next(hubA))
}
