package dot

import (
	"errors"
	"strings"
	"testing"

	"github.com/matzehuels/dotgraph/pkg/graph"
)

func TestGenerate(t *testing.T) {
	tests := []struct {
		name  string
		build func(g graph.Graph)
		want  string
	}{
		{
			name:  "empty graph",
			build: func(graph.Graph) {},
			want:  "digraph {\n}\n",
		},
		{
			name:  "one node",
			build: func(g graph.Graph) { g.NewNode() },
			want:  "digraph {\nnode0;\n}\n",
		},
		{
			name: "two nodes",
			build: func(g graph.Graph) {
				g.NewNode()
				g.NewNode()
			},
			want: "digraph {\nnode0;\nnode1;\n}\n",
		},
		{
			name: "graph attributes sorted",
			build: func(g graph.Graph) {
				g.Attributes().Set("rankdir", "LR")
				g.Attributes().Set("compound", "true")
			},
			want: "digraph {\ncompound = \"true\";\nrankdir = \"LR\";\n}\n",
		},
		{
			name: "nodes before edges",
			build: func(g graph.Graph) {
				a, b := g.NewNode(), g.NewNode()
				e, _ := g.NewEdge(a, b)
				e.Attributes().Set("color", "red")
			},
			want: "digraph {\nnode0;\nnode1;\nnode0 -> node1 [ color=\"red\"];\n}\n",
		},
		{
			name: "empty clusters",
			build: func(g graph.Graph) {
				g.NewGraph()
				g.NewGraph()
			},
			want: "digraph {\nsubgraph cluster1 {\n}\nsubgraph cluster2 {\n}\n}\n",
		},
		{
			name: "nested cluster after edges",
			build: func(g graph.Graph) {
				c := g.NewGraph()
				c.Attributes().Set("label", "inner")
				n := c.NewNode()
				a := g.NewNode()
				g.NewEdge(a, n)
			},
			want: "digraph {\nnode1;\nnode1 -> node0;\n" +
				"subgraph cluster1 {\nlabel = \"inner\";\nnode0;\n}\n}\n",
		},
		{
			name: "common declarations gated on edge defaults",
			build: func(g graph.Graph) {
				g.NodeAttributes().Set("shape", "record")
				g.EdgeAttributes().Set("arrowhead", "none")
			},
			want: "digraph {\nnode  [ shape=\"record\"];edge  [ arrowhead=\"none\"];}\n",
		},
		{
			name: "common declarations repeated in clusters",
			build: func(g graph.Graph) {
				g.NodeAttributes().Set("shape", "record")
				g.EdgeAttributes().Set("arrowhead", "none")
				g.NewGraph()
			},
			want: "digraph {\nnode  [ shape=\"record\"];edge  [ arrowhead=\"none\"];" +
				"subgraph cluster1 {\nnode  [ shape=\"record\"];edge  [ arrowhead=\"none\"];}\n}\n",
		},
		{
			name: "cluster defaults ignored",
			build: func(g graph.Graph) {
				c := g.NewGraph()
				c.NodeAttributes().Set("shape", "box")
				c.EdgeAttributes().Set("color", "red")
				c.NewNode()
			},
			want: "digraph {\nsubgraph cluster1 {\nnode0;\n}\n}\n",
		},
		{
			name: "node defaults alone are not declared",
			build: func(g graph.Graph) {
				g.NodeAttributes().Set("shape", "record")
				g.NewNode()
			},
			want: "digraph {\nnode0;\n}\n",
		},
		{
			name: "edge defaults with empty node defaults",
			build: func(g graph.Graph) {
				g.EdgeAttributes().Set("style", "dashed")
				g.NewNode()
			},
			want: "digraph {\nnode ;edge  [ style=\"dashed\"];node0;\n}\n",
		},
		{
			name: "graph attributes always quoted",
			build: func(g graph.Graph) {
				g.Attributes().Set("label", "<<b>x</b>>")
			},
			want: "digraph {\nlabel = \"<<b>x</b>>\";\n}\n",
		},
		{
			name: "node ranked twice under one label",
			build: func(g graph.Graph) {
				a := g.NewNode()
				g.Rank("r", a)
				g.Rank("r", a)
			},
			want: "digraph {\n\n{\nrank=same;\nnode0;\nnode0;\n\n}\n}\n",
		},
		{
			name: "node ranked under two labels",
			build: func(g graph.Graph) {
				a, b := g.NewNode(), g.NewNode()
				g.Rank("x", a)
				g.Rank("y", a)
				g.Rank("y", b)
			},
			want: "digraph {\n" +
				"\n{\nrank=same;\nnode0;\n\n}\n" +
				"\n{\nrank=same;\nnode0;\nnode1;\n\n}\n}\n",
		},
		{
			name: "node ranked outside its owner",
			build: func(g graph.Graph) {
				c := g.NewGraph()
				n := c.NewNode()
				if err := g.Rank("r", n); err != nil {
					panic(err)
				}
			},
			want: "digraph {\n\n{\nrank=same;\nnode0;\n\n}\n" +
				"subgraph cluster1 {\nnode0;\n}\n}\n",
		},
		{
			name: "rank groups first",
			build: func(g graph.Graph) {
				a, b, c := g.NewNode(), g.NewNode(), g.NewNode()
				g.Rank("top", c)
				g.Rank("bottom", a)
				_ = b
			},
			want: "digraph {\n" +
				"\n{\nrank=same;\nnode2;\n\n}\n" +
				"\n{\nrank=same;\nnode0;\n\n}\n" +
				"node1;\n}\n",
		},
		{
			name: "rank group keeps registration order",
			build: func(g graph.Graph) {
				a, b := g.NewNode(), g.NewNode()
				g.Rank("r", b)
				g.Rank("r", a)
			},
			want: "digraph {\n\n{\nrank=same;\nnode1;\nnode0;\n\n}\n}\n",
		},
		{
			name: "html label unquoted",
			build: func(g graph.Graph) {
				g.NewNode().Attributes().Set("label", "<<b>app</b>>")
			},
			want: "digraph {\nnode0 [ label=<<b>app</b>>];\n}\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := graph.New()
			tt.build(g)
			if got := ToDOT(g); got != tt.want {
				t.Errorf("ToDOT() =\n%q\nwant\n%q", got, tt.want)
			}
		})
	}
}

func TestFormatNodeWithAttributes(t *testing.T) {
	g := graph.New()
	n := g.NewNode()
	n.Attributes().Set("label", "label")
	n.Attributes().Set("font", "Helvetica")

	want := "node0 [ font=\"Helvetica\" label=\"label\"];\n"
	if got := formatNode(n); got != want {
		t.Errorf("formatNode() = %q, want %q", got, want)
	}
}

func TestFormatEdge(t *testing.T) {
	g := graph.New()
	a, b, c := g.NewNode(), g.NewNode(), g.NewNode()
	e0, _ := g.NewEdge(a, b)
	e1, _ := g.NewEdge(b, c)

	if got := formatEdge(e0); got != "node0 -> node1;\n" {
		t.Errorf("formatEdge() = %q", got)
	}
	if got := formatEdge(e0) + formatEdge(e1); got != "node0 -> node1;\nnode1 -> node2;\n" {
		t.Errorf("formatEdge() sequence = %q", got)
	}
}

func TestFormatAttributes(t *testing.T) {
	tests := []struct {
		name string
		set  map[string]string
		want string
	}{
		{"empty", nil, ""},
		{"single", map[string]string{"label": "label"}, ` [ label="label"]`},
		{"sorted", map[string]string{"label": "label", "font": "Helvetica"}, ` [ font="Helvetica" label="label"]`},
		{"html", map[string]string{"label": "<x>"}, ` [ label=<x>]`},
		{"lone bracket quoted", map[string]string{"label": "<"}, ` [ label="<"]`},
		{"open only quoted", map[string]string{"label": "<a"}, ` [ label="<a"]`},
		{"empty value", map[string]string{"label": ""}, ` [ label=""]`},
		{"embedded quote", map[string]string{"label": `say "hi"`}, ` [ label="say \"hi\""]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a graph.Attributes
			a.SetAll(tt.set)
			if got := formatAttributes(&a); got != tt.want {
				t.Errorf("formatAttributes() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGenerateClusterAsRoot(t *testing.T) {
	g := graph.New()
	c := g.NewGraph()
	c.Attributes().Set("label", "label")

	if got, want := ToDOT(c), "digraph {\nlabel = \"label\";\n}\n"; got != want {
		t.Errorf("ToDOT(cluster) = %q, want %q", got, want)
	}
}

func TestGenerateDoesNotMutate(t *testing.T) {
	g := graph.New()
	a, b := g.NewNode(), g.NewNode()
	g.NewEdge(a, b)
	g.Rank("r", a)
	g.NewGraph()

	first := ToDOT(g)
	nodes, edges, clusters := g.NodeCount(), g.EdgeCount(), g.ClusterCount()
	second := ToDOT(g)

	if first != second {
		t.Error("repeated generation should be identical")
	}
	if g.NodeCount() != nodes || g.EdgeCount() != edges || g.ClusterCount() != clusters {
		t.Error("generation changed the graph")
	}
}

func TestNewGenerator_NilGraph(t *testing.T) {
	if _, err := NewGenerator(graph.Graph{}); !errors.Is(err, graph.ErrNilGraph) {
		t.Errorf("NewGenerator() error = %v, want ErrNilGraph", err)
	}
	if got := ToDOT(graph.Graph{}); got != "" {
		t.Errorf("ToDOT(zero) = %q, want empty", got)
	}
}

type failingWriter struct {
	err error
}

func (w failingWriter) Write([]byte) (int, error) { return 0, w.err }

func TestGenerate_WriterError(t *testing.T) {
	g := graph.New()
	for i := 0; i < 1000; i++ {
		g.NewNode().Attributes().Set("label", strings.Repeat("x", 16))
	}
	gen, err := NewGenerator(g)
	if err != nil {
		t.Fatal(err)
	}

	sinkErr := errors.New("disk full")
	if err := gen.Generate(failingWriter{err: sinkErr}); !errors.Is(err, sinkErr) {
		t.Errorf("Generate() error = %v, want %v", err, sinkErr)
	}
}
