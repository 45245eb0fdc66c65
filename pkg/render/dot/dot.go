package dot

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/matzehuels/dotgraph/pkg/graph"
)

// Generator writes a graph tree as DOT. It never modifies the tree.
type Generator struct {
	root graph.Graph
}

// NewGenerator creates a generator for g. The graph is written as the
// top-level digraph, whether or not it is the root of its tree.
// Returns [graph.ErrNilGraph] if g is the zero graph.
func NewGenerator(g graph.Graph) (*Generator, error) {
	if g.IsZero() {
		return nil, graph.ErrNilGraph
	}
	return &Generator{root: g}, nil
}

// Generate writes the DOT text to w. The first write error is returned and
// nothing further is written after it.
func (gen *Generator) Generate(w io.Writer) error {
	bw := bufio.NewWriter(w)
	e := &emitter{w: bw, root: gen.root}
	e.write("digraph {\n")
	e.graph(gen.root)
	e.write("}\n")
	if e.err != nil {
		return e.err
	}
	return bw.Flush()
}

// ToDOT returns the DOT text for g, or the empty string for the zero graph.
func ToDOT(g graph.Graph) string {
	gen, err := NewGenerator(g)
	if err != nil {
		return ""
	}
	var sb strings.Builder
	_ = gen.Generate(&sb) // strings.Builder never fails
	return sb.String()
}

// emitter keeps the first write error so the traversal does not have to
// check every call.
type emitter struct {
	w    io.Writer
	root graph.Graph
	err  error
}

func (e *emitter) write(s string) {
	if e.err != nil {
		return
	}
	_, e.err = io.WriteString(e.w, s)
}

func (e *emitter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}

func (e *emitter) graph(g graph.Graph) {
	for k, v := range g.Attributes().All() {
		e.printf("%s = %s;\n", k, quote(v))
	}

	// Every body repeats the top-level defaults, gated on its edge table.
	if !e.root.EdgeAttributes().IsEmpty() {
		e.write("node " + formatAttributes(e.root.NodeAttributes()) + ";")
		e.write("edge " + formatAttributes(e.root.EdgeAttributes()) + ";")
	}

	e.nodes(g)
	for _, edge := range g.Edges() {
		e.write(formatEdge(edge))
	}
	for _, c := range g.Clusters() {
		e.cluster(c)
	}
}

func (e *emitter) nodes(g graph.Graph) {
	ranked := make(map[graph.Node]bool)
	for _, label := range g.RankLabels() {
		e.write("\n{\nrank=same;\n")
		for _, n := range g.Ranked(label) {
			e.write(formatNode(n))
			ranked[n] = true
		}
		e.write("\n}\n")
	}
	for _, n := range g.Nodes() {
		if !ranked[n] {
			e.write(formatNode(n))
		}
	}
}

func (e *emitter) cluster(c graph.Graph) {
	e.printf("subgraph cluster%s {\n", c.ID())
	e.graph(c)
	e.write("}\n")
}

func formatNode(n graph.Node) string {
	return "node" + n.ID().String() + formatAttributes(n.Attributes()) + ";\n"
}

func formatEdge(edge graph.Edge) string {
	return fmt.Sprintf("node%s -> node%s%s;\n",
		edge.Source().ID(), edge.Target().ID(), formatAttributes(edge.Attributes()))
}

// formatAttributes renders a table as ` [ k="v" ...]`, or "" when empty.
func formatAttributes(a *graph.Attributes) string {
	if a.IsEmpty() {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(" [")
	for k, v := range a.All() {
		sb.WriteString(" ")
		sb.WriteString(k)
		sb.WriteString("=")
		sb.WriteString(formatValue(v))
	}
	sb.WriteString("]")
	return sb.String()
}

// formatValue quotes v unless it is an HTML-like label such as <<b>x</b>>.
func formatValue(v string) string {
	if isHTML(v) {
		return v
	}
	return quote(v)
}

func quote(v string) string {
	return `"` + strings.ReplaceAll(v, `"`, `\"`) + `"`
}

func isHTML(v string) bool {
	return len(v) >= 2 && strings.HasPrefix(v, "<") && strings.HasSuffix(v, ">")
}
