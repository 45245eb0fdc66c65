package cli

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	dgio "github.com/matzehuels/dotgraph/pkg/io"
)

// List styles
var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
	headerStyle  = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

// =============================================================================
// Tree rows
// =============================================================================

// rowKind distinguishes clusters from nodes in the browse tree.
type rowKind int

const (
	rowCluster rowKind = iota
	rowNode
)

// treeRow is one line of the browse tree.
type treeRow struct {
	kind  rowKind
	depth int
	name  string
	rank  string
	in    int // edges ending here
	out   int // edges starting here
	attrs map[string]string
}

// documentTree flattens doc into rows: each cluster followed by its child
// clusters and nodes, depth first in declaration order, then the nodes of
// the root graph. Nodes naming an undeclared cluster are listed under it as
// the builder creates such clusters below the root.
func documentTree(doc *dgio.Document) []treeRow {
	in := make(map[string]int)
	out := make(map[string]int)
	for _, e := range doc.Edges {
		out[e.From]++
		in[e.To]++
	}

	children := make(map[string][]dgio.Cluster)
	declared := make(map[string]bool)
	for _, c := range doc.Clusters {
		children[c.Parent] = append(children[c.Parent], c)
		declared[c.Name] = true
	}
	nodes := make(map[string][]dgio.Node)
	for _, n := range doc.Nodes {
		if n.Cluster != "" && !declared[n.Cluster] {
			declared[n.Cluster] = true
			children[""] = append(children[""], dgio.Cluster{Name: n.Cluster})
		}
		nodes[n.Cluster] = append(nodes[n.Cluster], n)
	}

	var rows []treeRow
	var walk func(cluster string, depth int)
	walk = func(cluster string, depth int) {
		for _, c := range children[cluster] {
			rows = append(rows, treeRow{kind: rowCluster, depth: depth, name: c.Name, attrs: c.Attrs})
			walk(c.Name, depth+1)
		}
		for _, n := range nodes[cluster] {
			rows = append(rows, treeRow{
				kind:  rowNode,
				depth: depth,
				name:  n.Name,
				rank:  n.Rank,
				in:    in[n.Name],
				out:   out[n.Name],
				attrs: n.Attrs,
			})
		}
	}
	walk("", 0)
	return rows
}

// =============================================================================
// BrowseModel - Interactive document explorer
// =============================================================================

// BrowseModel is the bubbletea model for exploring a document's clusters
// and nodes.
type BrowseModel struct {
	Title   string
	Summary string
	Rows    []treeRow
	Cursor  int
	Height  int
	Offset  int
}

// NewBrowseModel creates a browse model for doc. summary is shown below
// the title.
func NewBrowseModel(title, summary string, doc *dgio.Document) BrowseModel {
	return BrowseModel{
		Title:   title,
		Summary: summary,
		Rows:    documentTree(doc),
		Height:  15,
	}
}

func (m BrowseModel) Init() tea.Cmd {
	return nil
}

func (m BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Rows)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "home", "g":
			m.Cursor, m.Offset = 0, 0
		case "end", "G":
			if n := len(m.Rows); n > 0 {
				m.Cursor = n - 1
				m.Offset = max(0, n-m.Height)
			}
		}
	case tea.WindowSizeMsg:
		// Title, summary, help, table borders and the footer.
		m.Height = max(msg.Height-12, 5)
		if m.Cursor >= m.Offset+m.Height {
			m.Offset = m.Cursor - m.Height + 1
		}
	}
	return m, nil
}

func (m BrowseModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Title))
	b.WriteString("\n")
	if m.Summary != "" {
		b.WriteString(StyleDim.Render(m.Summary))
		b.WriteString("\n")
	}
	b.WriteString(listDimStyle.Render("↑/↓ navigate  g/G first/last  q quit"))
	b.WriteString("\n\n")

	if len(m.Rows) == 0 {
		b.WriteString(listDimStyle.Render("  (empty document)"))
		b.WriteString("\n")
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.Rows))
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		r := m.Rows[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		indent := strings.Repeat("  ", r.depth)

		name, rank, in, out := indent+r.name, "—", "", ""
		if r.kind == rowCluster {
			name = indent + "▾ " + r.name
		} else {
			if r.rank != "" {
				rank = r.rank
			}
			in, out = strconv.Itoa(r.in), strconv.Itoa(r.out)
		}
		rows = append(rows, []string{cursor, name, rank, in, out, formatAttrs(r.attrs)})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Name", "Rank", "In", "Out", "Attributes").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.Offset + row
			if idx >= len(m.Rows) {
				return lipgloss.NewStyle()
			}
			r := m.Rows[idx]

			base := lipgloss.NewStyle()
			switch {
			case col >= 2 && r.kind == rowCluster:
				base = base.Foreground(colorDim)
			case col == 5:
				base = base.Foreground(colorGray)
			case r.kind == rowCluster:
				base = base.Foreground(colorCyan)
			default:
				base = base.Foreground(colorWhite)
			}
			if idx == m.Cursor {
				return base.Bold(true).Foreground(colorGreen)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Rows))))

	return b.String()
}

// =============================================================================
// Helpers
// =============================================================================

// formatAttrs renders attributes as "k=v" pairs in key order, truncated to
// fit a table cell.
func formatAttrs(attrs map[string]string) string {
	if len(attrs) == 0 {
		return ""
	}
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + attrs[k]
	}
	s := strings.Join(parts, " ")
	const maxWidth = 40
	if r := []rune(s); len(r) > maxWidth {
		s = string(r[:maxWidth-1]) + "…"
	}
	return s
}
