package io

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matzehuels/dotgraph/pkg/config"
	"github.com/matzehuels/dotgraph/pkg/errors"
)

const servicesJSON = `{
  "attrs": {"label": "services"},
  "clusters": [
    {"name": "storage", "parent": "backend"},
    {"name": "backend"}
  ],
  "nodes": [
    {"name": "api", "cluster": "backend", "rank": "edge"},
    {"name": "db", "cluster": "storage", "attrs": {"shape": "cylinder"}},
    {"name": "cli"}
  ],
  "edges": [
    {"from": "cli", "to": "api"},
    {"from": "api", "to": "db", "attrs": {"label": "sql"}}
  ]
}`

const servicesTOML = `
[attrs]
label = "services"

[[clusters]]
name = "storage"
parent = "backend"

[[clusters]]
name = "backend"

[[nodes]]
name = "api"
cluster = "backend"
rank = "edge"

[[nodes]]
name = "db"
cluster = "storage"
attrs = { shape = "cylinder" }

[[nodes]]
name = "cli"

[[edges]]
from = "cli"
to = "api"

[[edges]]
from = "api"
to = "db"
attrs = { label = "sql" }
`

const servicesYAML = `
attrs:
  label: services
clusters:
  - name: storage
    parent: backend
  - name: backend
nodes:
  - name: api
    cluster: backend
    rank: edge
  - name: db
    cluster: storage
    attrs:
      shape: cylinder
  - name: cli
edges:
  - from: cli
    to: api
  - from: api
    to: db
    attrs:
      label: sql
`

func TestRead_AllFormatsAgree(t *testing.T) {
	inputs := map[Format]string{
		FormatJSON: servicesJSON,
		FormatTOML: servicesTOML,
		FormatYAML: servicesYAML,
	}

	var docs []*Document
	for _, f := range Formats {
		doc, err := Read(strings.NewReader(inputs[f]), f)
		require.NoError(t, err, "format %s", f)
		docs = append(docs, doc)
	}
	require.Equal(t, docs[0], docs[1])
	require.Equal(t, docs[0], docs[2])

	doc := docs[0]
	require.Len(t, doc.Clusters, 2)
	require.Len(t, doc.Nodes, 3)
	require.Equal(t, "sql", doc.Edges[1].Attrs["label"])
}

func TestReadJSON_Repair(t *testing.T) {
	input := `{
  // hand-written
  "nodes": [{"name": "a"}, {"name": "b"},],
  "edges": [{"from": "a", "to": "b"},],
}`
	doc, err := ReadJSON(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, doc.Nodes, 2)
	require.Len(t, doc.Edges, 1)
}

func TestRead_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		input  string
		code   errors.Code
	}{
		{"unknown json field", FormatJSON, `{"nodes": [], "colour": "red"}`, errors.ErrCodeInvalidDocument},
		{"unknown toml key", FormatTOML, "colour = \"red\"\n", errors.ErrCodeInvalidDocument},
		{"unknown yaml key", FormatYAML, "colour: red\n", errors.ErrCodeInvalidDocument},
		{"empty node name", FormatJSON, `{"nodes": [{"name": ""}]}`, errors.ErrCodeInvalidDocument},
		{"duplicate node", FormatJSON, `{"nodes": [{"name": "a"}, {"name": "a"}]}`, errors.ErrCodeInvalidDocument},
		{"edge to unknown node", FormatJSON, `{"nodes": [{"name": "a"}], "edges": [{"from": "a", "to": "b"}]}`, errors.ErrCodeUnknownNode},
		{"unknown parent", FormatJSON, `{"clusters": [{"name": "a", "parent": "b"}], "nodes": []}`, errors.ErrCodeUnknownCluster},
		{"parent loop", FormatJSON, `{"clusters": [{"name": "a", "parent": "b"}, {"name": "b", "parent": "a"}], "nodes": []}`, errors.ErrCodeInvalidDocument},
		{"duplicate cluster", FormatJSON, `{"clusters": [{"name": "a"}, {"name": "a"}], "nodes": []}`, errors.ErrCodeInvalidDocument},
		{"bad attribute key", FormatJSON, `{"attrs": {"font-size": "3"}, "nodes": []}`, errors.ErrCodeInvalidDocument},
		{"unsupported format", Format("xml"), `<graph/>`, errors.ErrCodeInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.input), tt.format)
			require.Error(t, err)
			require.True(t, errors.Is(err, tt.code), "got %v, want code %s", err, tt.code)
		})
	}
}

func TestImport(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "services.yml")
	require.NoError(t, os.WriteFile(path, []byte(servicesYAML), 0o644))

	doc, err := Import(path)
	require.NoError(t, err)
	require.Len(t, doc.Nodes, 3)

	_, err = Import(filepath.Join(dir, "missing.json"))
	require.True(t, errors.Is(err, errors.ErrCodeFileNotFound), "got %v", err)

	_, err = Import(filepath.Join(dir, "graph.dot"))
	require.True(t, errors.Is(err, errors.ErrCodeInvalidFormat), "got %v", err)
}

func TestBuild(t *testing.T) {
	doc, err := ReadJSON(strings.NewReader(servicesJSON))
	require.NoError(t, err)

	b, err := Build(doc, config.Default())
	require.NoError(t, err)
	root := b.Graph()

	require.Equal(t, 3, root.ClusterCount())
	require.Equal(t, 3, root.NodeCount())
	require.Equal(t, 2, root.EdgeCount())

	label, _ := root.Attributes().Get("label")
	require.Equal(t, "services", label)

	backend, ok := b.LookupCluster("backend")
	require.True(t, ok)
	storage, ok := b.LookupCluster("storage")
	require.True(t, ok)
	parent, _ := storage.Parent()
	require.Equal(t, backend, parent, "parents are created before children")
	require.Equal(t, []string{"edge"}, backend.RankLabels())

	db, ok := b.LookupNode("db")
	require.True(t, ok)
	shape, _ := db.Attributes().Get("shape")
	require.Equal(t, "cylinder", shape, "document attributes override defaults")
	require.Equal(t, storage, db.Graph())
}

func TestBuild_ClusterModeNone(t *testing.T) {
	doc, err := ReadJSON(strings.NewReader(servicesJSON))
	require.NoError(t, err)

	cfg := config.Default()
	cfg.ClusterMode = config.ClusterModeNone
	b, err := Build(doc, cfg)
	require.NoError(t, err)
	require.Equal(t, 1, b.Graph().ClusterCount())

	label, _ := b.Graph().Attributes().Get("label")
	require.Equal(t, "services", label, "cluster attributes must not leak onto the root")
}

func TestWriteDOT(t *testing.T) {
	doc := &Document{
		Nodes: []Node{{Name: "a"}, {Name: "b"}},
		Edges: []Edge{{From: "a", To: "b"}},
	}
	b, err := Build(doc, config.Default())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteDOT(&buf, b.Graph()))
	require.True(t, strings.HasPrefix(buf.String(), "digraph {\n"))
	require.Contains(t, buf.String(), "node0 -> node1;\n")

	path := filepath.Join(t.TempDir(), "out.dot")
	require.NoError(t, ExportDOT(path, b.Graph()))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, buf.String(), string(data))
}

func TestWriteDocument_RoundTrip(t *testing.T) {
	doc, err := ReadJSON(strings.NewReader(servicesJSON))
	require.NoError(t, err)

	for _, f := range Formats {
		t.Run(string(f), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteDocument(&buf, doc, f))
			back, err := Read(&buf, f)
			require.NoError(t, err)
			require.Equal(t, doc, back)
		})
	}
}

func TestSchema(t *testing.T) {
	data, err := Schema()
	require.NoError(t, err)
	s := string(data)
	require.Contains(t, s, `"title": "dotgraph document"`)
	require.Contains(t, s, `"nodes"`)
	require.Contains(t, s, `"additionalProperties": false`)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("YML")
	require.NoError(t, err)
	require.Equal(t, FormatYAML, f)

	_, err = ParseFormat("xml")
	require.Error(t, err)
}

func TestImport_Examples(t *testing.T) {
	tests := []struct {
		file                   string
		clusters, nodes, edges int
	}{
		{"services.toml", 4, 5, 4},
		{"build.yaml", 3, 6, 7},
		{"fanin.json", 1, 3, 2},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			doc, err := Import(filepath.Join("..", "..", "examples", tt.file))
			require.NoError(t, err)

			b, err := Build(doc, config.Default())
			require.NoError(t, err)
			require.Equal(t, tt.clusters, b.Graph().ClusterCount())
			require.Equal(t, tt.nodes, b.Graph().NodeCount())
			require.Equal(t, tt.edges, b.Graph().EdgeCount())
		})
	}
}
