package pipeline

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/dotgraph/pkg/cache"
	"github.com/matzehuels/dotgraph/pkg/config"
	"github.com/matzehuels/dotgraph/pkg/errors"
	dgio "github.com/matzehuels/dotgraph/pkg/io"
)

const fanInTOML = `
[[clusters]]
name = "backend"

[[nodes]]
name = "web"

[[nodes]]
name = "worker"

[[nodes]]
name = "db"
cluster = "backend"

[[edges]]
from = "web"
to = "db"

[[edges]]
from = "worker"
to = "db"
`

func fanInDoc(t *testing.T) *dgio.Document {
	t.Helper()
	doc, err := dgio.ReadTOML(strings.NewReader(fanInTOML))
	if err != nil {
		t.Fatalf("ReadTOML() error = %v", err)
	}
	return doc
}

func quietLogger() *log.Logger {
	return log.NewWithOptions(&bytes.Buffer{}, log.Options{})
}

func newTestRunner(t *testing.T) *Runner {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}
	r := NewRunner(c, nil, quietLogger())
	t.Cleanup(func() { r.Close() })
	return r
}

func TestValidateAndSetDefaults(t *testing.T) {
	var opts Options
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error = %v", err)
	}
	if opts.Config.RankDir != "TB" || !opts.Config.Merge {
		t.Errorf("Config = %+v, want defaults", opts.Config)
	}
	if opts.Engine != DefaultEngine {
		t.Errorf("Engine = %q, want %q", opts.Engine, DefaultEngine)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}
}

func TestValidateAndSetDefaults_Invalid(t *testing.T) {
	badRankDir := config.Default()
	badRankDir.RankDir = "XY"

	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"format", Options{Formats: []string{"pdf"}}, errors.ErrCodeInvalidFormat},
		{"engine", Options{Engine: "spring"}, errors.ErrCodeInvalidInput},
		{"rankdir", Options{Config: badRankDir}, errors.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if !errors.Is(err, tt.code) {
				t.Errorf("ValidateAndSetDefaults() error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestValidateFormats(t *testing.T) {
	formats := []string{"SVG", "jpeg"}
	if err := ValidateFormats(formats); err != nil {
		t.Fatalf("ValidateFormats() error = %v", err)
	}
	if formats[0] != "svg" || formats[1] != "jpg" {
		t.Errorf("formats = %v, want [svg jpg]", formats)
	}
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("empty formats should pass: %v", err)
	}
}

func TestBuild_Merge(t *testing.T) {
	r := NewRunner(nil, nil, quietLogger())

	g, merged, err := r.Build(context.Background(), fanInDoc(t), Options{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if merged.Bundles() != 1 || merged.EdgesRetargeted != 2 {
		t.Errorf("merge = %+v, want one bundle of two edges", merged)
	}
	if g.NodeCount() != 4 || g.EdgeCount() != 3 {
		t.Errorf("counts = %d nodes, %d edges; want 4, 3", g.NodeCount(), g.EdgeCount())
	}

	cfg := config.Default()
	cfg.Merge = false
	g, merged, err = r.Build(context.Background(), fanInDoc(t), Options{Config: cfg})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if merged.Bundles() != 0 || g.NodeCount() != 3 || g.EdgeCount() != 2 {
		t.Errorf("unmerged build changed the graph: %+v", merged)
	}
}

func TestBuild_NilDocument(t *testing.T) {
	r := NewRunner(nil, nil, quietLogger())
	if _, _, err := r.Build(context.Background(), nil, Options{}); !errors.Is(err, errors.ErrCodeInvalidDocument) {
		t.Errorf("Build(nil) error = %v, want INVALID_DOCUMENT", err)
	}
}

func TestGenerate(t *testing.T) {
	r := newTestRunner(t)
	ctx := context.Background()

	first, err := r.Generate(ctx, fanInDoc(t), Options{})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if first.CacheInfo.DOTHit {
		t.Error("first run should miss the cache")
	}
	dotText := string(first.DOT)
	if !strings.HasPrefix(dotText, "digraph {\n") || !strings.HasSuffix(dotText, "}\n") {
		t.Errorf("DOT = %q, want a digraph", dotText)
	}
	if !strings.Contains(dotText, "subgraph cluster1 {") {
		t.Errorf("DOT should contain the backend cluster:\n%s", dotText)
	}
	if first.Stats.NodeCount != 4 || first.Stats.ClusterCount != 1 {
		t.Errorf("Stats = %+v", first.Stats)
	}
	if first.DOTHash != cache.Hash(first.DOT) {
		t.Error("DOTHash should hash the DOT text")
	}

	second, err := r.Generate(ctx, fanInDoc(t), Options{})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if !second.CacheInfo.DOTHit {
		t.Error("second run should hit the cache")
	}
	if string(second.DOT) != dotText {
		t.Error("cached DOT differs from generated DOT")
	}
	if second.Stats.NodeCount != first.Stats.NodeCount || second.Stats.Merge != first.Stats.Merge {
		t.Errorf("cached stats = %+v, want %+v", second.Stats, first.Stats)
	}

	refreshed, err := r.Generate(ctx, fanInDoc(t), Options{Refresh: true})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if refreshed.CacheInfo.DOTHit {
		t.Error("refresh should bypass the cache")
	}
	if string(refreshed.DOT) != dotText {
		t.Error("generation is not deterministic")
	}
}

func TestGenerate_SettingsChangeKey(t *testing.T) {
	r := newTestRunner(t)
	ctx := context.Background()

	if _, err := r.Generate(ctx, fanInDoc(t), Options{}); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	cfg := config.Default()
	cfg.RankDir = "LR"
	res, err := r.Generate(ctx, fanInDoc(t), Options{Config: cfg})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if res.CacheInfo.DOTHit {
		t.Error("different rankdir should not reuse cached DOT")
	}
	if !strings.Contains(string(res.DOT), `rankdir = "LR";`) {
		t.Errorf("DOT should use rankdir LR:\n%s", res.DOT)
	}
}

func TestGenerate_InvalidDocument(t *testing.T) {
	r := NewRunner(nil, nil, quietLogger())
	doc := &dgio.Document{
		Nodes: []dgio.Node{{Name: "a"}},
		Edges: []dgio.Edge{{From: "a", To: "missing"}},
	}
	_, err := r.Generate(context.Background(), doc, Options{})
	if !errors.Is(err, errors.ErrCodeUnknownNode) {
		t.Errorf("Generate() error = %v, want UNKNOWN_NODE", err)
	}
}

func TestDocumentHash(t *testing.T) {
	fromTOML := fanInDoc(t)

	var buf bytes.Buffer
	if err := dgio.WriteDocument(&buf, fromTOML, dgio.FormatYAML); err != nil {
		t.Fatalf("WriteDocument() error = %v", err)
	}
	fromYAML, err := dgio.ReadYAML(&buf)
	if err != nil {
		t.Fatalf("ReadYAML() error = %v", err)
	}

	h1, err := DocumentHash(fromTOML)
	if err != nil {
		t.Fatal(err)
	}
	h2, err := DocumentHash(fromYAML)
	if err != nil {
		t.Fatal(err)
	}
	if h1 != h2 {
		t.Error("the same document should hash the same in every format")
	}

	if _, err := DocumentHash(nil); err == nil {
		t.Error("DocumentHash(nil) should fail")
	}
}

func TestExecute(t *testing.T) {
	r := newTestRunner(t)
	ctx := context.Background()
	opts := Options{Formats: []string{"svg", "png"}}

	res, err := r.Execute(ctx, fanInDoc(t), opts)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !bytes.Contains(res.Artifacts["svg"], []byte("<svg")) {
		t.Error("svg artifact missing")
	}
	if !bytes.HasPrefix(res.Artifacts["png"], []byte("\x89PNG")) {
		t.Error("png artifact missing")
	}
	if res.CacheInfo.RenderHit {
		t.Error("first render should miss the cache")
	}

	again, err := r.Execute(ctx, fanInDoc(t), opts)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !again.CacheInfo.DOTHit || !again.CacheInfo.RenderHit {
		t.Errorf("CacheInfo = %+v, want all hits", again.CacheInfo)
	}
	if !bytes.Equal(again.Artifacts["svg"], res.Artifacts["svg"]) {
		t.Error("cached svg differs")
	}
}

func TestExecute_DOTOnly(t *testing.T) {
	r := NewRunner(nil, nil, quietLogger())
	res, err := r.Execute(context.Background(), fanInDoc(t), Options{})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(res.Artifacts) != 0 {
		t.Errorf("Artifacts = %v, want none", res.Artifacts)
	}
	if len(res.DOT) == 0 {
		t.Error("DOT should be generated")
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.toml")
	if err := os.WriteFile(path, []byte(fanInTOML), 0o644); err != nil {
		t.Fatal(err)
	}

	r := NewRunner(nil, nil, quietLogger())
	doc, err := r.Load(context.Background(), path, false)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(doc.Nodes) != 3 || len(doc.Edges) != 2 {
		t.Errorf("doc = %+v", doc)
	}

	_, err = r.Load(context.Background(), filepath.Join(t.TempDir(), "missing.toml"), false)
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Load(missing) error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestLoad_URL(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		hits++
		switch req.URL.Path {
		case "/graph.toml":
			w.Write([]byte(fanInTOML))
		case "/graph":
			w.Write([]byte(`{"nodes": [{"name": "a"}, {"name": "b"}], "edges": [{"from": "a", "to": "b"}]}`))
		default:
			http.NotFound(w, req)
		}
	}))
	defer srv.Close()

	r := newTestRunner(t)
	ctx := context.Background()

	doc, err := r.Load(ctx, srv.URL+"/graph.toml", false)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(doc.Nodes) != 3 {
		t.Errorf("toml doc has %d nodes, want 3", len(doc.Nodes))
	}

	doc, err = r.Load(ctx, srv.URL+"/graph", false)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(doc.Edges) != 1 {
		t.Errorf("json doc has %d edges, want 1", len(doc.Edges))
	}

	if _, err := r.Load(ctx, srv.URL+"/graph.toml", false); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if hits != 2 {
		t.Errorf("server hits = %d, want 2 (third load cached)", hits)
	}

	if _, err := r.Load(ctx, srv.URL+"/missing.json", false); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Load(missing) error = %v, want NOT_FOUND", err)
	}
}

func TestIsURL(t *testing.T) {
	tests := map[string]bool{
		"https://example.com/g.json": true,
		"http://localhost/g":         true,
		"graph.toml":                 false,
		"./http/graph.json":          false,
	}
	for src, want := range tests {
		if got := IsURL(src); got != want {
			t.Errorf("IsURL(%q) = %v, want %v", src, got, want)
		}
	}
}
