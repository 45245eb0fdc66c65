package server

import (
	"encoding/json"
	stderrors "errors"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/dotgraph/pkg/buildinfo"
	"github.com/matzehuels/dotgraph/pkg/errors"
	dgio "github.com/matzehuels/dotgraph/pkg/io"
	"github.com/matzehuels/dotgraph/pkg/pipeline"
	"github.com/matzehuels/dotgraph/pkg/render/graphviz"
)

// Response headers describing a pipeline run.
const (
	HeaderCache    = "X-Dotgraph-Cache"
	HeaderNodes    = "X-Dotgraph-Nodes"
	HeaderBundles  = "X-Dotgraph-Bundles"
	HeaderDOTHash  = "X-Dotgraph-Dot-Hash"
	contentTypeDOT = "text/vnd.graphviz; charset=utf-8"
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) version(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

func (s *Server) schema(w http.ResponseWriter, r *http.Request) {
	data, err := dgio.Schema()
	if err != nil {
		writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "generate schema"))
		return
	}
	w.Header().Set("Content-Type", "application/schema+json")
	w.Write(data)
}

// POST /v1/dot
func (s *Server) dot(w http.ResponseWriter, r *http.Request) {
	doc, opts, err := s.readRequest(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	res, err := s.runner.Generate(r.Context(), doc, opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeResultHeaders(w, res, res.CacheInfo.DOTHit)
	w.Header().Set("Content-Type", contentTypeDOT)
	w.Write(res.DOT)
}

// POST /v1/render/{format}
func (s *Server) render(w http.ResponseWriter, r *http.Request) {
	format, err := graphviz.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	doc, opts, err := s.readRequest(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	opts.Formats = []string{string(format)}

	res, err := s.runner.Execute(r.Context(), doc, opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeResultHeaders(w, res, res.CacheInfo.RenderHit)
	w.Header().Set("Content-Type", format.ContentType())
	w.Write(res.Artifacts[string(format)])
}

// readRequest decodes the body document and the per-request options.
func (s *Server) readRequest(w http.ResponseWriter, r *http.Request) (*dgio.Document, pipeline.Options, error) {
	opts, err := s.options(r)
	if err != nil {
		return nil, opts, err
	}
	format, err := inputFormat(r)
	if err != nil {
		return nil, opts, err
	}

	body := http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxBodyBytes)
	defer body.Close()
	doc, err := dgio.Read(body, format)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return nil, opts, errTooLarge(tooLarge.Limit)
		}
		return nil, opts, err
	}
	return doc, opts, nil
}

// options starts from the server's layout settings and applies the query
// overrides.
func (s *Server) options(r *http.Request) (pipeline.Options, error) {
	q := r.URL.Query()
	cfg := s.cfg
	opts := pipeline.Options{
		Engine: q.Get("engine"),
		Source: "request " + RequestIDFrom(r.Context()),
	}

	if v := q.Get("rankdir"); v != "" {
		cfg.RankDir = v
	}
	if v := q.Get("cluster_mode"); v != "" {
		cfg.ClusterMode = v
	}
	if v := q.Get("fontsize"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "invalid fontsize: %q", v)
		}
		cfg.FontSize = n
	}
	for name, dst := range map[string]*bool{"merge": &cfg.Merge, "refresh": &opts.Refresh} {
		if v := q.Get(name); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return opts, errors.New(errors.ErrCodeInvalidInput, "invalid %s: %q", name, v)
			}
			*dst = b
		}
	}
	opts.Config = cfg

	if err := opts.ValidateAndSetDefaults(); err != nil {
		if errors.Is(err, errors.ErrCodeInvalidConfig) {
			return opts, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid layout settings")
		}
		return opts, err
	}
	// Leave the logger to the runner.
	opts.Logger = nil
	return opts, nil
}

// inputFormat picks the document format from the "input" query parameter,
// then the Content-Type, defaulting to JSON.
func inputFormat(r *http.Request) (dgio.Format, error) {
	if v := r.URL.Query().Get("input"); v != "" {
		return dgio.ParseFormat(v)
	}
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return dgio.FormatJSON, nil
	}
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidFormat, err, "invalid content type")
	}
	switch mediaType {
	case "application/json", "text/json":
		return dgio.FormatJSON, nil
	case "application/toml", "text/toml":
		return dgio.FormatTOML, nil
	case "application/yaml", "application/x-yaml", "text/yaml", "text/x-yaml":
		return dgio.FormatYAML, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported content type: %s", mediaType)
}

func writeResultHeaders(w http.ResponseWriter, res *pipeline.Result, hit bool) {
	h := w.Header()
	if hit {
		h.Set(HeaderCache, "hit")
	} else {
		h.Set(HeaderCache, "miss")
	}
	h.Set(HeaderNodes, strconv.Itoa(res.Stats.NodeCount))
	h.Set(HeaderBundles, strconv.Itoa(res.Stats.Merge.Bundles()))
	h.Set(HeaderDOTHash, res.DOTHash)
}

// =============================================================================
// Responses
// =============================================================================

// tooLargeError marks a body over the configured limit.
type tooLargeError struct {
	limit int64
}

func (e *tooLargeError) Error() string {
	return "request body exceeds " + strconv.FormatInt(e.limit, 10) + " bytes"
}

func errTooLarge(limit int64) error {
	return errors.Wrap(errors.ErrCodeInvalidInput, &tooLargeError{limit: limit}, "document too large")
}

func notFound(path string) error {
	return errors.New(errors.ErrCodeNotFound, "no route for %s", path)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	var tooLarge *tooLargeError
	if stderrors.As(err, &tooLarge) {
		status = http.StatusRequestEntityTooLarge
	}

	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	writeJSON(w, status, ErrorResponse{
		Error:     string(code),
		Message:   errors.UserMessage(err),
		RequestID: RequestIDFrom(r.Context()),
	})
}
