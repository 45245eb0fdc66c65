// Package server exposes the dotgraph pipeline over HTTP.
//
// Routes:
//
//	POST /v1/dot               document -> DOT text
//	POST /v1/render/{format}   document -> svg, png or jpg
//	GET  /v1/schema            JSON Schema of the document format
//	GET  /healthz              liveness probe
//	GET  /version              build information
//
// Documents are read as JSON, TOML or YAML, chosen by the "input" query
// parameter or the request Content-Type. Layout settings default to the
// server configuration and can be overridden per request with the query
// parameters rankdir, fontsize, cluster_mode, merge and engine. Errors are
// returned as JSON with the error code and an HTTP status derived from it.
package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/dotgraph/pkg/config"
	"github.com/matzehuels/dotgraph/pkg/pipeline"
)

// shutdownTimeout bounds the graceful shutdown after the context ends.
const shutdownTimeout = 10 * time.Second

// Server serves the HTTP API.
type Server struct {
	runner *pipeline.Runner
	cfg    config.Config
	logger *log.Logger
}

// New creates a server that runs requests through runner with cfg's
// layout defaults and limits.
func New(runner *pipeline.Runner, cfg config.Config, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{runner: runner, cfg: cfg, logger: logger}
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	if d := s.cfg.Server.Timeout.Std(); d > 0 {
		r.Use(middleware.Timeout(d))
	}

	r.Get("/healthz", s.health)
	r.Get("/version", s.version)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/schema", s.schema)
		r.Post("/dot", s.dot)
		r.Post("/render/{format}", s.render)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, notFound(r.URL.Path))
	})
	return r
}

// Run listens on the configured address until ctx is done, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Server.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
