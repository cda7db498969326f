// Package server exposes scope graphs over HTTP: a websocket for live
// editing and a one-shot JSON endpoint.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jward/scopeview"
	"github.com/jward/scopeview/internal/graph"
	"github.com/jward/scopeview/internal/layout"
)

// maxSourceBytes bounds request bodies and websocket messages.
const maxSourceBytes = 4 << 20

// Options configures a Server.
type Options struct {
	// Frontend is the default frontend configuration. Requests may
	// override Kind and Language.
	Frontend scopeview.FrontendConfig
	// Depth is the initial detail level of new sessions.
	Depth int
	// CacheSize is passed to every session; see scopeview.WithCacheSize.
	CacheSize int
	// Layout places nodes for every session; nil uses the layered default.
	Layout layout.Layout
	Logger *slog.Logger
}

// Server serves scope graphs for one default frontend configuration.
// Every websocket connection and every /api/graph request gets its own
// Session.
type Server struct {
	opts   Options
	logger *slog.Logger
	mux    *http.ServeMux
}

// New creates a Server. Zero Depth and Language fall back to
// scopeview.DefaultDepth and "go"; a nil Logger to slog.Default.
func New(opts Options) *Server {
	if opts.Depth < 1 {
		opts.Depth = scopeview.DefaultDepth
	}
	if opts.Frontend.Language == "" {
		opts.Frontend.Language = "go"
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	opts.Frontend.Logger = logger

	s := &Server{opts: opts, logger: logger, mux: http.NewServeMux()}
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("GET /api/languages", s.handleLanguages)
	s.mux.HandleFunc("POST /api/graph", s.handleGraph)
	s.mux.HandleFunc("GET /ws", s.handleWS)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until the server fails.
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("server.listening", "addr", addr)
	return srv.ListenAndServe()
}

// newSession creates a session for one client. kind and language override
// the defaults when non-empty.
func (s *Server) newSession(kind, language string, opts ...scopeview.Option) (*scopeview.Session, error) {
	cfg := s.opts.Frontend
	if kind != "" {
		cfg.Kind = kind
		// A script path only makes sense for the configured script frontend.
		if kind != s.opts.Frontend.Kind {
			cfg.Script = ""
		}
	}
	if language != "" {
		cfg.Language = language
		if language != s.opts.Frontend.Language {
			cfg.Script = ""
		}
	}
	fe, err := scopeview.NewFrontend(cfg)
	if err != nil {
		return nil, err
	}
	base := []scopeview.Option{
		scopeview.WithDepth(s.opts.Depth),
		scopeview.WithCacheSize(s.opts.CacheSize),
		scopeview.WithLogger(s.logger),
		scopeview.WithLayout(s.opts.Layout),
	}
	return scopeview.NewSession(fe, append(base, opts...)...)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleLanguages(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"languages": scopeview.Languages(),
		"frontends": scopeview.FrontendKinds,
	})
}

// GraphRequest is the body of POST /api/graph.
type GraphRequest struct {
	Source      string   `json:"source"`
	Language    string   `json:"language,omitempty"`
	Frontend    string   `json:"frontend,omitempty"`
	Depth       int      `json:"depth,omitempty"`
	Exclude     []string `json:"exclude,omitempty"`
	VirtualRoot string   `json:"virtualRoot,omitempty"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	var req GraphRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSourceBytes))
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Code: "invalid_argument", Message: "invalid body: " + err.Error()})
		return
	}

	excluded, err := graph.ParseKinds(req.Exclude)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Code: "invalid_argument", Message: err.Error()})
		return
	}
	var opts []scopeview.Option
	opts = append(opts, scopeview.WithExcluded(excluded.Sorted()...))
	if req.Depth > 0 {
		opts = append(opts, scopeview.WithDepth(req.Depth))
	}
	if req.VirtualRoot != "" {
		opts = append(opts, scopeview.WithBuildOptions(graph.WithVirtualRoot(req.VirtualRoot)))
	}

	sess, err := s.newSession(strings.ToLower(req.Frontend), strings.ToLower(req.Language), opts...)
	if err != nil {
		code, status := errorCode(err)
		writeJSON(w, status, errorBody{Code: code, Message: err.Error()})
		return
	}
	if err := sess.Edit(r.Context(), req.Source); err != nil {
		code, status := errorCode(err)
		writeJSON(w, status, errorBody{Code: code, Message: err.Error()})
		return
	}
	rendered, err := sess.Render(r.Context())
	if err != nil {
		code, status := errorCode(err)
		writeJSON(w, status, errorBody{Code: code, Message: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, rendered)
}

// errorCode maps pipeline errors to a wire code and HTTP status.
func errorCode(err error) (string, int) {
	switch {
	case errors.Is(err, scopeview.ErrParse):
		return "parse_error", http.StatusUnprocessableEntity
	case errors.Is(err, scopeview.ErrParserUnavailable):
		return "parser_unavailable", http.StatusBadRequest
	case errors.Is(err, scopeview.ErrStale):
		return "stale", http.StatusConflict
	default:
		return "internal", http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("server.write_failed", "err", fmt.Errorf("encode response: %w", err))
	}
}
