package scopeview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/jward/scopeview/internal/capture"
	"github.com/jward/scopeview/internal/graph"
	"github.com/jward/scopeview/internal/layout"
	"github.com/jward/scopeview/internal/scope"
)

// Session defaults.
const (
	DefaultDepth     = 3
	DefaultCacheSize = 256
)

// Session is one live-editing pipeline: every Edit reparses the text and
// rebuilds the scope graph, and the view is the graph filtered by the
// current detail level and kind exclusions.
//
// Edits may complete out of order. Each edit takes a generation number
// when it starts and only an edit newer than the applied one replaces the
// graph, so the view always reflects the latest edit that succeeded.
type Session struct {
	layout    layout.Layout
	logger    *slog.Logger
	cache     *lru.Cache[string, *built]
	cacheSize int
	buildOpts []graph.BuildOption

	generation atomic.Uint64

	mu       sync.Mutex
	frontend Frontend
	depth    int
	applied  uint64
	full     *graph.Graph
	diags    []scope.Diagnostic
	text     string
	excluded graph.KindSet
	// version changes whenever the view would: a new graph, depth or
	// exclusion set. Render uses it to detect stale layouts.
	version uint64
}

// built is a cached pipeline result. Both fields are shared and must not
// be modified.
type built struct {
	graph *graph.Graph
	diags []scope.Diagnostic
}

// Option configures a Session.
type Option func(*Session)

// WithDepth sets the initial detail level. Values below 1 are raised to 1.
func WithDepth(depth int) Option {
	return func(s *Session) {
		s.depth = max(depth, 1)
	}
}

// WithCacheSize sets how many built graphs are kept, keyed by frontend and
// source text. Zero or less disables the cache.
func WithCacheSize(n int) Option {
	return func(s *Session) {
		s.cacheSize = n
	}
}

// WithLayout replaces the default layered layout.
func WithLayout(l layout.Layout) Option {
	return func(s *Session) {
		if l != nil {
			s.layout = l
		}
	}
}

// WithLogger sets the logger for pipeline events.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithBuildOptions passes options to the graph builder.
func WithBuildOptions(opts ...graph.BuildOption) Option {
	return func(s *Session) {
		s.buildOpts = append(s.buildOpts, opts...)
	}
}

// WithExcluded sets the initially hidden kinds.
func WithExcluded(kinds ...scope.Kind) Option {
	return func(s *Session) {
		s.excluded = graph.NewKindSet(kinds...)
	}
}

// NewSession creates a Session. fe may be nil; until SetFrontend installs
// one, Edit fails with ErrParserUnavailable and the view stays empty.
func NewSession(fe Frontend, opts ...Option) (*Session, error) {
	s := &Session{
		frontend:  fe,
		layout:    layout.NewLayered(),
		logger:    slog.Default(),
		cacheSize: DefaultCacheSize,
		depth:     DefaultDepth,
		full:      &graph.Graph{Nodes: []graph.Node{}, Edges: []graph.Edge{}},
		excluded:  graph.KindSet{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cacheSize > 0 {
		c, err := lru.New[string, *built](s.cacheSize)
		if err != nil {
			return nil, fmt.Errorf("scopeview: create cache: %w", err)
		}
		s.cache = c
	}
	return s, nil
}

// SetFrontend installs or replaces the parser frontend. The current graph
// is kept until the next successful Edit.
func (s *Session) SetFrontend(fe Frontend) {
	s.mu.Lock()
	s.frontend = fe
	s.mu.Unlock()
	if fe != nil {
		s.logger.Info("session.frontend", "name", fe.Name())
	}
}

// Edit parses text and, unless a newer edit was applied in the meantime,
// replaces the graph. On ErrParse or ErrParserUnavailable the previous
// graph stays in place. ErrStale reports an edit that was overtaken by a
// newer one and dropped, whether it built or failed.
func (s *Session) Edit(ctx context.Context, text string) error {
	gen := s.generation.Add(1)

	s.mu.Lock()
	fe := s.frontend
	s.mu.Unlock()
	if fe == nil {
		s.logger.Warn("session.no_frontend", "generation", gen)
		return ErrParserUnavailable
	}

	b, err := s.build(ctx, fe, text)
	if err != nil {
		if latest := s.generation.Load(); gen < latest {
			s.logger.Debug("session.stale_edit", "generation", gen, "latest", latest, "err", err)
			return ErrStale
		}
		s.logger.Warn("session.parse_failed", "generation", gen, "frontend", fe.Name(), "err", err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen <= s.applied {
		s.logger.Debug("session.stale_edit", "generation", gen, "applied", s.applied)
		return ErrStale
	}
	s.applied = gen
	s.full = b.graph
	s.diags = b.diags
	s.text = text
	s.version++
	s.logger.Info("session.applied", "generation", gen, "nodes", b.graph.Len(), "diagnostics", len(b.diags))
	return nil
}

func (s *Session) build(ctx context.Context, fe Frontend, text string) (*built, error) {
	key := sourceKey(fe.Name(), text)
	if s.cache != nil {
		if b, ok := s.cache.Get(key); ok {
			return b, nil
		}
	}

	src, err := fe.Parse(ctx, []byte(text))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	res, err := capture.Normalize(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}

	g, buildDiags := graph.Build(res.Constructs, s.buildOpts...)
	diags := append(res.Diagnostics, buildDiags...)
	for _, d := range diags {
		s.logger.Warn("session.diagnostic", "code", d.Code, "message", d.Message)
	}

	b := &built{graph: g, diags: diags}
	if s.cache != nil {
		s.cache.Add(key, b)
	}
	return b, nil
}

// Generation returns the generation of the applied graph, 0 before the
// first successful edit.
func (s *Session) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applied
}

// Text returns the source of the applied graph.
func (s *Session) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text
}

// Graph returns the full, unfiltered graph. It must not be modified.
func (s *Session) Graph() *graph.Graph {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.full
}

// Diagnostics returns the diagnostics of the applied build.
func (s *Session) Diagnostics() []scope.Diagnostic {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]scope.Diagnostic(nil), s.diags...)
}

// View returns the applied graph filtered by detail level and exclusions.
func (s *Session) View() *graph.Graph {
	s.mu.Lock()
	defer s.mu.Unlock()
	return graph.Filter(s.full, s.depth, s.excluded)
}

// Depth returns the current detail level.
func (s *Session) Depth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.depth
}

// SetDepth sets the detail level, clamped to at least 1, and returns it.
func (s *Session) SetDepth(depth int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setDepthLocked(depth)
}

// IncreaseDetail shows one more level and returns the new depth.
func (s *Session) IncreaseDetail() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setDepthLocked(s.depth + 1)
}

// DecreaseDetail shows one level less, never below 1, and returns the new
// depth.
func (s *Session) DecreaseDetail() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setDepthLocked(s.depth - 1)
}

func (s *Session) setDepthLocked(depth int) int {
	depth = max(depth, 1)
	if depth != s.depth {
		s.depth = depth
		s.version++
	}
	return s.depth
}

// Excluded returns the hidden kinds.
func (s *Session) Excluded() []scope.Kind {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.excluded.Sorted()
}

// SetKindVisible shows or hides one kind.
func (s *Session) SetKindVisible(kind scope.Kind, visible bool) error {
	if !kind.Valid() {
		return fmt.Errorf("scopeview: unknown kind %q", kind)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.excluded.Has(kind) == !visible {
		return nil
	}
	next := s.excluded.Clone()
	if visible {
		delete(next, kind)
	} else {
		next[kind] = true
	}
	s.excluded = next
	s.version++
	return nil
}

// SetExcluded replaces the set of hidden kinds.
func (s *Session) SetExcluded(kinds ...scope.Kind) error {
	for _, k := range kinds {
		if !k.Valid() {
			return fmt.Errorf("scopeview: unknown kind %q", k)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.excluded = graph.NewKindSet(kinds...)
	s.version++
	return nil
}

// Rendered is a laid-out view. Version orders renders of one Session: a
// larger Version reflects a later graph or view change.
type Rendered struct {
	Generation  uint64              `json:"generation"`
	Version     uint64              `json:"version"`
	Depth       int                 `json:"depth"`
	MaxDepth    int                 `json:"maxDepth"`
	Excluded    []scope.Kind        `json:"excluded"`
	Nodes       []layout.Positioned `json:"nodes"`
	Edges       []graph.Edge        `json:"edges"`
	Diagnostics []scope.Diagnostic  `json:"diagnostics"`
}

// Render lays out the current view. The layout runs without holding the
// Session lock; if the view changed while it ran, Render returns ErrStale.
func (s *Session) Render(ctx context.Context) (*Rendered, error) {
	s.mu.Lock()
	view := graph.Filter(s.full, s.depth, s.excluded)
	version := s.version
	r := &Rendered{
		Generation:  s.applied,
		Version:     s.version,
		Depth:       s.depth,
		MaxDepth:    s.full.MaxDepth(),
		Excluded:    s.excluded.Sorted(),
		Edges:       view.Edges,
		Diagnostics: append([]scope.Diagnostic{}, s.diags...),
	}
	s.mu.Unlock()

	nodes, err := s.layout.Layout(ctx, view.Nodes, view.Edges)
	if err != nil {
		return nil, fmt.Errorf("scopeview: layout: %w", err)
	}
	r.Nodes = nodes

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.version != version {
		return nil, ErrStale
	}
	return r, nil
}

// RenderAsync renders in the background. The channel yields the result
// only if it is still current when the layout finishes and is closed
// either way.
func (s *Session) RenderAsync(ctx context.Context) <-chan *Rendered {
	out := make(chan *Rendered, 1)
	go func() {
		defer close(out)
		r, err := s.Render(ctx)
		switch {
		case err == nil:
			out <- r
		case errors.Is(err, ErrStale):
			s.logger.Debug("session.stale_render")
		default:
			s.logger.Warn("session.render_failed", "err", err)
		}
	}()
	return out
}
