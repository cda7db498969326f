package scopeview

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"

	"github.com/jward/scopeview/internal/capture"
	"github.com/jward/scopeview/internal/runtime"
	"github.com/jward/scopeview/internal/visitor"
	"github.com/jward/scopeview/scripts"
)

// Frontend turns source text into one of the capture shapes the
// normalizer understands. Name must be stable for a given configuration:
// it keys the graph cache.
type Frontend interface {
	Name() string
	Parse(ctx context.Context, src []byte) (capture.Source, error)
}

// Frontend kinds accepted by NewFrontend.
const (
	FrontendTreeSitter = "treesitter"
	FrontendGoAST      = "goast"
	FrontendScript     = "script"
)

// FrontendKinds lists the accepted frontend kinds.
var FrontendKinds = []string{FrontendTreeSitter, FrontendGoAST, FrontendScript}

// Languages lists the languages the tree-sitter frontend can parse.
func Languages() []string {
	return runtime.Languages()
}

// ScriptLanguages lists the languages with a bundled capture script.
func ScriptLanguages() []string {
	var out []string
	for _, lang := range runtime.Languages() {
		if _, err := fs.Stat(scripts.FS, runtime.CaptureScriptPath(lang)); err == nil {
			out = append(out, lang)
		}
	}
	return out
}

// FrontendConfig selects and configures a frontend.
type FrontendConfig struct {
	// Kind is one of FrontendKinds. Empty means FrontendTreeSitter.
	Kind string
	// Language is a canonical language name such as "go".
	Language string
	// Script is a capture script on disk. Empty selects the bundled
	// script for Language. Only used by FrontendScript.
	Script string
	// Tolerant accepts sources with syntax errors.
	Tolerant bool
	// Logger receives script log output. Nil means slog.Default().
	Logger *slog.Logger
}

// NewFrontend builds the frontend described by cfg. Unknown kinds and
// unsupported languages are reported as ErrParserUnavailable.
func NewFrontend(cfg FrontendConfig) (Frontend, error) {
	switch cfg.Kind {
	case FrontendTreeSitter, "":
		ts, err := runtime.NewTreeSitter(cfg.Language, runtime.WithTolerant(cfg.Tolerant))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrParserUnavailable, err)
		}
		return ts, nil

	case FrontendGoAST:
		if cfg.Language != "" && cfg.Language != "go" {
			return nil, fmt.Errorf("%w: goast frontend only parses go, not %q", ErrParserUnavailable, cfg.Language)
		}
		return visitor.NewGoAST(visitor.WithTolerant(cfg.Tolerant)), nil

	case FrontendScript:
		var opts []runtime.RuntimeOption
		if cfg.Logger != nil {
			opts = append(opts, runtime.WithRuntimeLogger(cfg.Logger))
		}
		var (
			sc  *runtime.Script
			err error
		)
		if cfg.Script == "" {
			opts = append(opts, runtime.WithRuntimeFS(scripts.FS))
			sc, err = runtime.NewScript(cfg.Language, runtime.CaptureScriptPath(cfg.Language), "", opts...)
		} else {
			dir, file := filepath.Split(cfg.Script)
			sc, err = runtime.NewScript(cfg.Language, file, dir, opts...)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrParserUnavailable, err)
		}
		return sc, nil

	default:
		return nil, fmt.Errorf("%w: unknown frontend %q", ErrParserUnavailable, cfg.Kind)
	}
}
