package runtime

import (
	"context"
	"fmt"

	"github.com/jward/scopeview/internal/capture"
)

// Script is a parser frontend backed by a Risor capture script. The script
// sees the edited text as the global "source" and the language name as
// "language", parses it with parse_src, and reports constructs by calling
// emit_match with capture maps tagged like the built-in queries.
//
// A script signals a malformed source by failing, e.g. through assert.
type Script struct {
	language   string
	path       string
	scriptsDir string
	opts       []RuntimeOption
}

// NewScript returns a frontend running the script at path (relative to
// scriptsDir or to the fs.FS given with WithRuntimeFS).
func NewScript(language, path, scriptsDir string, opts ...RuntimeOption) (*Script, error) {
	if _, ok := ParserForLanguage(language); !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, language)
	}
	s := &Script{language: language, path: path, scriptsDir: scriptsDir, opts: opts}

	// Fail early on a missing script rather than on the first edit.
	if _, err := NewRuntime(scriptsDir, opts...).LoadScript(path); err != nil {
		return nil, err
	}
	return s, nil
}

// Name identifies the frontend in cache keys and logs.
func (s *Script) Name() string {
	return "script:" + s.language + ":" + s.path
}

// Language returns the canonical language name.
func (s *Script) Language() string {
	return s.language
}

// Parse runs the capture script against src. Each call gets its own
// Runtime so concurrent edits never share parsed trees.
func (s *Script) Parse(ctx context.Context, src []byte) (capture.Source, error) {
	rt := NewRuntime(s.scriptsDir, s.opts...)
	defer rt.Close()

	out := &matchCollector{}
	err := rt.RunScript(ctx, s.path, map[string]any{
		"source":     string(src),
		"language":   s.language,
		"emit_match": makeEmitMatchFn(rt.sources, out),
	})
	if err != nil {
		return nil, err
	}
	return out.result(), nil
}
