package runtime

import (
	"context"
	"errors"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/scopeview/internal/capture"
)

var (
	// ErrUnsupportedLanguage is returned for a language with no grammar or
	// capture query.
	ErrUnsupportedLanguage = errors.New("runtime: unsupported language")

	// ErrSyntax is returned by a strict TreeSitter frontend when the parsed
	// tree contains error nodes.
	ErrSyntax = errors.New("runtime: source has syntax errors")
)

// TreeSitter is a parser frontend that runs a language's capture query over
// a tree-sitter syntax tree. It is safe for concurrent use: every Parse
// call gets its own parser and query cursor.
type TreeSitter struct {
	language string
	lang     *sitter.Language
	pattern  []byte
	tolerant bool
}

// TreeSitterOption configures a TreeSitter frontend.
type TreeSitterOption func(*TreeSitter)

// WithTolerant makes Parse return captures for trees that contain error
// nodes instead of failing with ErrSyntax.
func WithTolerant(tolerant bool) TreeSitterOption {
	return func(t *TreeSitter) {
		t.tolerant = tolerant
	}
}

// WithQuery replaces the built-in capture query for the language.
func WithQuery(pattern string) TreeSitterOption {
	return func(t *TreeSitter) {
		t.pattern = []byte(pattern)
	}
}

// NewTreeSitter returns a frontend for the given language. The capture
// query is compiled once up front so a bad pattern fails here rather than
// on every edit.
func NewTreeSitter(language string, opts ...TreeSitterOption) (*TreeSitter, error) {
	lang, ok := ParserForLanguage(language)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, language)
	}
	t := &TreeSitter{language: language, lang: lang}
	if q, ok := CaptureQuery(language); ok {
		t.pattern = []byte(q)
	}
	for _, opt := range opts {
		opt(t)
	}
	if len(t.pattern) == 0 {
		return nil, fmt.Errorf("%w: no capture query for %q", ErrUnsupportedLanguage, language)
	}

	q, err := sitter.NewQuery(t.pattern, lang)
	if err != nil {
		return nil, fmt.Errorf("runtime: compiling %s capture query: %w", language, err)
	}
	q.Close()
	return t, nil
}

// Name identifies the frontend in cache keys and logs.
func (t *TreeSitter) Name() string {
	return "treesitter:" + t.language
}

// Language returns the canonical language name.
func (t *TreeSitter) Language() string {
	return t.language
}

// Parse parses src and returns one QueryMatch per capture-query match.
func (t *TreeSitter) Parse(ctx context.Context, src []byte) (capture.Source, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(t.lang)

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("runtime: tree-sitter parse failed: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() && !t.tolerant {
		return nil, fmt.Errorf("%w: %s", ErrSyntax, firstError(root))
	}

	q, err := sitter.NewQuery(t.pattern, t.lang)
	if err != nil {
		return nil, fmt.Errorf("runtime: compiling %s capture query: %w", t.language, err)
	}
	defer q.Close()

	return runQuery(q, root, src), nil
}

// runQuery collects every match of q under node. Node text is copied out
// so the result outlives the tree.
func runQuery(q *sitter.Query, node *sitter.Node, src []byte) capture.QueryCaptures {
	cursor := sitter.NewQueryCursor()
	defer cursor.Close()
	cursor.Exec(q, node)

	out := capture.QueryCaptures{Matches: []capture.QueryMatch{}}
	for {
		match, ok := cursor.NextMatch()
		if !ok {
			break
		}
		match = cursor.FilterPredicates(match, src)
		if len(match.Captures) == 0 {
			continue
		}

		m := capture.QueryMatch{Captures: make(map[string]capture.CaptureNode, len(match.Captures))}
		for _, c := range match.Captures {
			m.Captures[q.CaptureNameForId(c.Index)] = captureNode(c.Node, src)
		}
		out.Matches = append(out.Matches, m)
	}
	return out
}

func captureNode(n *sitter.Node, src []byte) capture.CaptureNode {
	return capture.CaptureNode{
		Text: n.Content(src),
		Span: &capture.Span{Start: int(n.StartByte()), End: int(n.EndByte())},
	}
}

// firstError describes the first ERROR or MISSING node in document order.
func firstError(n *sitter.Node) string {
	if n.Type() == "ERROR" || n.IsMissing() {
		p := n.StartPoint()
		return fmt.Sprintf("%s at %d:%d", n.Type(), p.Row+1, p.Column+1)
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c == nil || !c.HasError() && !c.IsMissing() {
			continue
		}
		return firstError(c)
	}
	return "error node"
}
