package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"unsafe"

	"github.com/risor-io/risor/object"
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/scopeview/internal/capture"
)

// sourceStore tracks source bytes and language for each parsed tree.
// node_text and query need to recover source/language from a Node, but
// smacker/go-tree-sitter doesn't expose Node.Tree(). We store mappings
// keyed by root node pointer (obtained via tree.RootNode() at parse time
// and by walking up Parent() at lookup time).
type sourceStore struct {
	mu      sync.RWMutex
	sources map[uintptr][]byte          // root node ptr → source bytes
	langs   map[uintptr]*sitter.Language // root node ptr → language
	trees   []*sitter.Tree
}

func newSourceStore() *sourceStore {
	return &sourceStore{
		sources: make(map[uintptr][]byte),
		langs:   make(map[uintptr]*sitter.Language),
	}
}

func (s *sourceStore) store(tree *sitter.Tree, src []byte, lang *sitter.Language) {
	root := tree.RootNode()
	key := uintptr(unsafe.Pointer(root))
	s.mu.Lock()
	s.sources[key] = src
	s.langs[key] = lang
	s.trees = append(s.trees, tree)
	s.mu.Unlock()
}

// close releases every tree parsed through the store.
func (s *sourceStore) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.trees {
		t.Close()
	}
	s.trees = nil
	s.sources = make(map[uintptr][]byte)
	s.langs = make(map[uintptr]*sitter.Language)
}

// rootOf walks a node up to its root via Parent().
func rootOf(node *sitter.Node) *sitter.Node {
	for node.Parent() != nil {
		node = node.Parent()
	}
	return node
}

func (s *sourceStore) sourceForNode(node *sitter.Node) ([]byte, bool) {
	key := uintptr(unsafe.Pointer(rootOf(node)))
	s.mu.RLock()
	src, ok := s.sources[key]
	s.mu.RUnlock()
	return src, ok
}

func (s *sourceStore) languageForNode(node *sitter.Node) (*sitter.Language, bool) {
	key := uintptr(unsafe.Pointer(rootOf(node)))
	s.mu.RLock()
	lang, ok := s.langs[key]
	s.mu.RUnlock()
	return lang, ok
}

// makeParseSrcFn creates "parse_src".
//
// parse_src(source, language) → *sitter.Tree
func makeParseSrcFn(ss *sourceStore) *object.Builtin {
	return object.NewBuiltin("parse_src", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 2 {
			return object.NewArgsError("parse_src", 2, len(args))
		}

		srcStr, ok := args[0].(*object.String)
		if !ok {
			return object.Errorf("parse_src: source must be a string, got %s", args[0].Type())
		}

		langStr, ok := args[1].(*object.String)
		if !ok {
			return object.Errorf("parse_src: language must be a string, got %s", args[1].Type())
		}

		return parseSource(ctx, ss, []byte(srcStr.Value()), langStr.Value())
	})
}

func parseSource(ctx context.Context, ss *sourceStore, src []byte, langName string) object.Object {
	lang, found := ParserForLanguage(langName)
	if !found {
		return object.Errorf("parse_src: unsupported language %q", langName)
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(lang)

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return object.Errorf("parse_src: tree-sitter parse failed: %v", err)
	}

	ss.store(tree, src, lang)

	proxy, err := object.NewProxy(tree)
	if err != nil {
		return object.Errorf("parse_src: proxy error: %v", err)
	}
	return proxy
}

// nodeArg unwraps a proxied *sitter.Node argument.
func nodeArg(fn string, arg object.Object) (*sitter.Node, *object.Error) {
	proxy, ok := arg.(*object.Proxy)
	if !ok {
		return nil, object.Errorf("%s: expected proxy (Node), got %s", fn, arg.Type())
	}
	node, ok := proxy.Interface().(*sitter.Node)
	if !ok {
		return nil, object.Errorf("%s: expected *sitter.Node, got %T", fn, proxy.Interface())
	}
	return node, nil
}

// makeNodeTextFn creates the "node_text" host function.
//
// node_text(node) → string
//
// Exists because Risor's proxy system cannot convert strings to []byte
// for node.Content([]byte).
func makeNodeTextFn(ss *sourceStore) *object.Builtin {
	return object.NewBuiltin("node_text", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("node_text", 1, len(args))
		}

		node, errObj := nodeArg("node_text", args[0])
		if errObj != nil {
			return errObj
		}

		src, found := ss.sourceForNode(node)
		if !found {
			return object.Errorf("node_text: no source found for node's tree")
		}

		return object.NewString(node.Content(src))
	})
}

// makeQueryFn creates the "query" host function.
//
// query(pattern, node) → []map[string]any
//
// Each map has capture names as keys and proxied Nodes as values.
func makeQueryFn(ss *sourceStore) *object.Builtin {
	return object.NewBuiltin("query", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 2 {
			return object.NewArgsError("query", 2, len(args))
		}

		patternStr, ok := args[0].(*object.String)
		if !ok {
			return object.Errorf("query: pattern must be a string, got %s", args[0].Type())
		}

		node, errObj := nodeArg("query", args[1])
		if errObj != nil {
			return errObj
		}

		lang, found := ss.languageForNode(node)
		if !found {
			return object.Errorf("query: no language found for node's tree")
		}

		src, found := ss.sourceForNode(node)
		if !found {
			return object.Errorf("query: no source found for node's tree")
		}

		q, err := sitter.NewQuery([]byte(patternStr.Value()), lang)
		if err != nil {
			return object.Errorf("query: invalid pattern: %v", err)
		}
		defer q.Close()

		cursor := sitter.NewQueryCursor()
		defer cursor.Close()
		cursor.Exec(q, node)

		results := []object.Object{}
		for {
			match, ok := cursor.NextMatch()
			if !ok {
				break
			}
			match = cursor.FilterPredicates(match, src)

			matchMap := make(map[string]object.Object)
			for _, c := range match.Captures {
				name := q.CaptureNameForId(c.Index)
				nodeP, err := object.NewProxy(c.Node)
				if err != nil {
					return object.Errorf("query: proxy error for capture %q: %v", name, err)
				}
				matchMap[name] = nodeP
			}
			results = append(results, object.NewMap(matchMap))
		}
		return object.NewList(results)
	})
}

// makeNodeChildFn creates "node_child", a nil-safe wrapper for ChildByFieldName
// that returns Risor nil instead of a proxied Go nil pointer.
//
// node_child(node, fieldName) → Node or nil
func makeNodeChildFn() *object.Builtin {
	return object.NewBuiltin("node_child", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 2 {
			return object.NewArgsError("node_child", 2, len(args))
		}

		node, errObj := nodeArg("node_child", args[0])
		if errObj != nil {
			return errObj
		}

		fieldStr, ok := args[1].(*object.String)
		if !ok {
			return object.Errorf("node_child: field must be a string, got %s", args[1].Type())
		}

		child := node.ChildByFieldName(fieldStr.Value())
		if child == nil {
			return object.Nil
		}

		p, err := object.NewProxy(child)
		if err != nil {
			return object.Errorf("node_child: proxy error: %v", err)
		}
		return p
	})
}

// matchCollector accumulates the matches a capture script emits.
type matchCollector struct {
	mu      sync.Mutex
	matches []capture.QueryMatch
}

func (c *matchCollector) add(m capture.QueryMatch) {
	c.mu.Lock()
	c.matches = append(c.matches, m)
	c.mu.Unlock()
}

func (c *matchCollector) result() capture.QueryCaptures {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := capture.QueryCaptures{Matches: make([]capture.QueryMatch, len(c.matches))}
	copy(out.Matches, c.matches)
	return out
}

// makeEmitMatchFn creates "emit_match", the capture script's output.
//
// emit_match(captures) → nil
//
// captures maps a capture tag to either a proxied Node, a string (a name
// with no range), or a map {"text", "start", "end"} for a span the script
// computed itself. Passing a query() result straight through is the
// common case.
func makeEmitMatchFn(ss *sourceStore, out *matchCollector) *object.Builtin {
	return object.NewBuiltin("emit_match", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("emit_match", 1, len(args))
		}

		m, err := extractMap(args[0])
		if err != nil {
			return object.Errorf("emit_match: %v", err)
		}

		match := capture.QueryMatch{Captures: make(map[string]capture.CaptureNode, len(m))}
		for tag, v := range m {
			cn, err := toCaptureNode(ss, v)
			if err != nil {
				return object.Errorf("emit_match: capture %q: %v", tag, err)
			}
			match.Captures[tag] = cn
		}
		out.add(match)
		return object.Nil
	})
}

func toCaptureNode(ss *sourceStore, v object.Object) (capture.CaptureNode, error) {
	switch v := v.(type) {
	case *object.Proxy:
		node, ok := v.Interface().(*sitter.Node)
		if !ok {
			return capture.CaptureNode{}, fmt.Errorf("expected *sitter.Node, got %T", v.Interface())
		}
		src, found := ss.sourceForNode(node)
		if !found {
			return capture.CaptureNode{}, fmt.Errorf("no source found for node's tree")
		}
		return captureNode(node, src), nil
	case *object.String:
		return capture.CaptureNode{Text: v.Value()}, nil
	case *object.Map:
		fields := v.Value()
		cn := capture.CaptureNode{Text: getString(fields, "text")}
		start, okStart := getOptionalInt(fields, "start")
		end, okEnd := getOptionalInt(fields, "end")
		if okStart && okEnd {
			cn.Span = &capture.Span{Start: start, End: end}
		}
		return cn, nil
	default:
		return capture.CaptureNode{}, fmt.Errorf("expected Node, string or map, got %s", v.Type())
	}
}

// logObject provides log.Info/Warn/Error methods for Risor scripts and
// forwards them to slog.
type logObject struct {
	logger *slog.Logger
	script string
}

func (l *logObject) Info(msg string) {
	l.logger.Info("script.log", "script", l.script, "text", msg)
}

func (l *logObject) Warn(msg string) {
	l.logger.Warn("script.log", "script", l.script, "text", msg)
}

func (l *logObject) Error(msg string) {
	l.logger.Error("script.log", "script", l.script, "text", msg)
}
