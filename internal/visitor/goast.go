// Package visitor provides a parser frontend for Go source that walks the
// go/ast syntax tree and reports constructs through capture handler
// callbacks.
package visitor

import (
	"context"
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"

	"github.com/jward/scopeview/internal/capture"
)

// ErrSyntax is returned by a strict GoAST frontend when go/parser reports
// errors.
var ErrSyntax = errors.New("visitor: source has syntax errors")

// GoAST maps Go declarations onto construct kinds: named types are
// contracts, functions, methods and function literals are functions,
// struct fields are state variables and every other declared variable or
// constant is a local variable. Variables are reported on their
// identifier, matching the tree-sitter Go query.
type GoAST struct {
	tolerant bool
}

// Option configures a GoAST frontend.
type Option func(*GoAST)

// WithTolerant walks the partial tree go/parser returns for malformed
// source instead of failing.
func WithTolerant(tolerant bool) Option {
	return func(g *GoAST) {
		g.tolerant = tolerant
	}
}

// NewGoAST returns a go/ast frontend.
func NewGoAST(opts ...Option) *GoAST {
	g := &GoAST{}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Name identifies the frontend in cache keys and logs.
func (g *GoAST) Name() string {
	return "goast"
}

// Language returns the only language this frontend understands.
func (g *GoAST) Language() string {
	return "go"
}

// Parse parses src eagerly and returns callbacks that walk the result.
func (g *GoAST) Parse(ctx context.Context, src []byte) (capture.Source, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "source.go", src, parser.SkipObjectResolution)
	if err != nil && (!g.tolerant || file == nil) {
		return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
	}

	return capture.VisitorCallbacks{
		Visit: func(h capture.Handlers) error {
			w := &walker{fset: fset, handlers: h, skip: make(map[ast.Node]bool)}
			ast.Inspect(file, w.visit)
			return nil
		},
	}, nil
}

type walker struct {
	fset     *token.FileSet
	handlers capture.Handlers
	// skip holds := statements whose names are not declarations in the
	// tree-sitter sense (type switch guards, select receives).
	skip map[ast.Node]bool
}

func (w *walker) visit(n ast.Node) bool {
	switch n := n.(type) {
	case *ast.TypeSpec:
		w.call(capture.HandlerContract, n, &n.Name.Name, nil)
	case *ast.FuncDecl:
		w.call(capture.HandlerFunction, n, &n.Name.Name, nil)
	case *ast.FuncLit:
		w.call(capture.HandlerFunction, n, nil, nil)
	case *ast.StructType:
		if n.Fields != nil {
			for _, f := range n.Fields.List {
				w.idents(f.Names, true)
			}
		}
	case *ast.ValueSpec:
		w.idents(n.Names, false)
	case *ast.TypeSwitchStmt:
		if n.Assign != nil {
			w.skip[n.Assign] = true
		}
	case *ast.CommClause:
		if n.Comm != nil {
			w.skip[n.Comm] = true
		}
	case *ast.AssignStmt:
		if n.Tok != token.DEFINE || w.skip[n] {
			return true
		}
		for _, lhs := range n.Lhs {
			if id, ok := lhs.(*ast.Ident); ok {
				w.idents([]*ast.Ident{id}, false)
			}
		}
	}
	return true
}

func (w *walker) idents(ids []*ast.Ident, state bool) {
	for _, id := range ids {
		s := state
		w.call(capture.HandlerVariable, id, &id.Name, &s)
	}
}

func (w *walker) call(key string, n ast.Node, name *string, state *bool) {
	h, ok := w.handlers[key]
	if !ok {
		return
	}
	h(capture.VisitNode{Span: w.span(n), Name: name, StateVariable: state})
}

// span converts a node's extent to a half-open byte interval. Nodes from a
// partial parse may lack positions; they get a nil span.
func (w *walker) span(n ast.Node) *capture.Span {
	start, end := n.Pos(), n.End()
	if !start.IsValid() || !end.IsValid() {
		return nil
	}
	return &capture.Span{
		Start: w.fset.Position(start).Offset,
		End:   w.fset.Position(end).Offset,
	}
}
