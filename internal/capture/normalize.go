package capture

import (
	"errors"
	"fmt"

	"github.com/jward/scopeview/internal/scope"
)

// ErrUnknownShape is returned for a nil Source or a Visit-less visitor.
var ErrUnknownShape = errors.New("capture: unknown source shape")

// pending is a construct whose variable kind may still need inference.
type pending struct {
	construct scope.Construct
	inferred  bool
}

// Normalize converts a frontend Source into constructs in emission order.
// Constructs without a usable range are dropped and reported as
// diagnostics. The only error is a failed visitor walk or an unknown shape.
func Normalize(src Source) (Result, error) {
	var (
		items []pending
		diags []scope.Diagnostic
	)

	switch s := src.(type) {
	case QueryCaptures:
		items, diags = normalizeQuery(s)
	case *QueryCaptures:
		if s == nil {
			return Result{}, ErrUnknownShape
		}
		items, diags = normalizeQuery(*s)
	case VisitorCallbacks:
		var err error
		items, diags, err = normalizeVisitor(s)
		if err != nil {
			return Result{}, err
		}
	case *VisitorCallbacks:
		if s == nil {
			return Result{}, ErrUnknownShape
		}
		var err error
		items, diags, err = normalizeVisitor(*s)
		if err != nil {
			return Result{}, err
		}
	default:
		return Result{}, ErrUnknownShape
	}

	return Result{
		Constructs:  inferVariableKinds(items),
		Diagnostics: diags,
	}, nil
}

func normalizeQuery(qc QueryCaptures) ([]pending, []scope.Diagnostic) {
	var (
		items []pending
		diags []scope.Diagnostic
	)
	for i, m := range qc.Matches {
		tag, node, ok := kindCapture(m)
		if !ok {
			diags = append(diags, scope.Diagnostic{
				Code:    scope.DiagUnknownKind,
				Message: fmt.Sprintf("match %d has no construct capture", i),
			})
			continue
		}

		var name *string
		if n, ok := m.Captures[NameCapture]; ok && n.Text != "" {
			text := n.Text
			name = &text
		}

		r, diag, ok := spanToRange(node.Span, name, tag)
		if !ok {
			diags = append(diags, diag)
			continue
		}
		items = append(items, pending{
			construct: scope.Construct{Kind: tagKinds[tag], Name: name, Range: r},
			inferred:  tag == variableTag,
		})
	}
	return items, diags
}

// kindCapture picks the construct capture of a match by tag priority.
func kindCapture(m QueryMatch) (string, CaptureNode, bool) {
	for _, tag := range tagPriority {
		if n, ok := m.Captures[tag]; ok {
			return tag, n, true
		}
	}
	return "", CaptureNode{}, false
}

func normalizeVisitor(vc VisitorCallbacks) (items []pending, diags []scope.Diagnostic, err error) {
	if vc.Visit == nil {
		return nil, nil, ErrUnknownShape
	}

	emit := func(kind scope.Kind, inferred bool, tag string) func(VisitNode) {
		return func(n VisitNode) {
			r, diag, ok := spanToRange(n.Span, n.Name, tag)
			if !ok {
				diags = append(diags, diag)
				return
			}
			items = append(items, pending{
				construct: scope.Construct{Kind: kind, Name: n.Name, Range: r},
				inferred:  inferred,
			})
		}
	}
	contract := emit(scope.KindContract, false, "contract")
	function := emit(scope.KindFunction, false, "function")
	stateVar := emit(scope.KindStateVariable, false, "state_variable")
	localVar := emit(scope.KindLocalVariable, false, "local_variable")
	inferredVar := emit("", true, variableTag)

	handlers := Handlers{
		HandlerContract: contract,
		HandlerFunction: function,
		HandlerVariable: func(n VisitNode) {
			switch {
			case n.StateVariable == nil:
				inferredVar(n)
			case *n.StateVariable:
				stateVar(n)
			default:
				localVar(n)
			}
		},
	}

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("capture: visitor panicked: %v", p)
		}
	}()
	if err := vc.Visit(handlers); err != nil {
		return nil, nil, fmt.Errorf("capture: visit: %w", err)
	}
	return items, diags, nil
}

// spanToRange validates a parser span. The label is the raw name; the
// builder substitutes placeholders later.
func spanToRange(s *Span, name *string, tag string) (scope.Range, scope.Diagnostic, bool) {
	label := ""
	if name != nil {
		label = *name
	}
	if s == nil {
		return scope.Range{}, scope.Diagnostic{
			Code:    scope.DiagMissingRange,
			Message: fmt.Sprintf("%s %q has no range", tag, label),
		}, false
	}
	r := scope.Range{Start: s.Start, End: s.End, Label: label}
	if !r.Valid() {
		bad := r
		return scope.Range{}, scope.Diagnostic{
			Code:    scope.DiagInvalidRange,
			Message: fmt.Sprintf("%s %q has an invalid range", tag, label),
			Range:   &bad,
		}, false
	}
	return r, scope.Diagnostic{}, true
}

// inferVariableKinds resolves variables whose kind depends on context: a
// variable whose innermost enclosing contract-or-function is a contract is
// a state variable; any other variable is local.
func inferVariableKinds(items []pending) []scope.Construct {
	out := make([]scope.Construct, len(items))
	for i, it := range items {
		out[i] = it.construct
		if !it.inferred {
			continue
		}
		out[i].Kind = scope.KindLocalVariable
		if owner := innermostOwner(items, i); owner >= 0 && items[owner].construct.Kind == scope.KindContract {
			out[i].Kind = scope.KindStateVariable
		}
	}
	return out
}

// innermostOwner returns the index of the narrowest contract or function
// enclosing items[i], or -1. Among equal spans the later one is nearer.
func innermostOwner(items []pending, i int) int {
	target := items[i].construct.Range
	best := -1
	for j, it := range items {
		if j == i || it.inferred {
			continue
		}
		c := it.construct
		if c.Kind != scope.KindContract && c.Kind != scope.KindFunction {
			continue
		}
		if !c.Range.Encloses(target) {
			continue
		}
		if best < 0 || c.Range.Width() <= items[best].construct.Range.Width() {
			best = j
		}
	}
	return best
}
