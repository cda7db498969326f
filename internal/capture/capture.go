// Package capture normalizes the output of a parser frontend into a flat
// list of scope.Construct values. Frontends deliver one of two shapes:
// query-match captures from an incremental parser (QueryCaptures) or a
// stream of visitor callbacks from a tree-walking parser
// (VisitorCallbacks). The graph builder only ever sees the normalized list.
package capture

import (
	"github.com/jward/scopeview/internal/scope"
)

// Span is a half-open byte interval reported by a parser.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Source is the tagged variant of upstream capture shapes. It is
// implemented only by QueryCaptures and VisitorCallbacks.
type Source interface {
	shape() string
}

// QueryCaptures is the result of running capture queries against a
// syntax tree: one map of capture name to captured node per match.
type QueryCaptures struct {
	Matches []QueryMatch
}

func (QueryCaptures) shape() string { return "query" }

// QueryMatch is a single query match.
type QueryMatch struct {
	Captures map[string]CaptureNode
}

// CaptureNode is a captured syntax node. Span is nil when the parser could
// not supply a range.
type CaptureNode struct {
	Text string
	Span *Span
}

// Handler keys understood by VisitorCallbacks.
const (
	HandlerContract = "ContractDefinition"
	HandlerFunction = "FunctionDefinition"
	HandlerVariable = "VariableDeclaration"
)

// Handlers maps a construct handler key to its callback.
type Handlers map[string]func(VisitNode)

// VisitNode is the node a visitor passes to a handler. A nil StateVariable
// leaves the variable kind to be inferred from the enclosing construct.
type VisitNode struct {
	Span          *Span
	Name          *string
	StateVariable *bool
}

// VisitorCallbacks wraps a tree walk. Visit must invoke the handlers in
// source order and return any walk error.
type VisitorCallbacks struct {
	Visit func(Handlers) error
}

func (VisitorCallbacks) shape() string { return "visitor" }

// Shape returns "query" or "visitor" for a Source.
func Shape(src Source) string {
	if src == nil {
		return ""
	}
	return src.shape()
}

// Result is the outcome of Normalize.
type Result struct {
	Constructs  []scope.Construct
	Diagnostics []scope.Diagnostic
}

// tagKinds maps capture tags to construct kinds. The "variable" tag is
// resolved by inferVariableKinds.
var tagKinds = map[string]scope.Kind{
	"contract":       scope.KindContract,
	"type":           scope.KindContract,
	"class":          scope.KindContract,
	"struct":         scope.KindContract,
	"interface":      scope.KindContract,
	"function":       scope.KindFunction,
	"method":         scope.KindFunction,
	"constructor":    scope.KindFunction,
	"callable":       scope.KindFunction,
	"state_variable": scope.KindStateVariable,
	"field":          scope.KindStateVariable,
	"local_variable": scope.KindLocalVariable,
}

// tagPriority fixes which tag wins when a match carries several.
var tagPriority = []string{
	"contract", "type", "class", "struct", "interface",
	"function", "method", "constructor", "callable",
	"state_variable", "field", "local_variable", "variable",
}

// NameCapture is the capture tag holding a construct's name.
const NameCapture = "name"

// variableTag marks captures whose kind depends on the enclosing construct.
const variableTag = "variable"
