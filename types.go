package scopeview

import (
	"github.com/jward/scopeview/internal/graph"
	"github.com/jward/scopeview/internal/layout"
	"github.com/jward/scopeview/internal/scope"
)

// Public type aliases for the internal model types used in the Session API.
// These are Go type aliases (=), identical to the internal types at compile
// time. External consumers use these names; no conversion is needed.

type Graph = graph.Graph
type Node = graph.Node
type Edge = graph.Edge
type KindSet = graph.KindSet
type Positioned = layout.Positioned
type Position = layout.Position
type Kind = scope.Kind
type ID = scope.ID
type Construct = scope.Construct
type Diagnostic = scope.Diagnostic

// Construct kinds.
const (
	KindContract      = scope.KindContract
	KindFunction      = scope.KindFunction
	KindStateVariable = scope.KindStateVariable
	KindLocalVariable = scope.KindLocalVariable
)
