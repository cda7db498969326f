// Package layout assigns positions to the nodes of a scope graph view.
package layout

import (
	"context"

	"github.com/jward/scopeview/internal/graph"
)

// Position is a node's top-left corner.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Positioned is a graph node placed by a Layout.
type Positioned struct {
	graph.Node
	Position Position `json:"position"`
}

// Layout places a set of nodes. Implementations may be slow; they must
// honor ctx cancellation and must not modify their inputs.
type Layout interface {
	Layout(ctx context.Context, nodes []graph.Node, edges []graph.Edge) ([]Positioned, error)
}

// Func adapts a function to the Layout interface.
type Func func(ctx context.Context, nodes []graph.Node, edges []graph.Edge) ([]Positioned, error)

// Layout calls f.
func (f Func) Layout(ctx context.Context, nodes []graph.Node, edges []graph.Edge) ([]Positioned, error) {
	return f(ctx, nodes, edges)
}
