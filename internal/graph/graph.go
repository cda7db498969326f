// Package graph builds the scope graph of a source text from its
// normalized constructs and derives filtered views of it.
package graph

import (
	"github.com/jward/scopeview/internal/scope"
)

// Default node size handed to layout.
const (
	DefaultNodeWidth  = 172
	DefaultNodeHeight = 36
)

// Node is one construct in the scope graph.
type Node struct {
	ID      scope.ID        `json:"id"`
	Label   string          `json:"label"`
	Kind    scope.Kind      `json:"type"`
	Width   float64         `json:"width"`
	Height  float64         `json:"height"`
	Payload scope.Construct `json:"data"`
}

// Edge links a parent construct to a direct child.
type Edge struct {
	Source scope.ID `json:"source"`
	Target scope.ID `json:"target"`
}

// Graph is an immutable scope graph. Callers must not modify the slices of
// a Graph they did not build; Filter returns fresh slices.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`

	// virtualRoot is set when the synthetic root was emitted as a node.
	virtualRoot bool
}

// HasVirtualRoot reports whether the graph carries a root node.
func (g *Graph) HasVirtualRoot() bool {
	return g != nil && g.virtualRoot
}

// Node returns the node with the given ID.
func (g *Graph) Node(id scope.ID) (Node, bool) {
	if g == nil {
		return Node{}, false
	}
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Children returns the direct children of id in build order. Passing
// scope.Root returns the top-level constructs.
func (g *Graph) Children(id scope.ID) []Node {
	if g == nil {
		return nil
	}
	var out []Node
	for _, n := range g.Nodes {
		if id.IsParentOf(n.ID) {
			out = append(out, n)
		}
	}
	return out
}

// MaxDepth returns the largest ID depth in the graph.
func (g *Graph) MaxDepth() int {
	if g == nil {
		return 0
	}
	deepest := 0
	for _, n := range g.Nodes {
		if d := n.ID.Depth(); d > deepest {
			deepest = d
		}
	}
	return deepest
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	if g == nil {
		return 0
	}
	return len(g.Nodes)
}

// KindCounts tallies nodes per kind.
func (g *Graph) KindCounts() map[scope.Kind]int {
	counts := make(map[scope.Kind]int)
	if g == nil {
		return counts
	}
	for _, n := range g.Nodes {
		if n.ID.IsRoot() {
			continue
		}
		counts[n.Kind]++
	}
	return counts
}
