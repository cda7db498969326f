package layout

import (
	"context"
	"slices"

	"github.com/jward/scopeview/internal/graph"
	"github.com/jward/scopeview/internal/scope"
)

// Default spacing between neighbouring nodes and between ranks.
const (
	DefaultNodeSep = 24
	DefaultRankSep = 64
)

// Layered is a top-down tree layout: a node's rank is its ID depth, leaves
// take consecutive horizontal slots in input order whatever the order of
// edges, and every parent is centred over its children. Nodes whose parent is not in the view start
// a new tree.
type Layered struct {
	nodeSep float64
	rankSep float64
}

// LayeredOption configures a Layered layout.
type LayeredOption func(*Layered)

// WithNodeSep sets the horizontal gap between slots.
func WithNodeSep(sep float64) LayeredOption {
	return func(l *Layered) {
		l.nodeSep = sep
	}
}

// WithRankSep sets the vertical gap between ranks.
func WithRankSep(sep float64) LayeredOption {
	return func(l *Layered) {
		l.rankSep = sep
	}
}

// NewLayered returns a layered layout.
func NewLayered(opts ...LayeredOption) *Layered {
	l := &Layered{nodeSep: DefaultNodeSep, rankSep: DefaultRankSep}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Layout implements Layout.
func (l *Layered) Layout(ctx context.Context, nodes []graph.Node, edges []graph.Edge) ([]Positioned, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	index := make(map[scope.ID]int, len(nodes))
	slotW, rankH := 0.0, 0.0
	minDepth := -1
	for i, n := range nodes {
		index[n.ID] = i
		slotW = max(slotW, n.Width)
		rankH = max(rankH, n.Height)
		if d := n.ID.Depth(); minDepth < 0 || d < minDepth {
			minDepth = d
		}
	}
	slotW += l.nodeSep
	rankH += l.rankSep

	children := make(map[scope.ID][]int, len(nodes))
	hasParent := make([]bool, len(nodes))
	for _, e := range edges {
		src, okS := index[e.Source]
		dst, okT := index[e.Target]
		if !okS || !okT || hasParent[dst] || src == dst {
			continue
		}
		children[e.Source] = append(children[e.Source], dst)
		hasParent[dst] = true
	}
	// Siblings keep input order, which for a built graph is source order.
	for _, cs := range children {
		slices.Sort(cs)
	}

	out := make([]Positioned, len(nodes))
	placed := make([]bool, len(nodes))
	slot := 0

	var place func(i int) float64
	place = func(i int) float64 {
		placed[i] = true
		n := nodes[i]
		var x float64
		var first, last float64
		count := 0
		for _, c := range children[n.ID] {
			if placed[c] {
				continue
			}
			cx := place(c)
			if count == 0 {
				first = cx
			}
			last = cx
			count++
		}
		if count == 0 {
			x = float64(slot) * slotW
			slot++
		} else {
			x = (first + last) / 2
		}
		out[i] = Positioned{
			Node:     n,
			Position: Position{X: x, Y: float64(n.ID.Depth()-minDepth) * rankH},
		}
		return x
	}

	for i := range nodes {
		if hasParent[i] || placed[i] {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		place(i)
	}
	// Anything left sits on a cycle; edges from a Graph never form one.
	for i := range nodes {
		if !placed[i] {
			place(i)
		}
	}
	return out, nil
}
