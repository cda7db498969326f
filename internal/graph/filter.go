package graph

import (
	"sort"

	"github.com/jward/scopeview/internal/scope"
)

// KindSet is a set of construct kinds.
type KindSet map[scope.Kind]bool

// NewKindSet returns a set holding kinds.
func NewKindSet(kinds ...scope.Kind) KindSet {
	s := make(KindSet, len(kinds))
	for _, k := range kinds {
		s[k] = true
	}
	return s
}

// ParseKinds builds a KindSet from kind names, rejecting unknown names.
func ParseKinds(names []string) (KindSet, error) {
	s := make(KindSet, len(names))
	for _, n := range names {
		k, err := scope.ParseKind(n)
		if err != nil {
			return nil, err
		}
		s[k] = true
	}
	return s, nil
}

// Has reports whether k is in the set. A nil set is empty.
func (s KindSet) Has(k scope.Kind) bool {
	return s[k]
}

// Clone returns an independent copy.
func (s KindSet) Clone() KindSet {
	out := make(KindSet, len(s))
	for k, v := range s {
		if v {
			out[k] = true
		}
	}
	return out
}

// Sorted returns the kinds in the set in a stable order.
func (s KindSet) Sorted() []scope.Kind {
	out := make([]scope.Kind, 0, len(s))
	for k, v := range s {
		if v {
			out = append(out, k)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Filter returns the view of g holding nodes at most depthLimit segments
// deep whose kind is not excluded, and the edges whose endpoints both
// survive. g is not modified. The virtual root, if present, is always
// kept.
func Filter(g *Graph, depthLimit int, excluded KindSet) *Graph {
	if g == nil {
		return &Graph{Nodes: []Node{}, Edges: []Edge{}}
	}

	kept := make(map[scope.ID]bool, len(g.Nodes))
	view := &Graph{
		Nodes:       make([]Node, 0, len(g.Nodes)),
		Edges:       make([]Edge, 0, len(g.Edges)),
		virtualRoot: g.virtualRoot,
	}
	for _, n := range g.Nodes {
		if n.ID.IsRoot() {
			kept[n.ID] = true
			view.Nodes = append(view.Nodes, n)
			continue
		}
		if n.ID.Depth() > depthLimit || excluded.Has(n.Kind) {
			continue
		}
		kept[n.ID] = true
		view.Nodes = append(view.Nodes, n)
	}
	for _, e := range g.Edges {
		if kept[e.Source] && kept[e.Target] {
			view.Edges = append(view.Edges, e)
		}
	}
	return view
}
