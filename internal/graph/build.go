package graph

import (
	"fmt"
	"sort"

	"github.com/jward/scopeview/internal/scope"
)

// BuildOption configures Build.
type BuildOption func(*buildConfig)

type buildConfig struct {
	width, height float64
	virtualRoot   bool
	rootLabel     string
}

// WithNodeSize sets the width and height given to every node.
func WithNodeSize(width, height float64) BuildOption {
	return func(c *buildConfig) {
		c.width = width
		c.height = height
	}
}

// WithVirtualRoot emits the synthetic root as a node with the empty ID and
// keeps the edges from it to the top-level constructs.
func WithVirtualRoot(label string) BuildOption {
	return func(c *buildConfig) {
		c.virtualRoot = true
		c.rootLabel = label
	}
}

// ancestor is an open scope on the build stack.
type ancestor struct {
	id     scope.ID
	rng    scope.Range
	isRoot bool
	// ordinals counts children per label to discriminate siblings.
	ordinals map[string]int
}

func (a *ancestor) contains(r scope.Range) bool {
	return a.isRoot || a.rng.Encloses(r)
}

func (a *ancestor) nextOrdinal(label string) int {
	if a.ordinals == nil {
		a.ordinals = make(map[string]int)
	}
	n := a.ordinals[label]
	a.ordinals[label] = n + 1
	return n
}

type dedupeKey struct {
	kind       scope.Kind
	label      string
	start, end int
}

// Build reconstructs the nesting of constructs from range containment and
// returns the scope graph. Input order is arbitrary except that, between
// constructs with identical ranges, the earlier one becomes the ancestor.
//
// Constructs are scanned by start ascending, end descending, against a
// stack of open ancestors; each construct is placed under the nearest
// ancestor whose range still encloses it.
func Build(constructs []scope.Construct, opts ...BuildOption) (*Graph, []scope.Diagnostic) {
	cfg := buildConfig{
		width:     DefaultNodeWidth,
		height:    DefaultNodeHeight,
		rootLabel: "root",
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	sorted := make([]scope.Construct, len(constructs))
	copy(sorted, constructs)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].Range, sorted[j].Range
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		return a.End > b.End
	})

	g := &Graph{
		Nodes:       make([]Node, 0, len(sorted)+1),
		Edges:       make([]Edge, 0, len(sorted)),
		virtualRoot: cfg.virtualRoot,
	}
	if cfg.virtualRoot {
		g.Nodes = append(g.Nodes, Node{
			ID:     scope.Root,
			Label:  cfg.rootLabel,
			Width:  cfg.width,
			Height: cfg.height,
		})
	}

	var diags []scope.Diagnostic
	seen := make(map[dedupeKey]bool, len(sorted))
	stack := []*ancestor{{id: scope.Root, isRoot: true}}

	for _, c := range sorted {
		label := c.Label()
		key := dedupeKey{kind: c.Kind, label: label, start: c.Range.Start, end: c.Range.End}
		if seen[key] {
			r := c.Range
			diags = append(diags, scope.Diagnostic{
				Code:    scope.DiagDuplicate,
				Message: fmt.Sprintf("%s %q reported more than once", c.Kind, label),
				Range:   &r,
			})
			continue
		}
		seen[key] = true

		for !stack[len(stack)-1].contains(c.Range) {
			top := stack[len(stack)-1]
			if scope.Containment(top.rng, c.Range) == scope.Ambiguous {
				r := c.Range
				diags = append(diags, scope.Diagnostic{
					Code: scope.DiagAmbiguous,
					Message: fmt.Sprintf("%s %q overlaps %s without nesting; placed beside it",
						c.Kind, label, top.rng),
					Range: &r,
				})
			}
			stack = stack[:len(stack)-1]
		}
		parent := stack[len(stack)-1]

		id := parent.id.Append(label, parent.nextOrdinal(label))
		payload := c
		payload.Range.Label = label

		g.Nodes = append(g.Nodes, Node{
			ID:      id,
			Label:   label,
			Kind:    c.Kind,
			Width:   cfg.width,
			Height:  cfg.height,
			Payload: payload,
		})
		if !parent.isRoot || cfg.virtualRoot {
			g.Edges = append(g.Edges, Edge{Source: parent.id, Target: id})
		}

		// A zero-width range encloses nothing but other zero-width ranges
		// at the same offset, which are siblings rather than children.
		if c.Range.Width() > 0 {
			stack = append(stack, &ancestor{id: id, rng: payload.Range})
		}
	}

	return g, diags
}
