package main

import (
	"github.com/jward/scopeview"
)

// CLIResult is the top-level JSON envelope for all commands.
type CLIResult struct {
	Command     string                 `json:"command"`
	Results     any                    `json:"results"`
	Diagnostics []scopeview.Diagnostic `json:"diagnostics,omitempty"`
	Error       string                 `json:"error,omitempty"`
}

// CLIGraph is the result of build.
type CLIGraph struct {
	Language string           `json:"language"`
	Frontend string           `json:"frontend"`
	Depth    int              `json:"depth"`
	MaxDepth int              `json:"max_depth"`
	Excluded []scopeview.Kind `json:"excluded"`
	Nodes    []CLINode        `json:"nodes"`
	Edges    []CLIEdge        `json:"edges"`
}

// CLINode is a JSON-friendly graph node. X and Y are set with --layout.
type CLINode struct {
	ID    string   `json:"id"`
	Label string   `json:"label"`
	Kind  string   `json:"kind"`
	Depth int      `json:"depth"`
	Start int      `json:"start"`
	End   int      `json:"end"`
	X     *float64 `json:"x,omitempty"`
	Y     *float64 `json:"y,omitempty"`
}

// CLIEdge links a parent node to a child.
type CLIEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// CLILanguage describes one supported language.
type CLILanguage struct {
	Language      string   `json:"language"`
	Extensions    []string `json:"extensions"`
	Frontends     []string `json:"frontends"`
	BundledScript bool     `json:"bundled_script"`
}

// nodeToCLI converts a graph node to a CLINode.
func nodeToCLI(n scopeview.Node) CLINode {
	return CLINode{
		ID:    string(n.ID),
		Label: n.Label,
		Kind:  string(n.Kind),
		Depth: n.ID.Depth(),
		Start: n.Payload.Range.Start,
		End:   n.Payload.Range.End,
	}
}

// positionedToCLI converts a laid-out node to a CLINode.
func positionedToCLI(p scopeview.Positioned) CLINode {
	c := nodeToCLI(p.Node)
	x, y := p.Position.X, p.Position.Y
	c.X, c.Y = &x, &y
	return c
}

func edgesToCLI(edges []scopeview.Edge) []CLIEdge {
	out := make([]CLIEdge, len(edges))
	for i, e := range edges {
		out[i] = CLIEdge{Source: string(e.Source), Target: string(e.Target)}
	}
	return out
}
