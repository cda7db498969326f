package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/jward/scopeview"
)

// formatGraphText prints the graph as an indented tree. Nodes whose parent
// is hidden are indented by their own depth.
func formatGraphText(w io.Writer, g CLIGraph) {
	fmt.Fprintf(w, "Language: %s\n", g.Language)
	fmt.Fprintf(w, "Frontend: %s\n", g.Frontend)
	fmt.Fprintf(w, "Depth: %d of %d\n", g.Depth, g.MaxDepth)
	if len(g.Excluded) > 0 {
		kinds := make([]string, len(g.Excluded))
		for i, k := range g.Excluded {
			kinds[i] = string(k)
		}
		fmt.Fprintf(w, "Hidden: %s\n", strings.Join(kinds, ", "))
	}
	fmt.Fprintln(w)

	if len(g.Nodes) == 0 {
		fmt.Fprintln(w, "(no constructs)")
		return
	}

	minDepth := g.Nodes[0].Depth
	for _, n := range g.Nodes {
		minDepth = min(minDepth, n.Depth)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	withPos := g.Nodes[0].X != nil
	if withPos {
		fmt.Fprintln(tw, "NAME\tKIND\tRANGE\tX\tY")
	} else {
		fmt.Fprintln(tw, "NAME\tKIND\tRANGE")
	}
	for _, n := range g.Nodes {
		indent := strings.Repeat("  ", n.Depth-minDepth)
		fmt.Fprintf(tw, "%s%s\t%s\t[%d,%d)", indent, n.Label, n.Kind, n.Start, n.End)
		if withPos && n.X != nil && n.Y != nil {
			fmt.Fprintf(tw, "\t%.0f\t%.0f", *n.X, *n.Y)
		}
		fmt.Fprintln(tw)
	}
	tw.Flush()
}

// formatLanguagesText formats CLILanguage results as aligned columns.
func formatLanguagesText(w io.Writer, langs []CLILanguage) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "LANGUAGE\tEXTENSIONS\tFRONTENDS")
	for _, l := range langs {
		fmt.Fprintf(tw, "%s\t%s\t%s\n",
			l.Language, strings.Join(l.Extensions, " "), strings.Join(l.Frontends, ", "))
	}
	tw.Flush()
}

// formatDiagnosticsText lists diagnostics after the main output.
func formatDiagnosticsText(w io.Writer, diags []scopeview.Diagnostic) {
	if len(diags) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Diagnostics:")
	for _, d := range diags {
		fmt.Fprintf(w, "  %s\n", d)
	}
}

// outputResultText dispatches to the appropriate text formatter based on the
// result type.
func outputResultText(w io.Writer, result CLIResult) error {
	switch v := result.Results.(type) {
	case CLIGraph:
		formatGraphText(w, v)
	case []CLILanguage:
		formatLanguagesText(w, v)
	case nil:
	default:
		return fmt.Errorf("unsupported result type for text format: %T", v)
	}
	formatDiagnosticsText(w, result.Diagnostics)
	return nil
}

// Output destinations, replaced in tests.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// outputResult marshals a CLIResult to stdout in the selected format.
func outputResult(result CLIResult) error {
	if flagFormat == "text" {
		return outputResultText(stdout, result)
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// outputError writes an error in the selected format and returns it so RunE
// can propagate it to Cobra. In JSON mode the error is written to stdout as a
// CLIResult envelope. In text mode it goes to stderr.
func outputError(command string, err error) error {
	errorHandled = true
	if flagFormat == "text" {
		fmt.Fprintf(stderr, "Error: %s\n", err)
		return err
	}
	result := CLIResult{
		Command: command,
		Error:   err.Error(),
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(result)
	return err
}

// validFormats lists accepted values for --format.
var validFormats = []string{"json", "text"}

// validateFormat checks that the --format flag value is recognized.
func validateFormat(format string) error {
	for _, f := range validFormats {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("invalid format %q: must be %s", format, strings.Join(validFormats, " or "))
}
