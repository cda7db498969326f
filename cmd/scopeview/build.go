package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jward/scopeview"
	"github.com/jward/scopeview/internal/graph"
	"github.com/jward/scopeview/internal/runtime"
)

var (
	flagFrontend    string
	flagLanguage    string
	flagScript      string
	flagDepth       int
	flagExclude     string
	flagVirtualRoot bool
	flagLayout      bool
	flagTolerant    bool
)

var buildCmd = &cobra.Command{
	Use:   "build <file|->",
	Short: "Build the scope graph of a source file",
	Long: "Parses a file (or stdin with -) and prints its scope graph filtered by detail level and kind. " +
		"The language is taken from the file extension unless --language is given.",
	Args: cobra.ExactArgs(1),
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringVar(&flagFrontend, "frontend", "", "parser frontend: treesitter|goast|script")
	buildCmd.Flags().StringVar(&flagLanguage, "language", "", "source language (default: from extension, then config)")
	buildCmd.Flags().StringVar(&flagScript, "script", "", "capture script for the script frontend (default: bundled)")
	buildCmd.Flags().IntVar(&flagDepth, "depth", 0, "detail level, the maximum ID depth shown (default: config)")
	buildCmd.Flags().StringVar(&flagExclude, "exclude", "", "comma-separated kinds to hide (e.g. localVariable,stateVariable)")
	buildCmd.Flags().BoolVar(&flagVirtualRoot, "virtual-root", false, "emit a root node named after the file")
	buildCmd.Flags().BoolVar(&flagLayout, "layout", false, "include layout positions")
	buildCmd.Flags().BoolVar(&flagTolerant, "tolerant", false, "accept sources with syntax errors")
}

func runBuild(cmd *cobra.Command, args []string) error {
	path := args[0]
	src, err := readSource(cmd.InOrStdin(), path)
	if err != nil {
		return outputError("build", err)
	}

	fcfg := frontendConfig(cmd, path)
	fe, err := scopeview.NewFrontend(fcfg)
	if err != nil {
		return outputError("build", err)
	}

	opts := []scopeview.Option{
		scopeview.WithDepth(pick(cmd, "depth", flagDepth, cfg.Depth)),
		scopeview.WithCacheSize(0),
		scopeview.WithLogger(slog.Default()),
	}
	if flagExclude != "" {
		kinds, err := graph.ParseKinds(splitList(flagExclude))
		if err != nil {
			return outputError("build", err)
		}
		opts = append(opts, scopeview.WithExcluded(kinds.Sorted()...))
	}
	if flagVirtualRoot {
		label := filepath.Base(path)
		if path == "-" {
			label = "stdin"
		}
		opts = append(opts, scopeview.WithBuildOptions(graph.WithVirtualRoot(label)))
	}

	sess, err := scopeview.NewSession(fe, opts...)
	if err != nil {
		return outputError("build", err)
	}
	ctx := context.Background()
	if err := sess.Edit(ctx, string(src)); err != nil {
		return outputError("build", err)
	}

	result := CLIGraph{
		Language: fcfg.Language,
		Frontend: fe.Name(),
		Depth:    sess.Depth(),
		MaxDepth: sess.Graph().MaxDepth(),
		Excluded: sess.Excluded(),
	}
	if flagLayout {
		r, err := sess.Render(ctx)
		if err != nil {
			return outputError("build", err)
		}
		result.Nodes = make([]CLINode, len(r.Nodes))
		for i, p := range r.Nodes {
			result.Nodes[i] = positionedToCLI(p)
		}
		result.Edges = edgesToCLI(r.Edges)
	} else {
		view := sess.View()
		result.Nodes = make([]CLINode, len(view.Nodes))
		for i, n := range view.Nodes {
			result.Nodes[i] = nodeToCLI(n)
		}
		result.Edges = edgesToCLI(view.Edges)
	}

	return outputResult(CLIResult{
		Command:     "build",
		Results:     result,
		Diagnostics: sess.Diagnostics(),
	})
}

// frontendConfig merges flags over config. The language falls back from
// --language to the file extension to the configured language.
func frontendConfig(cmd *cobra.Command, path string) scopeview.FrontendConfig {
	language := flagLanguage
	if language == "" {
		if lang, ok := runtime.LanguageForFile(path); ok {
			language = lang
		} else {
			language = cfg.Language
		}
	}
	return scopeview.FrontendConfig{
		Kind:     pick(cmd, "frontend", strings.ToLower(flagFrontend), cfg.Frontend),
		Language: strings.ToLower(language),
		Script:   pick(cmd, "script", flagScript, cfg.Script),
		Tolerant: pick(cmd, "tolerant", flagTolerant, cfg.Tolerant),
		Logger:   slog.Default(),
	}
}

// pick returns the flag value when the flag was set, otherwise the
// configured value.
func pick[T any](cmd *cobra.Command, name string, flag, configured T) T {
	if cmd.Flags().Changed(name) {
		return flag
	}
	return configured
}

func readSource(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		src, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return src, nil
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return src, nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
