package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jward/scopeview"
	"github.com/jward/scopeview/internal/server"
)

var flagAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve live scope graphs over websocket",
	Long: "Starts an HTTP server. Editors connect to /ws?language=go&frontend=treesitter, send edits " +
		"and view changes, and receive laid-out graphs. POST /api/graph builds a single graph.",
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagAddr, "addr", "", "listen address (default: config, :8090)")
	serveCmd.Flags().StringVar(&flagFrontend, "frontend", "", "default parser frontend: treesitter|goast|script")
	serveCmd.Flags().StringVar(&flagLanguage, "language", "", "default source language")
	serveCmd.Flags().StringVar(&flagScript, "script", "", "capture script for the script frontend")
	serveCmd.Flags().IntVar(&flagDepth, "depth", 0, "initial detail level")
	serveCmd.Flags().BoolVar(&flagTolerant, "tolerant", false, "accept sources with syntax errors")
}

func runServe(cmd *cobra.Command, args []string) error {
	opts := serverOptions(cmd)
	// Fail fast on a misconfigured default frontend.
	if _, err := scopeview.NewFrontend(opts.Frontend); err != nil {
		return fmt.Errorf("default frontend: %w", err)
	}
	addr := pick(cmd, "addr", flagAddr, cfg.Addr)
	return server.New(opts).ListenAndServe(addr)
}

func serverOptions(cmd *cobra.Command) server.Options {
	return server.Options{
		Frontend: scopeview.FrontendConfig{
			Kind:     pick(cmd, "frontend", strings.ToLower(flagFrontend), cfg.Frontend),
			Language: pick(cmd, "language", strings.ToLower(flagLanguage), cfg.Language),
			Script:   pick(cmd, "script", flagScript, cfg.Script),
			Tolerant: pick(cmd, "tolerant", flagTolerant, cfg.Tolerant),
		},
		Depth:     pick(cmd, "depth", flagDepth, cfg.Depth),
		CacheSize: cfg.CacheSize,
		Logger:    slog.Default(),
	}
}
