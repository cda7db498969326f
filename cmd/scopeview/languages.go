package main

import (
	"slices"

	"github.com/spf13/cobra"

	"github.com/jward/scopeview"
	"github.com/jward/scopeview/internal/runtime"
)

var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "List supported languages and frontends",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return outputResult(CLIResult{
			Command: "languages",
			Results: supportedLanguages(),
		})
	},
}

func supportedLanguages() []CLILanguage {
	scripted := scopeview.ScriptLanguages()
	var out []CLILanguage
	for _, lang := range scopeview.Languages() {
		fronts := []string{scopeview.FrontendTreeSitter}
		if lang == "go" {
			fronts = append(fronts, scopeview.FrontendGoAST)
		}
		bundled := slices.Contains(scripted, lang)
		if bundled {
			fronts = append(fronts, scopeview.FrontendScript)
		}
		out = append(out, CLILanguage{
			Language:      lang,
			Extensions:    runtime.ExtensionsFor(lang),
			Frontends:     fronts,
			BundledScript: bundled,
		})
	}
	return out
}
