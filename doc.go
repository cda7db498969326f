// Package scopeview builds a live scope graph of source code: which
// contracts (types, classes), functions and variables a text declares, and
// how they nest, recovered purely from the byte ranges a parser reports.
//
// # Pipeline
//
// Every edit runs three stages:
//
//  1. Parse: a [Frontend] turns the text into capture data. Frontends come
//     in two shapes, a flat list of tree-sitter query matches or a set of
//     visitor callbacks, and both are accepted.
//
//  2. Normalize: the capture data is reduced to a list of constructs, each
//     with a kind, an optional name and a half-open byte range. Variables
//     are classified as state or local by their innermost enclosing
//     construct.
//
//  3. Build: constructs are sorted by range and nested with a stack. Each
//     node gets a hierarchical ID such as "Test#0/num#0", and every edge
//     links a parent to a direct child.
//
// # Frontends
//
// [NewFrontend] selects one of three parsers:
//
//   - treesitter: a built-in tree-sitter capture query per language.
//   - script: a Risor capture script that calls emit_match for every
//     construct. Bundled scripts live under scripts/capture; any script on
//     disk can replace them.
//   - goast: the standard library Go parser, walked with visitor callbacks.
//
// # Sessions
//
// A [Session] holds the latest graph and the view settings: a detail level
// (maximum ID depth) and a set of hidden kinds. Edits may overlap; only
// the newest successful one is applied and older results come back as
// [ErrStale]. A failed parse keeps the previous graph.
//
//	fe, err := scopeview.NewFrontend(scopeview.FrontendConfig{Language: "go"})
//	if err != nil { ... }
//	s, err := scopeview.NewSession(fe)
//	if err != nil { ... }
//
//	err = s.Edit(ctx, src)
//	s.DecreaseDetail()
//	_ = s.SetKindVisible(scopeview.KindLocalVariable, false)
//	r, err := s.Render(ctx)
//
// [Session.Render] lays the view out as a top-down tree; see the
// internal/layout package.
package scopeview
