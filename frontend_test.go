package scopeview

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/scopeview/internal/graph"
	"github.com/jward/scopeview/internal/scope"
)

func sampleIDs(t *testing.T, fe Frontend, src string) []scope.ID {
	t.Helper()
	s := newTestSession(t, fe, WithCacheSize(0))
	require.NoError(t, s.Edit(context.Background(), src))
	ids := make([]scope.ID, 0, s.Graph().Len())
	for _, n := range s.Graph().Nodes {
		ids = append(ids, n.ID)
	}
	return ids
}

func TestNewFrontend_AllKindsAgreeOnGoSample(t *testing.T) {
	t.Parallel()

	want := []scope.ID{
		"Test#0",
		"Test#0/num#0",
		"Test#0/num2#0",
		"Test#0/secretStr#0",
		"test#0",
		"shouldHaveLocal#0",
		"shouldHaveLocal#0/local#0",
	}
	for _, kind := range FrontendKinds {
		t.Run(kind, func(t *testing.T) {
			t.Parallel()
			fe, err := NewFrontend(FrontendConfig{Kind: kind, Language: "go"})
			require.NoError(t, err)
			assert.Equal(t, want, sampleIDs(t, fe, SampleSource("go")))
		})
	}
}

func TestNewFrontend_DefaultsToTreeSitter(t *testing.T) {
	t.Parallel()

	fe, err := NewFrontend(FrontendConfig{Language: "python"})
	require.NoError(t, err)
	assert.Equal(t, "treesitter:python", fe.Name())

	s := newTestSession(t, fe)
	require.NoError(t, s.Edit(context.Background(), SampleSource("python")))
	counts := s.Graph().KindCounts()
	assert.Equal(t, 1, counts[scope.KindContract])
	assert.Equal(t, 2, counts[scope.KindFunction])
	assert.Equal(t, 3, counts[scope.KindStateVariable])
	assert.Equal(t, 1, counts[scope.KindLocalVariable])
}

func TestNewFrontend_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  FrontendConfig
	}{
		{"unknown kind", FrontendConfig{Kind: "lsp", Language: "go"}},
		{"unsupported language", FrontendConfig{Language: "cobol"}},
		{"goast for python", FrontendConfig{Kind: FrontendGoAST, Language: "python"}},
		{"no bundled script", FrontendConfig{Kind: FrontendScript, Language: "rust"}},
		{"missing script file", FrontendConfig{Kind: FrontendScript, Language: "go", Script: "/nonexistent/capture.risor"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewFrontend(tt.cfg)
			assert.ErrorIs(t, err, ErrParserUnavailable)
		})
	}
}

func TestNewFrontend_ScriptFromDisk(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "funcs.risor")
	script := `tree := parse_src(source, language)
root := tree.RootNode()
matches := query("(function_declaration name: (identifier) @name) @function", root)
for i := 0; i < len(matches); i++ {
	emit_match(matches[i])
}
`
	require.NoError(t, os.WriteFile(path, []byte(script), 0o644))

	fe, err := NewFrontend(FrontendConfig{Kind: FrontendScript, Language: "go", Script: path})
	require.NoError(t, err)

	s := newTestSession(t, fe, WithBuildOptions(graph.WithVirtualRoot("file")))
	require.NoError(t, s.Edit(context.Background(), SampleSource("go")))
	assert.Equal(t, []string{"file", "shouldHaveLocal"}, labels(s.Graph()))
}

func TestNewFrontend_TolerantTreeSitter(t *testing.T) {
	t.Parallel()

	broken := "package main\n\nfunc ok() {}\n\nfunc broken( {\n"

	strict, err := NewFrontend(FrontendConfig{Language: "go"})
	require.NoError(t, err)
	s := newTestSession(t, strict)
	assert.ErrorIs(t, s.Edit(context.Background(), broken), ErrParse)

	tolerant, err := NewFrontend(FrontendConfig{Language: "go", Tolerant: true})
	require.NoError(t, err)
	s = newTestSession(t, tolerant)
	require.NoError(t, s.Edit(context.Background(), broken))
	n, ok := s.Graph().Node("ok#0")
	require.True(t, ok)
	assert.Equal(t, scope.KindFunction, n.Kind)
}

func TestSampleSource(t *testing.T) {
	t.Parallel()

	assert.Contains(t, SampleSource("python"), "class Test")
	assert.Equal(t, SampleSource("go"), SampleSource("haskell"))
}
