package runtime

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/scopeview/scripts"
)

func TestScript_BundledGoAgreesWithTreeSitter(t *testing.T) {
	t.Parallel()

	sc, err := NewScript("go", CaptureScriptPath("go"), "", WithRuntimeFS(scripts.FS))
	require.NoError(t, err)
	assert.Equal(t, "script:go:capture/go.risor", sc.Name())

	ts, err := NewTreeSitter("go")
	require.NoError(t, err)

	for _, src := range []string{goScopeSource, goTestSource} {
		assert.Equal(t, buildIDs(t, ts, src), buildIDs(t, sc, src))
	}
}

func TestScript_BundledPython(t *testing.T) {
	t.Parallel()

	sc, err := NewScript("python", CaptureScriptPath("python"), "", WithRuntimeFS(scripts.FS))
	require.NoError(t, err)

	src := `class Counter:
    total = 0

    def bump(self):
        step = 1
        return step
`
	ids := buildIDs(t, sc, src)
	assert.ElementsMatch(t, []string{
		"Counter#0", "Counter#0/total#0", "Counter#0/bump#0", "Counter#0/bump#0/step#0",
	}, toStrings(ids))
}

func TestScript_SyntaxErrorFailsParse(t *testing.T) {
	t.Parallel()

	sc, err := NewScript("go", CaptureScriptPath("go"), "", WithRuntimeFS(scripts.FS))
	require.NoError(t, err)

	_, err = sc.Parse(context.Background(), []byte("package main\nfunc ( {"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "syntax errors")
}

func TestScript_UserScriptFromDisk(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "funcs.risor"), []byte(`
tree := parse_src(source, language)
matches := query("(function_declaration name: (identifier) @name) @function", tree.RootNode())
for i := 0; i < len(matches); i++ {
    emit_match(matches[i])
}
`), 0644))

	sc, err := NewScript("go", "funcs.risor", dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"shouldHaveLocal#0"}, toStrings(buildIDs(t, sc, goScopeSource)))
}

func TestScript_ConcurrentParses(t *testing.T) {
	t.Parallel()

	sc, err := NewScript("go", CaptureScriptPath("go"), "", WithRuntimeFS(scripts.FS))
	require.NoError(t, err)

	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func() {
			_, err := sc.Parse(context.Background(), []byte(goScopeSource))
			errs <- err
		}()
	}
	for i := 0; i < 8; i++ {
		assert.NoError(t, <-errs)
	}
}

func TestNewScript_Errors(t *testing.T) {
	t.Parallel()

	_, err := NewScript("cobol", "x.risor", "")
	assert.ErrorIs(t, err, ErrUnsupportedLanguage)

	_, err = NewScript("go", "missing.risor", "", WithRuntimeFS(fstest.MapFS{}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "from fs")
}

func toStrings[T ~string](in []T) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = string(v)
	}
	return out
}
