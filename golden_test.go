package scopeview

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Golden test format: the expected nodes of every source file, in build
// order.
type goldenFile struct {
	Files map[string][]goldenNode `json:"files"`
}

type goldenNode struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
}

// goldenFrontends lists the frontends run per language. Every frontend of a
// language must produce the same graph.
var goldenFrontends = map[string][]string{
	"go":     {FrontendTreeSitter, FrontendGoAST, FrontendScript},
	"python": {FrontendTreeSitter, FrontendScript},
}

// TestGolden walks testdata/{language}/ directories. Every source file is
// built with each frontend of its language; levels with a golden.json also
// check the exact nodes.
func TestGolden(t *testing.T) {
	langDirs, err := os.ReadDir("testdata")
	if err != nil {
		t.Skip("no testdata directory found")
	}

	for _, langDir := range langDirs {
		if !langDir.IsDir() {
			continue
		}
		lang := langDir.Name()
		langRoot := filepath.Join("testdata", lang)
		levels, err := os.ReadDir(langRoot)
		if err != nil {
			continue
		}

		for _, level := range levels {
			if !level.IsDir() {
				continue
			}
			testDir := filepath.Join(langRoot, level.Name())
			srcDir := filepath.Join(testDir, "src")
			if _, err := os.Stat(srcDir); err != nil {
				continue
			}

			t.Run(lang+"/"+level.Name(), func(t *testing.T) {
				t.Parallel()
				runGoldenTest(t, lang, srcDir, filepath.Join(testDir, "golden.json"))
			})
		}
	}
}

func runGoldenTest(t *testing.T, lang, srcDir, goldenPath string) {
	t.Helper()

	var golden goldenFile
	if data, err := os.ReadFile(goldenPath); err == nil {
		require.NoError(t, json.Unmarshal(data, &golden))
	}

	srcEntries, err := os.ReadDir(srcDir)
	require.NoError(t, err)
	for _, e := range srcEntries {
		if e.IsDir() {
			continue
		}
		src, err := os.ReadFile(filepath.Join(srcDir, e.Name()))
		require.NoError(t, err)

		t.Run(e.Name(), func(t *testing.T) {
			var first []goldenNode
			for _, kind := range goldenFrontends[lang] {
				got := buildGolden(t, kind, lang, string(src))
				if first == nil {
					first = got
				} else {
					assert.Equal(t, first, got, "%s disagrees with %s", kind, goldenFrontends[lang][0])
				}
			}
			if want, ok := golden.Files[e.Name()]; ok {
				assert.Equal(t, want, first)
			}
		})
	}
}

func buildGolden(t *testing.T, kind, lang, src string) []goldenNode {
	t.Helper()
	fe, err := NewFrontend(FrontendConfig{Kind: kind, Language: lang})
	require.NoError(t, err)
	s, err := NewSession(fe, WithCacheSize(0))
	require.NoError(t, err)
	require.NoError(t, s.Edit(context.Background(), src), "frontend %s", kind)
	assert.Empty(t, s.Diagnostics(), "frontend %s", kind)

	nodes := make([]goldenNode, 0, s.Graph().Len())
	for _, n := range s.Graph().Nodes {
		nodes = append(nodes, goldenNode{ID: string(n.ID), Kind: string(n.Kind)})
	}
	return nodes
}
