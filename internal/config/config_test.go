package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allVars = []string{
	"SCOPEVIEW_ADDR", "PORT", "SCOPEVIEW_LANGUAGE", "SCOPEVIEW_FRONTEND",
	"SCOPEVIEW_SCRIPT", "SCOPEVIEW_DEPTH", "SCOPEVIEW_CACHE_SIZE", "SCOPEVIEW_TOLERANT",
}

// clearEnv blanks every variable FromEnv reads; t.Setenv restores them.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allVars {
		t.Setenv(k, "")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, &Config{
		Addr:      DefaultAddr,
		Language:  DefaultLanguage,
		Frontend:  DefaultFrontend,
		Depth:     DefaultDepth,
		CacheSize: DefaultCacheSize,
	}, cfg)
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("SCOPEVIEW_ADDR", "127.0.0.1:9000")
	t.Setenv("SCOPEVIEW_LANGUAGE", " Python ")
	t.Setenv("SCOPEVIEW_FRONTEND", "script")
	t.Setenv("SCOPEVIEW_SCRIPT", "/tmp/capture.risor")
	t.Setenv("SCOPEVIEW_DEPTH", "5")
	t.Setenv("SCOPEVIEW_CACHE_SIZE", "0")
	t.Setenv("SCOPEVIEW_TOLERANT", "true")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
	assert.Equal(t, "python", cfg.Language)
	assert.Equal(t, "script", cfg.Frontend)
	assert.Equal(t, "/tmp/capture.risor", cfg.Script)
	assert.Equal(t, 5, cfg.Depth)
	assert.Equal(t, 0, cfg.CacheSize)
	assert.True(t, cfg.Tolerant)
}

func TestFromEnv_BarePort(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8081")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":8081", cfg.Addr)
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"SCOPEVIEW_DEPTH", "deep"},
		{"SCOPEVIEW_DEPTH", "0"},
		{"SCOPEVIEW_CACHE_SIZE", "lots"},
		{"SCOPEVIEW_TOLERANT", "maybe"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)
			_, err := FromEnv()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestLoad_ReadsDotEnv(t *testing.T) {
	clearEnv(t)
	// godotenv never overrides variables that are already set, even to
	// the empty string, so the ones under test are unset for the run.
	for _, k := range []string{"SCOPEVIEW_LANGUAGE", "SCOPEVIEW_DEPTH"} {
		require.NoError(t, os.Unsetenv(k))
		t.Cleanup(func() { os.Unsetenv(k) })
	}

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("SCOPEVIEW_LANGUAGE=rust\nSCOPEVIEW_DEPTH=2\n"), 0o644))
	t.Chdir(dir)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "rust", cfg.Language)
	assert.Equal(t, 2, cfg.Depth)
}
