// Package config loads scopeview settings from a .env file and the
// environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Defaults used when a variable is unset or blank.
const (
	DefaultAddr      = ":8090"
	DefaultLanguage  = "go"
	DefaultFrontend  = "treesitter"
	DefaultDepth     = 3
	DefaultCacheSize = 256
)

type Config struct {
	Addr      string
	Language  string
	Frontend  string
	Script    string
	Depth     int
	CacheSize int
	Tolerant  bool
}

// Load reads .env from the working directory, if present, and then the
// SCOPEVIEW_* environment variables. Variables already set in the
// environment win over .env entries.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from the environment alone.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Addr:     normalizeAddr(firstNonEmpty(env("SCOPEVIEW_ADDR"), env("PORT"), DefaultAddr)),
		Language: strings.ToLower(firstNonEmpty(env("SCOPEVIEW_LANGUAGE"), DefaultLanguage)),
		Frontend: strings.ToLower(firstNonEmpty(env("SCOPEVIEW_FRONTEND"), DefaultFrontend)),
		Script:   env("SCOPEVIEW_SCRIPT"),
	}

	var err error
	if cfg.Depth, err = intVar("SCOPEVIEW_DEPTH", DefaultDepth); err != nil {
		return nil, err
	}
	if cfg.Depth < 1 {
		return nil, fmt.Errorf("config: SCOPEVIEW_DEPTH must be at least 1, got %d", cfg.Depth)
	}
	if cfg.CacheSize, err = intVar("SCOPEVIEW_CACHE_SIZE", DefaultCacheSize); err != nil {
		return nil, err
	}
	if cfg.Tolerant, err = boolVar("SCOPEVIEW_TOLERANT", false); err != nil {
		return nil, err
	}
	return cfg, nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func intVar(key string, def int) (int, error) {
	raw := env(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %q is not an integer", key, raw)
	}
	return v, nil
}

func boolVar(key string, def bool) (bool, error) {
	raw := env(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("config: %s: %q is not a boolean", key, raw)
	}
	return v, nil
}

// normalizeAddr accepts a bare port such as "8080".
func normalizeAddr(addr string) string {
	if strings.Contains(addr, ":") {
		return addr
	}
	return ":" + addr
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
