package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadTestConfig(t *testing.T) {
	assert := require.New(t)

	cfg, err := Load("test")
	assert.NoError(err, "could not load config")

	assert.True(cfg.GetSearchContents())
	assert.Equal(1.0, cfg.GetThreshold())
	assert.Equal(50, cfg.GetMaxResults())
	assert.True(cfg.GetSortEntries())
	assert.Equal(2, cfg.GetExpandWorkers())
	assert.Equal("18080", cfg.GetPort())
	assert.Equal(slog.LevelDebug, cfg.GetLogLevel())
}

func TestEnvironmentOverridesConfigFile(t *testing.T) {
	assert := require.New(t)
	t.Setenv("SEARCH_THRESHOLD", "0.25")
	t.Setenv("SEARCH_MAX_RESULTS", "7")
	t.Setenv("SEARCH_CONTENTS", "false")
	t.Setenv("PORT", "9999")

	cfg, err := Load("test")
	assert.NoError(err, "could not load config")

	assert.Equal(0.25, cfg.GetThreshold())
	assert.Equal(7, cfg.GetMaxResults())
	assert.False(cfg.GetSearchContents())
	assert.Equal("9999", cfg.GetPort())
}

func TestDefaultsWithoutConfigFile(t *testing.T) {
	assert := require.New(t)

	cfg, err := Load("doesnotexist")
	assert.NoError(err, "missing config file should fall back to defaults")

	assert.Equal(defaultThreshold, cfg.GetThreshold())
	assert.Equal(defaultMaxResults, cfg.GetMaxResults())
	assert.Equal(defaultPort, cfg.GetPort())
	assert.GreaterOrEqual(cfg.GetExpandWorkers(), 1)
	assert.Equal(slog.LevelInfo, cfg.GetLogLevel())
}

func TestExpandHome(t *testing.T) {
	assert := require.New(t)
	home, err := os.UserHomeDir()
	assert.NoError(err)

	assert.Equal(filepath.Join(home, "Downloads", "search.txt"), expandHome("~/Downloads/search.txt"))
	assert.Equal("/tmp/search.txt", expandHome("/tmp/search.txt"))
	assert.Equal("~user/file", expandHome("~user/file"))
}
