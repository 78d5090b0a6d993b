package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	var cfg Config
	cfg.App.Depth = 10
	cfg.Targets.Macro = []FeedTarget{
		{Name: "FED WATCH", Category: "FED", URL: "https://news.google.com/rss/search?q=fed"},
	}
	cfg.Targets.Sector = []FeedTarget{
		{Name: "EARNINGS", Category: "EARNINGS", URL: "https://news.google.com/rss/search?q=earnings"},
	}
	cfg.Filters.AllowedMirrorHosts = []string{"finance.yahoo.com"}
	cfg.Company.ScanDays = 3
	return cfg
}

func TestLoadShippedDefault(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "config", "config.yml"))
	require.NoError(t, err)

	cfg, v := NormalizeAndValidate(cfg)
	assert.True(t, v.OK(), "shipped default must validate: %v", v.Errors)
	assert.NotEmpty(t, cfg.Targets.Macro)
	assert.NotEmpty(t, cfg.Targets.Sector)
	assert.NotEmpty(t, cfg.Filters.BlockedSources)
	assert.Greater(t, cfg.App.Depth, 0)
	assert.Greater(t, cfg.Company.ScanDays, 0)
}

func TestNormalizeTrimsAndDedupes(t *testing.T) {
	cfg := validConfig()
	cfg.Filters.BlockedSources = []string{" ZACKS ", "zacks", "", "BENZINGA"}

	out, v := NormalizeAndValidate(cfg)
	require.True(t, v.OK(), "%v", v.Errors)
	assert.Equal(t, []string{"ZACKS", "BENZINGA"}, out.Filters.BlockedSources)
}

func TestValidateDefaultsDepth(t *testing.T) {
	cfg := validConfig()
	cfg.App.Depth = 0

	out, v := NormalizeAndValidate(cfg)
	assert.Equal(t, 10, out.App.Depth)
	assert.NotEmpty(t, v.Warnings)
	assert.True(t, v.OK())
}

func TestValidateRejectsEmptyMacroTargets(t *testing.T) {
	cfg := validConfig()
	cfg.Targets.Macro = nil

	_, v := NormalizeAndValidate(cfg)
	assert.False(t, v.OK())
}

func TestValidateRejectsBadTargetURL(t *testing.T) {
	cfg := validConfig()
	cfg.Targets.Macro = append(cfg.Targets.Macro, FeedTarget{Name: "BROKEN", Category: "FED", URL: "not a url"})

	_, v := NormalizeAndValidate(cfg)
	assert.False(t, v.OK())
}

func TestValidateRejectsUnknownSeverityLevel(t *testing.T) {
	cfg := validConfig()
	cfg.Report.SeverityRules = []SeverityRule{{Level: "panic", Any: []string{"crash"}}}

	_, v := NormalizeAndValidate(cfg)
	assert.False(t, v.OK())
}

func TestValidateWarnsOnBlockedPriorityOverlap(t *testing.T) {
	cfg := validConfig()
	cfg.Filters.BlockedSources = []string{"REUTERS"}
	cfg.Filters.PrioritySources = []string{"Reuters"}

	_, v := NormalizeAndValidate(cfg)
	assert.True(t, v.OK())
	assert.NotEmpty(t, v.Warnings)
}

func TestEnsureUserConfigSeedsOnce(t *testing.T) {
	dataDir := t.TempDir()
	defaultPath := filepath.Join("..", "..", "config", "config.yml")

	userPath, err := EnsureUserConfig(dataDir, defaultPath)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dataDir, "config.yml"), userPath)

	// Edits to the user copy survive later bootstraps.
	require.NoError(t, os.WriteFile(userPath, []byte("app:\n  depth: 5\n"), 0o644))
	again, err := EnsureUserConfig(dataDir, defaultPath)
	require.NoError(t, err)
	assert.Equal(t, userPath, again)

	cfg, err := Load(again)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.App.Depth)
}
