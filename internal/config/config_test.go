package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsAreValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 50, cfg.History.MaxSnapshots)
	assert.Equal(t, 0.3, cfg.Coupling.MinStrength)
	assert.Equal(t, 0.2, cfg.BusFactor.SignificantShare)
	assert.Equal(t, 100.0, cfg.Cost.HourlyRate)
	assert.Equal(t, 2.0, cfg.Trends.StableBand)
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero snapshots", func(c *Config) { c.History.MaxSnapshots = 0 }},
		{"zero concurrency", func(c *Config) { c.Git.Concurrency = 0 }},
		{"strength above 1", func(c *Config) { c.Coupling.MinStrength = 1.5 }},
		{"zero significant share", func(c *Config) { c.BusFactor.SignificantShare = 0 }},
		{"free consultants", func(c *Config) { c.Cost.HourlyRate = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cost:\n  hourly_rate: 150\ngit:\n  concurrency: 4\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 150.0, cfg.Cost.HourlyRate)
	assert.Equal(t, 4, cfg.Git.Concurrency)
	// Untouched keys keep their defaults.
	assert.Equal(t, 500, cfg.Git.MaxCommits)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(cwd) })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadInvalidValuesRejected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("coupling:\n  min_strength: 2.0\n"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "min_strength")
}

func TestWriteDefaultRoundTrip(t *testing.T) {
	root := t.TempDir()
	path, err := WriteDefault(root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, StateDirName, "config.yaml"), path)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}
