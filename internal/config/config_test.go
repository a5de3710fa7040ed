package config

import (
	"os"
	"path/filepath"
	"testing"

	"pillars/internal/reaction"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "pillars.db", cfg.Store.Path)
	assert.Equal(t, 4, cfg.Batch.Workers)
	assert.Equal(t, reaction.DefaultOptions(), cfg.EngineOptions())
}

func TestLoadConfig_YAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
engine:
  hidden_stem_pairs: true
  harm: false
store:
  path: cases.db
batch:
  workers: 8
advisor:
  provider: openai
  model: gpt-4o-mini
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	opts := cfg.EngineOptions()
	assert.True(t, opts.HiddenStemPairs)
	assert.False(t, opts.Harm)
	assert.True(t, opts.Punishment, "untouched keys keep their defaults")
	assert.Equal(t, "cases.db", cfg.Store.Path)
	assert.Equal(t, 8, cfg.Batch.Workers)
	assert.Equal(t, 64, cfg.Batch.BatchSize)
	assert.Equal(t, "openai", cfg.Advisor.Provider)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("PILLARS_API_KEY", "secret")
	t.Setenv("PILLARS_DB", "/tmp/other.db")
	t.Setenv("PILLARS_WORKERS", "2")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "secret", cfg.Advisor.APIKey)
	assert.Equal(t, "/tmp/other.db", cfg.Store.Path)
	assert.Equal(t, 2, cfg.Batch.Workers)
}

func TestLoadConfig_RejectsBadWorkerCount(t *testing.T) {
	t.Setenv("PILLARS_WORKERS", "zero")
	_, err := LoadConfig("")
	assert.Error(t, err)
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("engine: [unclosed"), 0o644))
	_, err := LoadConfig(path)
	assert.Error(t, err)
}
