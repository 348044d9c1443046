package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inspect.toml")
	require.NoError(t, os.WriteFile(path, []byte("format = \"yaml\"\ntangents = true\nworkers = 8\nlog_level = \"debug\"\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "yaml", cfg.Format)
	assert.True(t, cfg.Tangents)
	assert.False(t, cfg.Decode)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadConfigInvalid(t *testing.T) {
	dir := t.TempDir()

	badFormat := filepath.Join(dir, "format.toml")
	require.NoError(t, os.WriteFile(badFormat, []byte(`format = "xml"`), 0o644))
	_, err := LoadConfig(badFormat)
	require.ErrorContains(t, err, "unknown format")

	badSyntax := filepath.Join(dir, "syntax.toml")
	require.NoError(t, os.WriteFile(badSyntax, []byte(`format = `), 0o644))
	_, err = LoadConfig(badSyntax)
	require.Error(t, err)

	_, err = LoadConfig(filepath.Join(dir, "missing.toml"))
	require.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Workers = 0
	require.ErrorContains(t, cfg.Validate(), "workers")

	cfg = DefaultConfig()
	cfg.LogLevel = "loud"
	require.ErrorContains(t, cfg.Validate(), "log level")
}

func TestConfigNewLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.LogLevel = "info"

	logger := cfg.NewLogger(&buf)
	logger.Debug("hidden")
	logger.Info("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}
