package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
[server]
port = "9090"

[database]
path = "/tmp/test.db"

[dedupe]
threshold = 0.9

[dedupe.collections.products]
threshold = 0.95

[audit]
retention_days = 30
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "/tmp/test.db", cfg.Database.Path)
	assert.Equal(t, 0.9, cfg.Dedupe.Threshold)
	assert.Equal(t, 30, cfg.Audit.RetentionDays)
	assert.Equal(t, map[string]float64{"products": 0.95}, cfg.ThresholdOverrides())
}

func TestLoadDefaultsApply(t *testing.T) {
	// A partial file keeps defaults for the missing sections.
	cfg, err := Load(writeConfig(t, `[server]
port = "9999"
`))
	require.NoError(t, err)
	assert.Equal(t, "9999", cfg.Server.Port)
	assert.Equal(t, 0.85, cfg.Dedupe.Threshold)
	assert.Equal(t, "data/mdm.db", cfg.Database.Path)
	assert.Nil(t, cfg.ThresholdOverrides())
}

func TestLoadRejectsBadThreshold(t *testing.T) {
	_, err := Load(writeConfig(t, `[dedupe]
threshold = 1.5
`))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, `[dedupe]
threshold = 0.8

[dedupe.collections.customers]
threshold = -1.0
`))
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}
