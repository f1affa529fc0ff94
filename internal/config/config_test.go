package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"menuplanner/internal/models"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeFile(t, `
server:
  addr: ":9000"
storage:
  driver: memory
  legacy_unit: kg
log:
  level: debug
  pretty: false
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, DriverMemory, cfg.Storage.Driver)
	assert.Equal(t, models.UnitKilogram, cfg.LegacyUnit())
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.False(t, cfg.Log.Pretty)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	_, err := Load(writeFile(t, "storage:\n  driver: mongo\n"))
	assert.Error(t, err)
}

func TestLoad_RejectsBadLegacyUnit(t *testing.T) {
	_, err := Load(writeFile(t, "storage:\n  legacy_unit: bushel\n"))
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestLoad_RejectsMalformedYAML(t *testing.T) {
	_, err := Load(writeFile(t, "server: [unclosed"))
	assert.Error(t, err)
}
