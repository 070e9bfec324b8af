package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, contents string) string {
	t.Helper()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadFillsDefaultsWhenFileIsEmpty(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "")

	base, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", base.Server.Host)
	assert.Equal(t, uint16(8080), base.Server.Port)
	assert.Equal(t, []string{"index.html"}, base.Route.IndexFiles)
	assert.Equal(t, "info", base.Logging.Level)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "[server]\nport = 9090\n")

	base, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, uint16(9090), base.Server.Port)
	assert.Equal(t, "127.0.0.1", base.Server.Host) // untouched field keeps default
}

func TestLoadEnvOverridesFileIndependentOfFieldOrder(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "[server]\nport = 9090\nhost = \"0.0.0.0\"\n")

	t.Setenv("SERVER_SERVER_PORT", "9999")

	base, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, uint16(9999), base.Server.Port)
	assert.Equal(t, "0.0.0.0", base.Server.Host)
}

func TestLoadReturnsErrorForMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}
