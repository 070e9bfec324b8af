package overlay

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yarhs-io/yarhs/internal/config"
)

func TestUpdateLoggingPersistsAndRoundTrips(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(configPath, []byte(""), 0o644))

	m := NewManager(configPath, true)
	require.NoError(t, m.UpdateLogging(config.Logging{Level: "debug", AccessLog: true, AccessLogFormat: "json"}))

	assert.FileExists(t, m.StatePath())

	reloaded := NewManager(configPath, true)
	got := reloaded.Merge(config.Base{Logging: config.Logging{Level: "info"}})
	assert.Equal(t, "debug", got.Logging.Level)
	assert.Equal(t, "json", got.Logging.AccessLogFormat)
}

func TestMergeLeavesAbsentSectionsAtBaseValue(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.toml")

	m := NewManager(configPath, true)
	require.NoError(t, m.UpdateHTTP(config.HTTP{ServerName: "custom/1.0"}))

	base := config.Base{
		Logging: config.Logging{Level: "warn"},
		HTTP:    config.HTTP{ServerName: "default/1.0"},
	}
	merged := m.Merge(base)

	assert.Equal(t, "custom/1.0", merged.HTTP.ServerName)
	assert.Equal(t, "warn", merged.Logging.Level) // untouched section keeps base value
}

func TestClearResetsDocumentAndRemovesFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.toml")

	m := NewManager(configPath, true)
	require.NoError(t, m.UpdateServer(config.ServerConfig{Port: 9999}))
	assert.FileExists(t, m.StatePath())

	require.NoError(t, m.Clear())
	assert.NoFileExists(t, m.StatePath())

	merged := m.Merge(config.Base{Server: config.ServerConfig{Port: 8080}})
	assert.Equal(t, uint16(8080), merged.Server.Port)
}

func TestDisabledManagerNeverTouchesDisk(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.toml")

	m := NewManager(configPath, false)
	require.NoError(t, m.UpdateServer(config.ServerConfig{Port: 1234}))

	assert.NoFileExists(t, m.StatePath())
	assert.False(t, m.Enabled())
}
