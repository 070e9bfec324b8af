package logwriter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAccessToFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "access.log")

	w, err := New(path, "")
	require.NoError(t, err)
	defer w.Close()

	w.WriteAccess("hello")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(data))
}

func TestSetAccessLogFileSwitchesTarget(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.log")
	second := filepath.Join(dir, "second.log")

	w, err := New(first, "")
	require.NoError(t, err)
	defer w.Close()

	w.WriteAccess("one")
	require.NoError(t, w.SetAccessLogFile(second))
	w.WriteAccess("two")

	firstData, err := os.ReadFile(first)
	require.NoError(t, err)
	assert.Equal(t, "one\n", string(firstData))

	secondData, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Equal(t, "two\n", string(secondData))
}

func TestDefaultsToStreamsWithoutPanicking(t *testing.T) {
	w, err := New("", "")
	require.NoError(t, err)
	defer w.Close()
	w.WriteAccess("to stdout")
	w.WriteError("to stderr")
}
