package static

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRoot(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("home"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "assets"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "assets", "app.css"), []byte("css"), 0o644))
	return dir
}

func TestResolveServesIndexAtRoot(t *testing.T) {
	dir := setupRoot(t)
	path, ok := Resolve(dir, "/", "", []string{"index.html"})
	assert.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "index.html"), mustReal(t, path))
}

func TestResolveServesNestedFile(t *testing.T) {
	dir := setupRoot(t)
	path, ok := Resolve(dir, "/static/assets/app.css", "/static", []string{"index.html"})
	assert.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "assets", "app.css"), mustReal(t, path))
}

func TestResolveRejectsTraversal(t *testing.T) {
	dir := setupRoot(t)
	_, ok := Resolve(dir, "/../../../etc/passwd", "", []string{"index.html"})
	assert.False(t, ok)
}

func TestResolveRejectsTraversalWithStrippedDotDot(t *testing.T) {
	dir := setupRoot(t)
	// after stripDotDot, "../etc/passwd" becomes "etc/passwd"; since it
	// doesn't exist under dir, resolution still fails, just not via the
	// traversal check specifically.
	_, ok := Resolve(dir, "/static/../../etc/passwd", "/static", []string{"index.html"})
	assert.False(t, ok)
}

func TestResolveMissingFile(t *testing.T) {
	dir := setupRoot(t)
	_, ok := Resolve(dir, "/nope.txt", "", []string{"index.html"})
	assert.False(t, ok)
}

func mustReal(t *testing.T, p string) string {
	t.Helper()
	real, err := filepath.EvalSymlinks(p)
	require.NoError(t, err)
	return real
}
