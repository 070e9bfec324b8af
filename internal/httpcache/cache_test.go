package httpcache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGenerateETagPure(t *testing.T) {
	content := []byte("hello world")
	assert.Equal(t, GenerateETag(content), GenerateETag(content))
}

func TestGenerateETagDiffersOnDifferentContent(t *testing.T) {
	assert.NotEqual(t, GenerateETag([]byte("a")), GenerateETag([]byte("b")))
}

func TestNotModifiedSinceAtMtime(t *testing.T) {
	mtime := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	header := FormatLastModified(mtime)
	assert.True(t, NotModifiedSince(header, mtime))
}

func TestNotModifiedSinceAfterMtime(t *testing.T) {
	mtime := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	later := FormatLastModified(mtime.Add(time.Hour))
	assert.True(t, NotModifiedSince(later, mtime))
}

func TestNotModifiedSinceBeforeMtime(t *testing.T) {
	mtime := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	earlier := FormatLastModified(mtime.Add(-time.Hour))
	assert.False(t, NotModifiedSince(earlier, mtime))
}

func TestNotModifiedSinceMalformed(t *testing.T) {
	assert.False(t, NotModifiedSince("not-a-date", time.Now()))
}

func TestETagMatchesWildcard(t *testing.T) {
	assert.True(t, ETagMatches("*", `"abc"`))
}

func TestETagMatchesList(t *testing.T) {
	assert.True(t, ETagMatches(`"xyz", "abc"`, `"abc"`))
}

func TestETagMatchesNone(t *testing.T) {
	assert.False(t, ETagMatches(`"xyz"`, `"abc"`))
}
