// Package httpcache implements conditional-GET caching and HTTP Range
// support, grounded on _examples/original_source/src/http/cache.rs and
// range.rs. The date arithmetic there is hand-rolled because the Rust
// standard library has no RFC 7231 formatter; Go's net/http already
// provides one (http.TimeFormat), so this package uses it directly rather
// than porting the Rust day-counting algorithm — there is no idiomatic
// third-party alternative worth reaching for over a solved stdlib problem.
package httpcache

import (
	"fmt"
	"hash/fnv"
	"net/http"
	"strings"
	"time"
)

// GenerateETag hashes content with a fast non-cryptographic hash (FNV-1a,
// matching the Rust original's choice of a DefaultHasher over anything
// cryptographic) and returns it quoted, e.g. `"7f3a9c1"`.
func GenerateETag(content []byte) string {
	h := fnv.New64a()
	_, _ = h.Write(content)
	return fmt.Sprintf("%q", fmt.Sprintf("%x", h.Sum64()))
}

// MtimeETag derives a provisional ETag from a file's modification time
// alone, used by the 304 fast path before content is ever read.
func MtimeETag(mtime time.Time) string {
	return fmt.Sprintf("%q", fmt.Sprintf("%x", mtime.Unix()))
}

// FormatLastModified renders t as an RFC 7231 HTTP date.
func FormatLastModified(t time.Time) string {
	return t.UTC().Format(http.TimeFormat)
}

// NotModifiedSince reports whether mtime (truncated to whole seconds, since
// HTTP dates have only second precision) is at or before the time encoded
// in the client's If-Modified-Since header. A malformed or absent header
// never yields true.
func NotModifiedSince(ifModifiedSince string, mtime time.Time) bool {
	if ifModifiedSince == "" {
		return false
	}
	clientTime, err := http.ParseTime(ifModifiedSince)
	if err != nil {
		return false
	}
	truncated := time.Unix(mtime.Unix(), 0).UTC()
	return !truncated.After(clientTime.UTC())
}

// ETagMatches reports whether the client's If-None-Match header matches
// etag: a comma-separated list of quoted ETags, any of which trimmed-equal
// to etag, or the literal wildcard "*", counts as a match.
func ETagMatches(ifNoneMatch, etag string) bool {
	if ifNoneMatch == "" {
		return false
	}
	for _, candidate := range strings.Split(ifNoneMatch, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || candidate == etag {
			return true
		}
	}
	return false
}
