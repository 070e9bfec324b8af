// Package static resolves a request path to a file on disk with
// path-traversal defense, per spec.md §4.10.
package static

import (
	"os"
	"path/filepath"
	"strings"
)

// Resolve implements the Dir action's lookup: strip the leading slash and
// any ".." components, strip routePrefix, join to staticDir, and try
// indexFiles in order if the remainder names a directory or is empty/ends
// in "/". It returns the resolved path and true only if that path both
// exists as a regular file and is canonically contained within staticDir.
func Resolve(staticDir, requestPath, routePrefix string, indexFiles []string) (string, bool) {
	remainder := strings.TrimPrefix(requestPath, "/")
	remainder = stripDotDot(remainder)

	trimmedPrefix := strings.Trim(routePrefix, "/")
	if trimmedPrefix != "" {
		remainder = strings.TrimPrefix(remainder, trimmedPrefix)
		remainder = strings.TrimPrefix(remainder, "/")
	}

	candidate := filepath.Join(staticDir, remainder)

	info, err := os.Stat(candidate)
	needsIndex := remainder == "" || strings.HasSuffix(requestPath, "/") || (err == nil && info.IsDir())
	if needsIndex {
		for _, idx := range indexFiles {
			withIndex := filepath.Join(candidate, idx)
			if fi, err := os.Stat(withIndex); err == nil && fi.Mode().IsRegular() {
				candidate = withIndex
				break
			}
		}
	}

	return safeWithinRoot(staticDir, candidate)
}

// stripDotDot defensively removes ".." path components, as the Rust
// original does before any filesystem join, ahead of (not instead of) the
// canonicalization check below.
func stripDotDot(p string) string {
	parts := strings.Split(p, "/")
	kept := parts[:0]
	for _, part := range parts {
		if part == ".." {
			continue
		}
		kept = append(kept, part)
	}
	return strings.Join(kept, "/")
}

// safeWithinRoot canonicalizes both root and candidate and rejects the
// candidate if it is not contained in root, closing any traversal the
// string-level defense above missed (symlinks, encoded separators once
// decoded, etc).
func safeWithinRoot(root, candidate string) (string, bool) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", false
	}
	realRoot, err := filepath.EvalSymlinks(absRoot)
	if err != nil {
		realRoot = absRoot
	}

	absCandidate, err := filepath.Abs(candidate)
	if err != nil {
		return "", false
	}
	realCandidate, err := filepath.EvalSymlinks(absCandidate)
	if err != nil {
		// File may not exist yet in a mocked FS; fall back to the
		// non-symlink-resolved absolute path for the prefix check.
		realCandidate = absCandidate
	}

	rel, err := filepath.Rel(realRoot, realCandidate)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}

	info, err := os.Stat(realCandidate)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	return realCandidate, true
}
