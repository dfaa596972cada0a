// Package globmatch matches stored paths against glob patterns for
// stowr's search and batch list-file operations, using doublestar for
// proper ** support instead of the ad hoc regex translation the original
// implementation relied on.
package globmatch

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Match reports whether path satisfies pattern. A pattern with no "/" is
// also tried against the last element of path, so "*.txt" matches
// "dir/notes.txt". If pattern is not a valid doublestar glob, or no glob
// match is found, Match falls back to a case-sensitive substring test,
// which covers patterns a user typed as a plain keyword rather than a glob.
func Match(pattern, path string) bool {
	ok, err := doublestar.Match(pattern, path)
	if err != nil {
		return strings.Contains(path, pattern)
	}
	if ok {
		return true
	}
	if !strings.Contains(pattern, "/") {
		if ok, _ := doublestar.Match(pattern, path[strings.LastIndex(path, "/")+1:]); ok {
			return true
		}
	}
	return strings.Contains(path, pattern)
}

// FilterExcludes removes every path matching any of the exclude patterns.
func FilterExcludes(paths []string, excludes []string) []string {
	if len(excludes) == 0 {
		return paths
	}
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		excluded := false
		for _, ex := range excludes {
			if Match(ex, p) {
				excluded = true
				break
			}
		}
		if !excluded {
			out = append(out, p)
		}
	}
	return out
}
