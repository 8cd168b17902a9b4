package fstree

import (
	"path"
	"strings"
)

// DefaultIgnore contains the patterns skipped by every scan.
var DefaultIgnore = []string{
	".*",
	"node_modules",
	"__tests__",
	"*.test.*",
	"*.spec.*",
	"*_test.go",
	"*.d.ts",
}

// IgnoreMatcher matches slash-separated paths against ignore patterns.
//
// A pattern without a separator or glob matches any path segment
// ("node_modules"). A glob without a separator matches the base name
// ("*.spec.*"). A pattern containing "/" matches the whole path as a glob, or
// a contiguous run of segments when it has no glob characters.
type IgnoreMatcher struct {
	patterns []string
}

// NewIgnoreMatcher returns a matcher for the given patterns. Empty patterns
// are dropped.
func NewIgnoreMatcher(patterns ...[]string) *IgnoreMatcher {
	m := &IgnoreMatcher{}
	for _, list := range patterns {
		for _, p := range list {
			p = strings.TrimSpace(strings.ReplaceAll(p, "\\", "/"))
			p = strings.Trim(p, "/")
			if p == "" {
				continue
			}
			m.patterns = append(m.patterns, p)
		}
	}
	return m
}

// Patterns returns the normalized patterns.
func (m *IgnoreMatcher) Patterns() []string {
	return append([]string(nil), m.patterns...)
}

// Match reports whether rel should be ignored.
func (m *IgnoreMatcher) Match(rel string) bool {
	if m == nil {
		return false
	}
	normalized := strings.Trim(strings.ReplaceAll(rel, "\\", "/"), "/")
	if normalized == "" {
		return false
	}
	name := path.Base(normalized)

	for _, pattern := range m.patterns {
		if name == pattern {
			return true
		}

		hasPathSep := strings.Contains(pattern, "/")
		hasGlob := strings.ContainsAny(pattern, "*?[")

		if hasGlob {
			if hasPathSep {
				if matched, _ := path.Match(pattern, normalized); matched {
					return true
				}
			} else if matched, _ := path.Match(pattern, name); matched {
				return true
			}
			continue
		}

		if hasPathSep {
			if pathMatchesSegments(normalized, pattern) {
				return true
			}
			continue
		}

		if pathHasSegment(normalized, pattern) {
			return true
		}
	}

	return false
}

func pathHasSegment(p, segment string) bool {
	for _, part := range splitPathSegments(p) {
		if part == segment {
			return true
		}
	}
	return false
}

func pathMatchesSegments(p, pattern string) bool {
	pathParts := splitPathSegments(p)
	patternParts := splitPathSegments(pattern)
	if len(patternParts) == 0 || len(patternParts) > len(pathParts) {
		return false
	}

	for i := 0; i <= len(pathParts)-len(patternParts); i++ {
		match := true
		for j := range patternParts {
			if pathParts[i+j] != patternParts[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}

	return false
}

func splitPathSegments(p string) []string {
	if p == "" {
		return nil
	}
	parts := strings.Split(p, "/")
	result := parts[:0]
	for _, part := range parts {
		if part != "" && part != "." {
			result = append(result, part)
		}
	}
	return result
}
