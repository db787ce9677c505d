package discovery

import (
	"path/filepath"
	"strings"

	"vrt/internal/domain"
)

// Filter filters test cases by name pattern
type Filter struct{}

// NewFilter creates a new Filter
func NewFilter() *Filter {
	return &Filter{}
}

// FilterByName filters test cases by file name pattern using wildcard
// matching. Supports patterns like "*circle*" or "path_*.svg"; a pattern
// without wildcards matches as a substring.
func (f *Filter) FilterByName(cases []domain.Case, pattern string) []domain.Case {
	if pattern == "" {
		return cases
	}

	var filtered []domain.Case

	for _, c := range cases {
		if matchName(c.Name, pattern) {
			filtered = append(filtered, c)
		}
	}

	return filtered
}

func matchName(name, pattern string) bool {
	// filepath.Match supports * and ? wildcards
	if matched, err := filepath.Match(pattern, name); err == nil && matched {
		return true
	}

	// For wildcard patterns that didn't match exactly, fall back to
	// ordered substring matching so "*circle*" style patterns behave
	// like users expect
	if strings.ContainsAny(pattern, "*?") {
		parts := strings.Split(pattern, "*")
		hasNonEmptyPart := false
		rest := name
		for _, part := range parts {
			if part == "" {
				continue
			}
			hasNonEmptyPart = true
			idx := strings.Index(rest, part)
			if idx < 0 {
				return false
			}
			rest = rest[idx+len(part):]
		}
		return hasNonEmptyPart
	}

	// No wildcards: simple contains check
	return strings.Contains(name, pattern)
}
