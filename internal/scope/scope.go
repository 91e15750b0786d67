// Package scope decides which repository paths a guard reads.
package scope

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// BinarySuffixes are extensions never scanned as text.
var BinarySuffixes = []string{
	".png", ".jpg", ".jpeg", ".gif", ".ico",
	".pdf", ".zip", ".gz", ".tar", ".tgz",
	".exe", ".bc", ".a", ".so", ".dylib",
}

// Scope excludes paths by directory prefix, by suffix, and optionally by
// gitignore-style patterns. The zero value admits every path.
type Scope struct {
	// ExcludedPrefixes match whole path components: "vendor/" and "vendor"
	// both exclude "vendor/x" but neither excludes "vendorx/y".
	ExcludedPrefixes []string

	// ExcludedSuffixes are compared against the lowercased path.
	ExcludedSuffixes []string

	Ignore Matcher
}

// New returns a Scope excluding prefixes plus the binary suffixes.
func New(prefixes ...string) Scope {
	return Scope{ExcludedPrefixes: prefixes, ExcludedSuffixes: BinarySuffixes}
}

// WithIgnore returns a copy of s that also consults m.
func (s Scope) WithIgnore(m Matcher) Scope {
	s.Ignore = m
	return s
}

// Contains reports whether path is eligible for text scanning.
func (s Scope) Contains(path string) bool {
	for _, prefix := range s.ExcludedPrefixes {
		if UnderPrefix(path, prefix) {
			return false
		}
	}
	lower := strings.ToLower(path)
	for _, suffix := range s.ExcludedSuffixes {
		if strings.HasSuffix(lower, strings.ToLower(suffix)) {
			return false
		}
	}
	return !s.Ignore.Match(path)
}

// UnderPrefix reports whether path equals prefix or lies below it,
// comparing whole components.
func UnderPrefix(path, prefix string) bool {
	prefix = strings.TrimSuffix(prefix, "/")
	if prefix == "" {
		return true
	}
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

// UnderAny reports whether path is under any of prefixes.
func UnderAny(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if UnderPrefix(path, p) {
			return true
		}
	}
	return false
}

// Matcher holds gitignore patterns. The zero value matches nothing.
type Matcher struct {
	patterns []gitignore.Pattern
}

// ParseIgnore builds a Matcher from gitignore-formatted text.
func ParseIgnore(text string) Matcher {
	var m Matcher
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		m.patterns = append(m.patterns, gitignore.ParsePattern(line, nil))
	}
	return m
}

// LoadIgnore reads an ignore file. A missing file yields an empty Matcher.
func LoadIgnore(path string) (Matcher, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if os.IsNotExist(err) {
			return Matcher{}, nil
		}
		return Matcher{}, err
	}
	return ParseIgnore(string(data)), nil
}

// Match reports whether path is excluded. Later patterns override earlier
// ones, so a "!" pattern can re-include a path.
func (m Matcher) Match(path string) bool {
	if len(m.patterns) == 0 {
		return false
	}
	parts := strings.Split(path, "/")
	matched := false
	for _, p := range m.patterns {
		switch p.Match(parts, false) {
		case gitignore.Exclude:
			matched = true
		case gitignore.Include:
			matched = false
		}
	}
	return matched
}

// Len reports the number of patterns.
func (m Matcher) Len() int {
	return len(m.patterns)
}
