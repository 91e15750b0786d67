// Package rules matches named patterns against file text.
//
// Patterns are compiled *regexp.Regexp values, which carry no search cursor,
// so one Rule can be applied to any number of files and lines without
// leaking match state between them.
package rules

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Rule is a named pattern.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp

	// Reject, when set, discards a candidate match. groups holds the
	// submatches (groups[0] is the whole match). The search resumes one
	// character after the rejected match start, so a rejected candidate
	// never hides a later valid one.
	Reject func(groups []string) bool
}

// New compiles pattern into a Rule. It panics on an invalid pattern;
// rules are package-level literals.
func New(name, pattern string) Rule {
	return Rule{Name: name, Pattern: regexp.MustCompile(pattern)}
}

// Rejecting returns a copy of r with a Reject predicate.
func (r Rule) Rejecting(reject func(groups []string) bool) Rule {
	r.Reject = reject
	return r
}

// FindAll returns every accepted, non-overlapping match in text, in order.
func (r Rule) FindAll(text string) []string {
	var out []string
	r.each(text, func(m string) bool {
		out = append(out, m)
		return true
	})
	return out
}

// MatchString reports whether text contains an accepted match.
func (r Rule) MatchString(text string) bool {
	if r.Reject == nil {
		return r.Pattern.MatchString(text)
	}
	found := false
	r.each(text, func(string) bool {
		found = true
		return false
	})
	return found
}

// each calls fn for each accepted match until fn returns false.
func (r Rule) each(text string, fn func(match string) bool) {
	if r.Reject == nil {
		for _, m := range r.Pattern.FindAllString(text, -1) {
			if !fn(m) {
				return
			}
		}
		return
	}

	pos := 0
	for pos <= len(text) {
		loc := r.Pattern.FindStringSubmatchIndex(text[pos:])
		if loc == nil {
			return
		}
		start, end := pos+loc[0], pos+loc[1]
		groups := make([]string, len(loc)/2)
		for i := range groups {
			if loc[2*i] >= 0 {
				groups[i] = text[pos+loc[2*i] : pos+loc[2*i+1]]
			}
		}

		if r.Reject(groups) {
			pos = start + advance(text, start)
			continue
		}
		if !fn(groups[0]) {
			return
		}
		if end == start {
			end += advance(text, start)
		}
		pos = end
	}
}

// advance returns the width of the rune at i, or 1 at the end of text.
func advance(text string, i int) int {
	if i >= len(text) {
		return 1
	}
	_, w := utf8.DecodeRuneInString(text[i:])
	return w
}

// CountMatches returns the number of accepted matches of r in text.
func CountMatches(text string, r Rule) int {
	return len(r.FindAll(text))
}

// ContainsAll reports whether text contains every fragment.
func ContainsAll(text string, fragments ...string) bool {
	for _, f := range fragments {
		if !strings.Contains(text, f) {
			return false
		}
	}
	return true
}
