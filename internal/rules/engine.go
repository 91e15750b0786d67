package rules

import "strings"

// Violation is one policy breach. Line is 1-based; zero means the
// violation concerns the whole file.
type Violation struct {
	Path    string
	Line    int
	Rule    string
	Match   string
	Message string
}

// Contains applies rules to the whole text and returns one file-level
// violation per matching rule, in rule order.
func Contains(path, text string, rules []Rule) []Violation {
	var out []Violation
	for _, r := range rules {
		if r.MatchString(text) {
			out = append(out, Violation{Path: path, Rule: r.Name})
		}
	}
	return out
}

// Result accumulates violations for one check run.
type Result struct {
	Violations []Violation

	// Total counts every violation observed, including any not retained.
	Total int

	// Truncated is set when a match was found past the collection ceiling.
	Truncated bool
}

// Passed reports whether no violation was observed.
func (r *Result) Passed() bool {
	return r.Total == 0
}

// Add appends violations.
func (r *Result) Add(vs ...Violation) {
	r.Violations = append(r.Violations, vs...)
	r.Total += len(vs)
}

// Scanner runs line-scan mode with a collection ceiling shared across files.
type Scanner struct {
	Rules []Rule

	// Limit is the ceiling on collected violations; zero means unlimited.
	Limit int

	Result Result
}

// Full reports whether the ceiling has been reached.
func (s *Scanner) Full() bool {
	return s.Limit > 0 && len(s.Result.Violations) >= s.Limit
}

// ScanLines splits text on "\n" and records one violation per match with
// its line number and matched text. Once the ceiling is reached, the next
// match found sets Truncated instead of being recorded, and ScanLines
// returns false; callers stop feeding files at that point. Exactly Limit
// matches is not a truncation.
func (s *Scanner) ScanLines(path, text string) bool {
	if s.Result.Truncated {
		return false
	}
	for i, line := range strings.Split(text, "\n") {
		for _, r := range s.Rules {
			r.each(line, func(m string) bool {
				if s.Full() {
					s.Result.Truncated = true
					return false
				}
				s.Result.Add(Violation{Path: path, Line: i + 1, Rule: r.Name, Match: m})
				return true
			})
			if s.Result.Truncated {
				return false
			}
		}
	}
	return true
}
