// Package report prints guard outcomes in the CI log format:
//
//	[ci:guards] OK: <message>       (stdout)
//	[ci:guards] ERROR: <message>    (stderr)
//
// followed, for failures, by "- item" bullet lines.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/reflaxe-ocaml/guards/internal/rules"
)

// Tag prefixes every line this package prints.
const Tag = "[ci:guards]"

// Reporter accumulates failures for one check run.
type Reporter struct {
	out    io.Writer
	errOut io.Writer
	failed bool
	errors int
}

// New returns a Reporter writing successes to out and failures to errOut.
func New(out, errOut io.Writer) *Reporter {
	return &Reporter{out: out, errOut: errOut}
}

// Fail prints an error message and marks the run as failed.
func (r *Reporter) Fail(msg string) {
	fmt.Fprintf(r.errOut, "%s ERROR: %s\n", Tag, msg)
	r.failed = true
	r.errors++
}

// Failf is Fail with formatting.
func (r *Reporter) Failf(format string, args ...any) {
	r.Fail(fmt.Sprintf(format, args...))
}

// OK prints the single success line.
func (r *Reporter) OK(msg string) {
	fmt.Fprintf(r.out, "%s OK: %s\n", Tag, msg)
}

// Fatal prints an abnormal-abort line and marks the run as failed.
func (r *Reporter) Fatal(err error) {
	fmt.Fprintf(r.errOut, "%s FATAL: %v\n", Tag, err)
	r.failed = true
}

// Failed reports whether any failure was recorded.
func (r *Reporter) Failed() bool {
	return r.failed
}

// ErrorCount returns the number of Fail calls.
func (r *Reporter) ErrorCount() int {
	return r.errors
}

// Bullets renders items as "- item" lines, keeping at most limit of them
// and summarizing the rest as "- ... (N more)". total is the true count
// when it exceeds len(items); pass len(items) otherwise.
func Bullets(items []string, limit, total int) string {
	if total < len(items) {
		total = len(items)
	}
	shown := items
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}
	lines := make([]string, 0, len(shown)+1)
	for _, item := range shown {
		lines = append(lines, "- "+item)
	}
	if total > len(shown) {
		lines = append(lines, fmt.Sprintf("- ... (%d more)", total-len(shown)))
	}
	return strings.Join(lines, "\n")
}

// FormatViolation renders "path[:line] [rule] match-or-message".
func FormatViolation(v rules.Violation) string {
	var b strings.Builder
	b.WriteString(v.Path)
	if v.Line > 0 {
		fmt.Fprintf(&b, ":%d", v.Line)
	}
	if v.Rule != "" {
		fmt.Fprintf(&b, " [%s]", v.Rule)
	}
	switch {
	case v.Match != "":
		b.WriteString(" " + v.Match)
	case v.Message != "":
		b.WriteString(" " + v.Message)
	}
	return b.String()
}

// Violations renders a result as bullet lines capped at limit.
func Violations(res rules.Result, limit int) string {
	items := make([]string, 0, len(res.Violations))
	for _, v := range res.Violations {
		items = append(items, FormatViolation(v))
	}
	return Bullets(items, limit, res.Total)
}
