// Package guard implements the repository guardrail checks.
//
// Every check follows the same shape: enumerate files once, filter them by
// scope, read the survivors, match rules or compare values, and report.
// Policy violations go to the Reporter; a returned error means the run was
// aborted (for example by a metadata document that does not parse).
package guard

import (
	"context"

	"go.uber.org/zap"

	guarderrors "github.com/reflaxe-ocaml/guards/internal/pkg/errors"
	"github.com/reflaxe-ocaml/guards/internal/repo"
	"github.com/reflaxe-ocaml/guards/internal/report"
	"github.com/reflaxe-ocaml/guards/internal/rules"
	"github.com/reflaxe-ocaml/guards/internal/scope"
)

// Check is one guard.
type Check interface {
	Name() string
	Description() string
	Run(ctx context.Context, env *Env, rep *report.Reporter) error
}

// Env is everything a check needs from the outside world.
type Env struct {
	// Root is the repository root; file paths are read relative to it.
	Root  string
	Files *repo.Enumerator

	// Ignore holds extra gitignore-style excludes applied on top of each
	// check's own scope wherever file contents are scanned. Path-only
	// policies (stdlib-boundary, the required metadata and boundary files)
	// are not subject to it.
	Ignore scope.Matcher

	Log *zap.Logger

	// Staged restricts the local-path check to staged files.
	Staged bool

	// StrictLicense enables the forbidden-marker scan of version-sync.
	StrictLicense bool

	// LicenseMarkers are the forbidden markers for the strict variant.
	LicenseMarkers []rules.Rule

	// MaxViolations and DisplayLimit cap the local-path check.
	MaxViolations int
	DisplayLimit  int
}

func (e *Env) logger() *zap.Logger {
	if e.Log == nil {
		return zap.NewNop()
	}
	return e.Log
}

// readInScope yields the text of each in-scope path, skipping files that
// cannot be read as UTF-8. fn returns false to stop early.
func (e *Env) readInScope(paths []string, s scope.Scope, fn func(path, text string) bool) {
	s = s.WithIgnore(e.Ignore)
	for _, p := range paths {
		if !s.Contains(p) {
			continue
		}
		text, ok := repo.ReadText(e.Root, p)
		if !ok {
			e.logger().Debug("skipping unreadable file", zap.String("path", p))
			continue
		}
		if !fn(p, text) {
			return
		}
	}
}

// All returns every check in run order.
func All() []Check {
	return []Check{
		LegacyPath{},
		LocalPath{},
		ProviderBoundary{},
		StdlibBoundary{},
		VersionSync{},
	}
}

// Select resolves check names, in the order given, through Lookup. An
// empty list selects every check. Repeated names run once.
func Select(names []string) ([]Check, error) {
	if len(names) == 0 {
		return All(), nil
	}
	seen := make(map[string]bool, len(names))
	out := make([]Check, 0, len(names))
	for _, name := range names {
		c, ok := Lookup(name)
		if !ok {
			return nil, guarderrors.ErrCheckUnknownf(name)
		}
		if seen[c.Name()] {
			continue
		}
		seen[c.Name()] = true
		out = append(out, c)
	}
	return out, nil
}

// Lookup finds a check by name.
func Lookup(name string) (Check, bool) {
	for _, c := range All() {
		if c.Name() == name {
			return c, true
		}
	}
	return nil, false
}
