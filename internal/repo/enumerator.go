// Package repo lists version-controlled files and reads their text.
//
// Listing failures never surface as errors: a repository that cannot be
// queried yields no files, so a guard degrades to a vacuous pass instead of
// blocking unrelated CI stages.
package repo

import (
	"context"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/reflaxe-ocaml/guards/internal/config"
	guarderrors "github.com/reflaxe-ocaml/guards/internal/pkg/errors"
)

// Lister is a version-control backend.
type Lister interface {
	Tracked(ctx context.Context) ([]string, error)
	Staged(ctx context.Context) ([]string, error)
}

// Enumerator lists repository-relative paths, in the backend's native order.
type Enumerator struct {
	lister Lister
	log    *zap.Logger
}

// NewEnumerator returns an Enumerator over lister.
func NewEnumerator(lister Lister, log *zap.Logger) *Enumerator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Enumerator{lister: lister, log: log}
}

// ForBackend builds the Enumerator for a configured backend name.
func ForBackend(backend, root string, log *zap.Logger) (*Enumerator, error) {
	switch backend {
	case config.BackendGit:
		return NewEnumerator(NewGitCLI(root), log), nil
	case config.BackendGoGit:
		return NewEnumerator(NewGoGit(root), log), nil
	default:
		return nil, guarderrors.Wrap(guarderrors.ErrUnknownBackend, guarderrors.CodeConfigInvalid, "backend "+backend)
	}
}

// Tracked returns every tracked path. Each call queries the backend again.
func (e *Enumerator) Tracked(ctx context.Context) []string {
	paths, err := e.lister.Tracked(ctx)
	if err != nil {
		e.log.Debug("tracked file listing unavailable", errorFields(err)...)
		return nil
	}
	paths = normalize(paths)
	e.log.Debug("enumerated tracked files", zap.Int("count", len(paths)))
	return paths
}

// Staged returns paths added, copied, modified or renamed in the index.
func (e *Enumerator) Staged(ctx context.Context) []string {
	paths, err := e.lister.Staged(ctx)
	if err != nil {
		e.log.Debug("staged file listing unavailable", errorFields(err)...)
		return nil
	}
	paths = normalize(paths)
	e.log.Debug("enumerated staged files", zap.Int("count", len(paths)))
	return paths
}

// TrackedUnder returns tracked paths equal to dir or below it.
func (e *Enumerator) TrackedUnder(ctx context.Context, dir string) []string {
	dir = strings.TrimSuffix(filepath.ToSlash(dir), "/")
	var out []string
	for _, p := range e.Tracked(ctx) {
		if p == dir || strings.HasPrefix(p, dir+"/") {
			out = append(out, p)
		}
	}
	return out
}

func errorFields(err error) []zap.Field {
	fields := []zap.Field{zap.Error(err)}
	if ge, ok := guarderrors.IsGuardError(err); ok {
		fields = append(fields, zap.String("code", ge.Code), zap.String("root", ge.Path))
	}
	return fields
}

func normalize(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if p == "" {
			continue
		}
		out = append(out, filepath.ToSlash(p))
	}
	return out
}
