package repo

import (
	"context"
	"fmt"
	"sort"

	"github.com/go-git/go-git/v5"

	guarderrors "github.com/reflaxe-ocaml/guards/internal/pkg/errors"
)

// GoGit lists files in-process with go-git, for hosts without a git binary.
type GoGit struct {
	root string
}

// NewGoGit returns a backend reading the repository at root.
func NewGoGit(root string) *GoGit {
	return &GoGit{root: root}
}

// Tracked returns the index entries. The index is sorted by path,
// which is the order `git ls-files` prints.
func (g *GoGit) Tracked(ctx context.Context) ([]string, error) {
	r, err := g.open()
	if err != nil {
		return nil, err
	}
	idx, err := r.Storer.Index()
	if err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}
	paths := make([]string, 0, len(idx.Entries))
	for _, e := range idx.Entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		paths = append(paths, e.Name)
	}
	return paths, nil
}

// Staged returns paths whose staging status is added, copied, modified or
// renamed, sorted by path to match `git diff --cached --name-only`.
func (g *GoGit) Staged(ctx context.Context) ([]string, error) {
	r, err := g.open()
	if err != nil {
		return nil, err
	}
	wt, err := r.Worktree()
	if err != nil {
		return nil, fmt.Errorf("open worktree: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return nil, fmt.Errorf("worktree status: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var paths []string
	for path, st := range status {
		switch st.Staging {
		case git.Added, git.Copied, git.Modified, git.Renamed:
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func (g *GoGit) open() (*git.Repository, error) {
	r, err := git.PlainOpen(g.root)
	if err != nil {
		return nil, guarderrors.ErrEnumeratef(g.root, fmt.Errorf("%w: %v", guarderrors.ErrNotRepository, err))
	}
	return r, nil
}
