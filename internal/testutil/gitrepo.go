// Package testutil builds throwaway repositories for guard tests.
//
// Repositories are created with go-git so tests do not need a git binary.
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Repo is a temporary git repository rooted in t.TempDir().
type Repo struct {
	Root string

	t    testing.TB
	repo *git.Repository
}

// NewRepo initializes an empty repository.
func NewRepo(t testing.TB) *Repo {
	t.Helper()

	root := t.TempDir()
	r, err := git.PlainInit(root, false)
	if err != nil {
		t.Fatalf("init repository: %v", err)
	}
	return &Repo{Root: root, t: t, repo: r}
}

// Write creates or replaces a working-tree file without staging it.
func (r *Repo) Write(path, content string) *Repo {
	return r.WriteBytes(path, []byte(content))
}

// WriteBytes is Write for raw content.
func (r *Repo) WriteBytes(path string, content []byte) *Repo {
	r.t.Helper()

	full := filepath.Join(r.Root, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		r.t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(full, content, 0o644); err != nil {
		r.t.Fatalf("write %s: %v", path, err)
	}
	return r
}

// Track stages existing working-tree files.
func (r *Repo) Track(paths ...string) *Repo {
	r.t.Helper()

	wt, err := r.repo.Worktree()
	if err != nil {
		r.t.Fatalf("open worktree: %v", err)
	}
	for _, p := range paths {
		if _, err := wt.Add(p); err != nil {
			r.t.Fatalf("stage %s: %v", p, err)
		}
	}
	return r
}

// Add writes and stages a file.
func (r *Repo) Add(path, content string) *Repo {
	r.t.Helper()
	return r.Write(path, content).Track(path)
}

// Remove deletes a working-tree file, leaving the index untouched.
func (r *Repo) Remove(path string) *Repo {
	r.t.Helper()

	if err := os.Remove(filepath.Join(r.Root, filepath.FromSlash(path))); err != nil {
		r.t.Fatalf("remove %s: %v", path, err)
	}
	return r
}

// Commit records the index as a commit.
func (r *Repo) Commit(msg string) *Repo {
	r.t.Helper()

	wt, err := r.repo.Worktree()
	if err != nil {
		r.t.Fatalf("open worktree: %v", err)
	}
	_, err = wt.Commit(msg, &git.CommitOptions{
		Author: &object.Signature{
			Name:  "guards-test",
			Email: "guards-test@example.invalid",
			When:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		},
	})
	if err != nil {
		r.t.Fatalf("commit: %v", err)
	}
	return r
}

// StaticLister serves fixed listings, standing in for a VCS backend.
type StaticLister struct {
	TrackedPaths []string
	StagedPaths  []string
	Err          error
}

// Tracked returns TrackedPaths or Err.
func (s StaticLister) Tracked(context.Context) ([]string, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return append([]string(nil), s.TrackedPaths...), nil
}

// Staged returns StagedPaths or Err.
func (s StaticLister) Staged(context.Context) ([]string, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return append([]string(nil), s.StagedPaths...), nil
}
