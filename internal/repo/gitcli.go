package repo

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	guarderrors "github.com/reflaxe-ocaml/guards/internal/pkg/errors"
)

// GitCLI lists files by running the git binary.
type GitCLI struct {
	root string
}

// NewGitCLI returns a backend that runs git with -C root.
func NewGitCLI(root string) *GitCLI {
	return &GitCLI{root: root}
}

// Tracked runs `git ls-files -z`.
func (g *GitCLI) Tracked(ctx context.Context) ([]string, error) {
	return g.listZ(ctx, "ls-files", "-z")
}

// Staged runs `git diff --cached --name-only --diff-filter=ACMR -z`.
func (g *GitCLI) Staged(ctx context.Context) ([]string, error) {
	return g.listZ(ctx, "diff", "--cached", "--name-only", "--diff-filter=ACMR", "-z")
}

func (g *GitCLI) listZ(ctx context.Context, args ...string) ([]string, error) {
	cmd := exec.CommandContext(ctx, "git", append([]string{"-C", g.root}, args...)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, guarderrors.ErrEnumeratef(g.root,
			fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(stderr.String())))
	}
	return strings.Split(string(out), "\x00"), nil
}
