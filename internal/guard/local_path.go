package guard

import (
	"context"

	"github.com/reflaxe-ocaml/guards/internal/report"
	"github.com/reflaxe-ocaml/guards/internal/rules"
	"github.com/reflaxe-ocaml/guards/internal/scope"
)

// Default caps for the local-path check.
const (
	DefaultMaxViolations = 200
	DefaultDisplayLimit  = 40
)

// ciRunnerUser owns the home directory of hosted CI runners; paths under
// it are produced by CI itself and are allowed.
const ciRunnerUser = "runner"

const pathTail = "[^\\s\"'`)]+"

var localPathRules = []rules.Rule{
	rules.New("macos_home_path", `[/]Users[/][^/\s]+[/]`+pathTail),
	rules.New("linux_home_path", `[/]home[/]([^/\s]+)[/]`+pathTail).Rejecting(func(groups []string) bool {
		return groups[1] == ciRunnerUser
	}),
	rules.New("windows_home_path", `[A-Za-z]:\\\\Users\\\\[^\\\s]+\\\\`+pathTail),
}

var localPathScope = scope.New(
	".beads/",
	"packages/hxhx/bootstrap_out/",
	"packages/hxhx-macro-host/bootstrap_out/",
)

// LocalPath forbids machine-local absolute home-directory paths.
type LocalPath struct{}

func (LocalPath) Name() string { return "local-path" }

func (LocalPath) Description() string {
	return "forbid machine-local absolute paths in tracked or staged text"
}

func (LocalPath) Run(ctx context.Context, env *Env, rep *report.Reporter) error {
	files, label := env.Files.Tracked, "tracked"
	if env.Staged {
		files, label = env.Files.Staged, "staged"
	}

	limit, display := env.MaxViolations, env.DisplayLimit
	if limit <= 0 {
		limit = DefaultMaxViolations
	}
	if display <= 0 {
		display = DefaultDisplayLimit
	}

	s := &rules.Scanner{Rules: localPathRules, Limit: limit}
	env.readInScope(files(ctx), localPathScope, s.ScanLines)

	if !s.Result.Passed() {
		rep.Fail("machine-local absolute paths found in " + label + " text:\n" + report.Violations(s.Result, display))
		return nil
	}

	rep.OK("no machine-local absolute paths found in " + label + " files")
	return nil
}
