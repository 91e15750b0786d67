package guard

import (
	"context"
	"fmt"

	"github.com/reflaxe-ocaml/guards/internal/report"
	"github.com/reflaxe-ocaml/guards/internal/rules"
	"github.com/reflaxe-ocaml/guards/internal/scope"
)

// Pattern sources use [/] so this file never matches its own rules.
var legacyPathRules = []rules.Rule{
	rules.New("legacy_hih_compiler_package", `packages[/]hih-compiler`),
	rules.New("legacy_hih_compiler_relative", `\.\.[/]hih-compiler`),
	rules.New("legacy_macro_host_tool", `tools[/]hxhx-macro-host`),
}

var legacyPathScope = scope.New(
	".beads/",
	"vendor/",
	"packages/hxhx/bootstrap_out/",
	"packages/hxhx-macro-host/bootstrap_out/",
	"test/snapshot/",
)

// LegacyPath forbids references to paths retired by the hxhx-first move.
type LegacyPath struct{}

func (LegacyPath) Name() string { return "legacy-path" }

func (LegacyPath) Description() string {
	return "forbid reintroducing pre-migration internal paths in tracked text"
}

func (LegacyPath) Run(ctx context.Context, env *Env, rep *report.Reporter) error {
	var res rules.Result
	env.readInScope(env.Files.Tracked(ctx), legacyPathScope, func(path, text string) bool {
		res.Add(rules.Contains(path, text, legacyPathRules)...)
		return true
	})

	if !res.Passed() {
		items := make([]string, 0, len(res.Violations))
		for _, v := range res.Violations {
			items = append(items, fmt.Sprintf("%s (matched %s)", v.Path, v.Rule))
		}
		rep.Fail("legacy path references found:\n" + report.Bullets(items, 0, res.Total))
		return nil
	}

	rep.OK("no forbidden legacy paths found")
	return nil
}
