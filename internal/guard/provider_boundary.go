package guard

import (
	"context"
	"regexp"
	"strings"

	"github.com/reflaxe-ocaml/guards/internal/repo"
	"github.com/reflaxe-ocaml/guards/internal/report"
	"github.com/reflaxe-ocaml/guards/internal/rules"
	"github.com/reflaxe-ocaml/guards/internal/scope"
)

// ProviderBoundaryFile is the one file allowed to cast the backend
// provider contract to its structural dispatch view.
const ProviderBoundaryFile = "packages/hxhx/src/hxhx/BackendProviderResolver.hx"

const providerTypeMarker = "ITargetBackendProvider"

var providerCodeRoots = []string{
	"packages/hxhx/src/",
	"packages/hxhx-core/src/",
}

// providerCodeScope excludes the boundary file itself from the leak scan.
var providerCodeScope = scope.Scope{ExcludedPrefixes: []string{ProviderBoundaryFile}}

var (
	castKeyword         = regexp.MustCompile(`\bcast\b`)
	scopedProviderCast  = rules.New("scoped_provider_cast", `return\s+cast\s+providerContract\s*;`)
	reflectiveCallMatch = rules.New("reflective_provider_call", `Reflect\.callMethod`)
)

// ProviderBoundary keeps the provider boundary cast isolated to a single
// resolver file and keeps reflective invocation off that path.
type ProviderBoundary struct{}

func (ProviderBoundary) Name() string { return "provider-boundary" }

func (ProviderBoundary) Description() string {
	return "keep the backend provider boundary cast isolated to " + ProviderBoundaryFile
}

func (ProviderBoundary) Run(ctx context.Context, env *Env, rep *report.Reporter) error {
	var inRoots []string
	for _, path := range env.Files.Tracked(ctx) {
		if scope.UnderAny(path, providerCodeRoots) {
			inRoots = append(inRoots, path)
		}
	}

	var offenders []string
	env.readInScope(inRoots, providerCodeScope, func(path, text string) bool {
		// Both conditions are file-wide; they need not share a line.
		if strings.Contains(text, providerTypeMarker) && castKeyword.MatchString(text) {
			offenders = append(offenders, path)
		}
		return true
	})

	if len(offenders) > 0 {
		rep.Fail("provider boundary cast must stay isolated to " + ProviderBoundaryFile +
			"; found additional provider+cast usage in:\n" + report.Bullets(offenders, 0, len(offenders)))
	}

	source, ok := repo.ReadText(env.Root, ProviderBoundaryFile)
	if !ok {
		rep.Fail("missing required provider boundary file: " + ProviderBoundaryFile)
		return nil
	}

	if n := rules.CountMatches(source, scopedProviderCast); n != 1 {
		rep.Failf("expected exactly one scoped provider boundary cast in %s, found %d", ProviderBoundaryFile, n)
	}
	if reflectiveCallMatch.MatchString(source) {
		rep.Fail("unexpected Reflect.callMethod usage in " + ProviderBoundaryFile)
	}

	if !rep.Failed() {
		rep.OK("provider boundary cast policy")
	}
	return nil
}
