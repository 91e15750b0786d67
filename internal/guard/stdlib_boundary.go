package guard

import (
	"context"
	"strings"

	"github.com/reflaxe-ocaml/guards/internal/report"
	"github.com/reflaxe-ocaml/guards/internal/scope"
)

// Upstream vendor layout.
const (
	VendorRoot      = "vendor/haxe"
	approvedSyncExt = ".hx"
	vendorListLimit = 20
)

var (
	approvedVendorRoots  = []string{"vendor/haxe/std/"}
	forbiddenVendorRoots = []string{
		"vendor/haxe/src/",
		"vendor/haxe/tests/",
		"vendor/haxe/extra/",
		"vendor/haxe/.git/",
	}
	stdlibSyncTargets = []string{"packages/reflaxe.ocaml/std/_std/"}
)

// StdlibBoundary restricts what may be taken from the upstream Haxe
// checkout: nothing under the vendor root is tracked, and only .hx
// overrides live in the sync target.
type StdlibBoundary struct{}

func (StdlibBoundary) Name() string { return "stdlib-boundary" }

func (StdlibBoundary) Description() string {
	return "keep " + VendorRoot + " untracked and sync targets limited to .hx files"
}

func (StdlibBoundary) Run(ctx context.Context, env *Env, rep *report.Reporter) error {
	tracked := env.Files.Tracked(ctx)

	var vendored, forbidden, outsideApproved, syncTargets []string
	for _, p := range tracked {
		if scope.UnderAny(p, stdlibSyncTargets) {
			syncTargets = append(syncTargets, p)
		}
		if !scope.UnderPrefix(p, VendorRoot) {
			continue
		}
		vendored = append(vendored, p)
		if scope.UnderAny(p, forbiddenVendorRoots) {
			forbidden = append(forbidden, p)
		}
		if !scope.UnderAny(p, approvedVendorRoots) {
			outsideApproved = append(outsideApproved, p)
		}
	}

	if len(forbidden) > 0 {
		rep.Fail("forbidden upstream compiler/test paths are tracked under " + VendorRoot + ":\n" +
			report.Bullets(forbidden, vendorListLimit, len(forbidden)))
	}
	if len(outsideApproved) > 0 {
		rep.Fail("only upstream stdlib paths are ever eligible for vendoring (" + strings.Join(approvedVendorRoots, ", ") +
			"); found:\n" + report.Bullets(outsideApproved, vendorListLimit, len(outsideApproved)))
	}
	if len(vendored) > 0 {
		rep.Fail(vendorTrackedMessage(vendored))
	}
	for _, p := range syncTargets {
		if !strings.HasSuffix(p, approvedSyncExt) {
			rep.Failf("stdlib sync target contains a non-Haxe file: %s. Only checked-in %s stdlib overrides are allowed in %s.",
				p, approvedSyncExt, strings.Join(stdlibSyncTargets, ", "))
		}
	}

	if !rep.Failed() {
		rep.OK("upstream stdlib boundary (" + VendorRoot + " untracked; approved sync targets: " +
			strings.Join(stdlibSyncTargets, ", ") + ")")
	}
	return nil
}

// vendorTrackedMessage is shared with the strict version-sync variant.
func vendorTrackedMessage(vendored []string) string {
	return "tracked files under " + VendorRoot + " are not allowed in this repo. Keep " + VendorRoot +
		" untracked and sync needed stdlib files into " + strings.Join(stdlibSyncTargets, ", ") +
		". Found:\n" + report.Bullets(vendored, vendorListLimit, len(vendored))
}
