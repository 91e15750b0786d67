package guard

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	"github.com/tidwall/gjson"

	guarderrors "github.com/reflaxe-ocaml/guards/internal/pkg/errors"
	"github.com/reflaxe-ocaml/guards/internal/repo"
	"github.com/reflaxe-ocaml/guards/internal/report"
	"github.com/reflaxe-ocaml/guards/internal/rules"
	"github.com/reflaxe-ocaml/guards/internal/scope"
)

// Metadata documents compared by the version-sync check.
const (
	PackageJSON     = "package.json"
	PackageLockJSON = "package-lock.json"
	HaxelibJSON     = "haxelib.json"
	LibraryHXML     = "haxe_libraries/reflaxe.ocaml.hxml"
	LicenseFile     = "LICENSE"

	hxmlDefine      = "reflaxe.ocaml"
	expectedLicense = "GPL-3.0"
	markerListLimit = 40
)

var licenseHeaders = []struct {
	text    string
	problem string
}{
	{"GNU GENERAL PUBLIC LICENSE", "LICENSE does not look like GNU GPL (missing header)"},
	{"Version 3, 29 June 2007", "LICENSE does not look like GPLv3 (missing version header)"},
}

var hxmlVersionDirective = regexp.MustCompile(`(?m)^-D\s+` + regexp.QuoteMeta(hxmlDefine) + `=(\S+)\s*$`)

var licenseMarkerScope = scope.New(
	".beads/",
	"vendor/",
	"packages/hxhx/bootstrap_out/",
	"packages/hxhx-macro-host/bootstrap_out/",
	LicenseFile,
)

// VersionSync keeps the release version and license identical across the
// package descriptors, the lock file and the library hxml.
type VersionSync struct{}

func (VersionSync) Name() string { return "version-sync" }

func (VersionSync) Description() string {
	return "keep version and license consistent across package metadata"
}

func (VersionSync) Run(ctx context.Context, env *Env, rep *report.Reporter) error {
	pkg, pkgOK, err := readJSON(env.Root, PackageJSON, rep)
	if err != nil {
		return err
	}
	lock, lockOK, err := readJSON(env.Root, PackageLockJSON, rep)
	if err != nil {
		return err
	}
	haxelib, haxelibOK, err := readJSON(env.Root, HaxelibJSON, rep)
	if err != nil {
		return err
	}

	version := ""
	if pkgOK {
		version = pkg.Get("version").String()
		if version == "" {
			rep.Fail(`package.json is missing "version"`)
		}
	}

	if version != "" {
		if lockOK {
			if got := lock.Get("version"); got.String() != version {
				rep.Failf("package-lock.json version (%s) != package.json version (%s)", show(got), version)
			}
			if root := lockRootVersion(lock); root != "" && root != version {
				rep.Failf(`package-lock.json packages[""].version (%s) != package.json version (%s)`, root, version)
			}
		}
		if haxelibOK {
			if got := haxelib.Get("version"); got.String() != version {
				rep.Failf("haxelib.json version (%s) != package.json version (%s)", show(got), version)
			}
		}
		checkHXML(env.Root, version, rep)
	}

	if haxelibOK {
		if got := haxelib.Get("license"); got.String() != expectedLicense {
			rep.Failf("haxelib.json license (%s) != %s", show(got), expectedLicense)
		}
	}
	checkLicenseFile(env.Root, rep)

	if env.StrictLicense {
		checkLicenseMarkers(ctx, env, rep)
	}

	if rep.Failed() {
		return nil
	}
	if env.StrictLicense {
		rep.OK("version " + version + " (no forbidden license markers; " + VendorRoot + " untracked)")
		return nil
	}
	rep.OK("version " + version)
	return nil
}

// readJSON loads a metadata document. A missing or unreadable file is a
// reported violation; a file that is not JSON aborts the run.
func readJSON(root, path string, rep *report.Reporter) (gjson.Result, bool, error) {
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(path)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			rep.Failf("%s missing at repo root", path)
		} else {
			rep.Failf("%s unreadable: %v", path, err)
		}
		return gjson.Result{}, false, nil
	}
	if !gjson.ValidBytes(data) {
		return gjson.Result{}, false, guarderrors.ErrMetadataParsef(path, errors.New("invalid JSON"))
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return gjson.Result{}, false, guarderrors.ErrMetadataParsef(path, errors.New("top-level value is not an object"))
	}
	return doc, true, nil
}

// lockRootVersion returns packages[""].version; the empty key cannot be
// addressed with a gjson path.
func lockRootVersion(lock gjson.Result) string {
	var version string
	lock.Get("packages").ForEach(func(key, value gjson.Result) bool {
		if key.String() == "" {
			version = value.Get("version").String()
			return false
		}
		return true
	})
	return version
}

func checkHXML(root, version string, rep *report.Reporter) {
	text, ok := repo.ReadText(root, LibraryHXML)
	if !ok {
		rep.Failf("%s missing or unreadable", LibraryHXML)
		return
	}
	m := hxmlVersionDirective.FindStringSubmatch(text)
	switch {
	case m == nil:
		rep.Failf("%s is missing -D %s=...", LibraryHXML, hxmlDefine)
	case m[1] != version:
		rep.Failf("%s %s define (%s) != package.json version (%s)", LibraryHXML, hxmlDefine, m[1], version)
	}
}

func checkLicenseFile(root string, rep *report.Reporter) {
	if !repo.Exists(root, LicenseFile) {
		rep.Fail("LICENSE file missing at repo root")
		return
	}
	text, ok := repo.ReadText(root, LicenseFile)
	if !ok {
		rep.Fail("LICENSE is not readable as UTF-8 text")
		return
	}
	for _, h := range licenseHeaders {
		if !rules.ContainsAll(text, h.text) {
			rep.Fail(h.problem)
		}
	}
}

func checkLicenseMarkers(ctx context.Context, env *Env, rep *report.Reporter) {
	if vendored := env.Files.TrackedUnder(ctx, VendorRoot); len(vendored) > 0 {
		rep.Fail(vendorTrackedMessage(vendored))
	}

	var res rules.Result
	env.readInScope(env.Files.Tracked(ctx), licenseMarkerScope, func(path, text string) bool {
		res.Add(rules.Contains(path, text, env.LicenseMarkers)...)
		return true
	})
	if !res.Passed() {
		rep.Fail("forbidden license markers found in tracked text:\n" + report.Violations(res, markerListLimit))
	}
}

func show(r gjson.Result) string {
	if !r.Exists() {
		return "missing"
	}
	return fmt.Sprint(r.Value())
}
