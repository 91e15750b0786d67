package guard

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reflaxe-ocaml/guards/internal/guard/policy"
	guarderrors "github.com/reflaxe-ocaml/guards/internal/pkg/errors"
	"github.com/reflaxe-ocaml/guards/internal/report"
	"github.com/reflaxe-ocaml/guards/internal/testutil"
)

const gplLicense = "                    GNU GENERAL PUBLIC LICENSE\n" +
	"                       Version 3, 29 June 2007\n\n" +
	" Copyright (C) 2007 Free Software Foundation, Inc.\n"

// releaseRepo commits a consistent set of metadata documents at version.
func releaseRepo(t *testing.T, version string) *testutil.Repo {
	t.Helper()

	return testutil.NewRepo(t).
		Add(PackageJSON, `{"name": "reflaxe.ocaml", "version": "`+version+`"}`).
		Add(PackageLockJSON, `{
  "name": "reflaxe.ocaml",
  "version": "`+version+`",
  "lockfileVersion": 3,
  "packages": {
    "": {"name": "reflaxe.ocaml", "version": "`+version+`"},
    "node_modules/lix": {"version": "15.12.0"}
  }
}`).
		Add(HaxelibJSON, `{"name": "reflaxe.ocaml", "version": "`+version+`", "license": "GPL-3.0"}`).
		Add(LibraryHXML, "-cp ${HAXE_LIBCACHE}/reflaxe.ocaml/src\n-D reflaxe.ocaml="+version+"\n").
		Add(LicenseFile, gplLicense)
}

func strictEnv(t *testing.T, r *testutil.Repo) *Env {
	t.Helper()

	markers, err := policy.LicenseMarkers()
	require.NoError(t, err)
	env := gitEnv(r)
	env.StrictLicense = true
	env.LicenseMarkers = markers
	return env
}

func TestVersionSync_Passes(t *testing.T) {
	r := releaseRepo(t, "1.2.0")

	res := runCheck(t, VersionSync{}, gitEnv(r))

	assert.False(t, res.failed, res.stderr)
	assert.Equal(t, "[ci:guards] OK: version 1.2.0\n", res.stdout)
	assert.Empty(t, res.stderr)
}

func TestVersionSync_HaxelibMismatchAndMissingLicense(t *testing.T) {
	r := releaseRepo(t, "1.2.0").
		Add(HaxelibJSON, `{"name": "reflaxe.ocaml", "version": "1.1.0", "license": "GPL-3.0"}`).
		Remove(LicenseFile)

	res := runCheck(t, VersionSync{}, gitEnv(r))

	require.True(t, res.failed)
	assert.Equal(t, 2, res.errors)
	assert.Contains(t, res.stderr, "[ci:guards] ERROR: haxelib.json version (1.1.0) != package.json version (1.2.0)\n")
	assert.Contains(t, res.stderr, "[ci:guards] ERROR: LICENSE file missing at repo root\n")
	assert.Empty(t, res.stdout)
}

func TestVersionSync_Mismatches(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		content string
		want    string
	}{
		{
			name:    "lock top-level version",
			path:    PackageLockJSON,
			content: `{"version": "1.0.0", "packages": {"": {"version": "1.2.0"}}}`,
			want:    "package-lock.json version (1.0.0) != package.json version (1.2.0)",
		},
		{
			name:    "lock root package version",
			path:    PackageLockJSON,
			content: `{"version": "1.2.0", "packages": {"": {"version": "0.9.0"}}}`,
			want:    `package-lock.json packages[""].version (0.9.0) != package.json version (1.2.0)`,
		},
		{
			name:    "lock without version",
			path:    PackageLockJSON,
			content: `{"packages": {}}`,
			want:    "package-lock.json version (missing) != package.json version (1.2.0)",
		},
		{
			name:    "hxml define differs",
			path:    LibraryHXML,
			content: "-D reflaxe.ocaml=1.1.9\n",
			want:    "haxe_libraries/reflaxe.ocaml.hxml reflaxe.ocaml define (1.1.9) != package.json version (1.2.0)",
		},
		{
			name:    "hxml define absent",
			path:    LibraryHXML,
			content: "-cp src\n",
			want:    "haxe_libraries/reflaxe.ocaml.hxml is missing -D reflaxe.ocaml=...",
		},
		{
			name:    "haxelib license",
			path:    HaxelibJSON,
			content: `{"version": "1.2.0", "license": "MIT"}`,
			want:    "haxelib.json license (MIT) != GPL-3.0",
		},
		{
			name:    "license header",
			path:    LicenseFile,
			content: "GNU GENERAL PUBLIC LICENSE\nVersion 2, June 1991\n",
			want:    "LICENSE does not look like GPLv3 (missing version header)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := releaseRepo(t, "1.2.0").Add(tt.path, tt.content)

			res := runCheck(t, VersionSync{}, gitEnv(r))

			require.True(t, res.failed)
			assert.Equal(t, 1, res.errors, res.stderr)
			assert.Equal(t, "[ci:guards] ERROR: "+tt.want+"\n", res.stderr)
		})
	}
}

func TestVersionSync_HXMLWithCRLF(t *testing.T) {
	r := releaseRepo(t, "1.2.0").Add(LibraryHXML, "-cp src\r\n-D reflaxe.ocaml=1.2.0\r\n")

	res := runCheck(t, VersionSync{}, gitEnv(r))

	assert.False(t, res.failed, res.stderr)
}

func TestVersionSync_MissingVersionStillChecksLicense(t *testing.T) {
	r := releaseRepo(t, "1.2.0").
		Add(PackageJSON, `{"name": "reflaxe.ocaml"}`).
		Add(HaxelibJSON, `{"version": "1.2.0", "license": "Apache-2.0"}`)

	res := runCheck(t, VersionSync{}, gitEnv(r))

	require.True(t, res.failed)
	assert.Equal(t, 2, res.errors)
	assert.Contains(t, res.stderr, `package.json is missing "version"`)
	assert.Contains(t, res.stderr, "haxelib.json license (Apache-2.0) != GPL-3.0")
	assert.NotContains(t, res.stderr, "!= package.json version")
}

func TestVersionSync_MissingDocument(t *testing.T) {
	r := releaseRepo(t, "1.2.0").Remove(PackageLockJSON)

	res := runCheck(t, VersionSync{}, gitEnv(r))

	require.True(t, res.failed)
	assert.Equal(t, "[ci:guards] ERROR: package-lock.json missing at repo root\n", res.stderr)
}

func TestVersionSync_MalformedJSONAborts(t *testing.T) {
	r := releaseRepo(t, "1.2.0").Add(PackageJSON, `{"version": "1.2.0",`)

	err := VersionSync{}.Run(context.Background(), gitEnv(r), report.New(io.Discard, io.Discard))
	require.Error(t, err)
	assert.True(t, errors.Is(err, guarderrors.ErrMalformedDocument))
	ge, ok := guarderrors.IsGuardError(err)
	require.True(t, ok)
	assert.Equal(t, guarderrors.CodeMetadataParse, ge.Code)
	assert.Equal(t, PackageJSON, ge.Path)

	res := runCheck(t, VersionSync{}, gitEnv(r))
	require.True(t, res.failed)
	assert.True(t, strings.HasPrefix(res.stderr, "[ci:guards] FATAL: version-sync: "), res.stderr)
	assert.Empty(t, res.stdout)
}

func TestVersionSync_NonObjectDocumentAborts(t *testing.T) {
	r := releaseRepo(t, "1.2.0").Add(HaxelibJSON, `["1.2.0"]`)

	err := VersionSync{}.Run(context.Background(), gitEnv(r), report.New(io.Discard, io.Discard))
	assert.ErrorIs(t, err, guarderrors.ErrMalformedDocument)
}

func TestVersionSync_StrictPasses(t *testing.T) {
	r := releaseRepo(t, "1.2.0").Add("README.md", "# reflaxe.ocaml\n")

	res := runCheck(t, VersionSync{}, strictEnv(t, r))

	assert.False(t, res.failed, res.stderr)
	assert.Equal(t, "[ci:guards] OK: version 1.2.0 (no forbidden license markers; vendor/haxe untracked)\n", res.stdout)
}

func TestVersionSync_StrictFlagsMarkers(t *testing.T) {
	notice := "Portions are under the GNU " + strings.Join([]string{"Lesser", "General", "Public", "License"}, " ") + ".\n"
	r := releaseRepo(t, "1.2.0").
		Add("NOTICE", notice).
		Add(LicenseFile, gplLicense+"\nSee also the GNU "+strings.Join([]string{"Affero", "General", "Public", "License"}, " ")+".\n").
		Add("vendor/third/COPYING", notice)

	res := runCheck(t, VersionSync{}, strictEnv(t, r))

	require.True(t, res.failed)
	assert.Equal(t, 1, res.errors, res.stderr)
	assert.Equal(t,
		"[ci:guards] ERROR: forbidden license markers found in tracked text:\n- NOTICE [lgpl_notice]\n",
		res.stderr)
}

func TestVersionSync_StrictFlagsVendoredUpstream(t *testing.T) {
	r := releaseRepo(t, "1.2.0").Add("vendor/haxe/std/Array.hx", "class Array {}\n")

	res := runCheck(t, VersionSync{}, strictEnv(t, r))

	require.True(t, res.failed)
	assert.Equal(t, 1, res.errors)
	assert.Contains(t, res.stderr, "tracked files under vendor/haxe are not allowed in this repo.")
	assert.Contains(t, res.stderr, "- vendor/haxe/std/Array.hx")

	res = runCheck(t, VersionSync{}, gitEnv(r))
	assert.False(t, res.failed, "non-strict mode ignores vendored files")
}
