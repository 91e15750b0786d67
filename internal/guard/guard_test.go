package guard

import (
	"bytes"
	"context"
	"path"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	guarderrors "github.com/reflaxe-ocaml/guards/internal/pkg/errors"
	"github.com/reflaxe-ocaml/guards/internal/repo"
	"github.com/reflaxe-ocaml/guards/internal/report"
	"github.com/reflaxe-ocaml/guards/internal/testutil"
)

// runResult captures what a check printed.
type runResult struct {
	stdout string
	stderr string
	failed bool
	errors int
}

func gitEnv(r *testutil.Repo) *Env {
	return &Env{Root: r.Root, Files: repo.NewEnumerator(repo.NewGoGit(r.Root), nil)}
}

func listEnv(root string, tracked ...string) *Env {
	return &Env{Root: root, Files: repo.NewEnumerator(testutil.StaticLister{TrackedPaths: tracked}, nil)}
}

func runCheck(t *testing.T, c Check, env *Env) runResult {
	t.Helper()

	var out, errOut bytes.Buffer
	rep := report.New(&out, &errOut)
	failed := Execute(context.Background(), c, env, rep)
	return runResult{stdout: out.String(), stderr: errOut.String(), failed: failed, errors: rep.ErrorCount()}
}

// Fixture text is assembled from parts so this file carries none of the
// literals the guards look for.
func legacyPackagePath(rest ...string) string {
	return path.Join(append([]string{"packages", "hih-compiler"}, rest...)...)
}

func homePath(parts ...string) string {
	return path.Join(append([]string{"/", "home"}, parts...)...)
}

func macPath(parts ...string) string {
	return path.Join(append([]string{"/", "Users"}, parts...)...)
}

func windowsPath(parts ...string) string {
	return strings.Join(append([]string{"C:", "Users"}, parts...), `\\`)
}

func TestAll_UniqueNames(t *testing.T) {
	seen := map[string]bool{}
	for _, c := range All() {
		require.False(t, seen[c.Name()], "duplicate check %s", c.Name())
		seen[c.Name()] = true
		assert.NotEmpty(t, c.Description())
	}
	assert.Len(t, seen, 5)
}

func TestLookup(t *testing.T) {
	c, ok := Lookup("local-path")
	require.True(t, ok)
	assert.Equal(t, "local-path", c.Name())

	_, ok = Lookup("nope")
	assert.False(t, ok)
}

func TestSelect(t *testing.T) {
	all, err := Select(nil)
	require.NoError(t, err)
	assert.Len(t, all, len(All()))

	picked, err := Select([]string{"version-sync", "legacy-path", "version-sync"})
	require.NoError(t, err)
	require.Len(t, picked, 2)
	assert.Equal(t, "version-sync", picked[0].Name())
	assert.Equal(t, "legacy-path", picked[1].Name())

	_, err = Select([]string{"legacy-path", "spelling"})
	require.ErrorIs(t, err, guarderrors.ErrUnknownCheck)
	ge, ok := guarderrors.IsGuardError(err)
	require.True(t, ok)
	assert.Equal(t, guarderrors.CodeCheckUnknown, ge.Code)
	assert.Contains(t, err.Error(), "spelling")
}

func TestEnv_NoRepositoryPassesVacuously(t *testing.T) {
	env := gitEnv(&testutil.Repo{Root: t.TempDir()})

	for _, c := range []Check{LegacyPath{}, LocalPath{}, StdlibBoundary{}} {
		t.Run(c.Name(), func(t *testing.T) {
			res := runCheck(t, c, env)
			assert.False(t, res.failed)
			assert.Empty(t, res.stderr)
			assert.True(t, strings.HasPrefix(res.stdout, "[ci:guards] OK: "))
		})
	}
}
