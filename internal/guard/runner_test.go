package guard

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	guarderrors "github.com/reflaxe-ocaml/guards/internal/pkg/errors"
	"github.com/reflaxe-ocaml/guards/internal/report"
)

// stubCheck is a Check whose behavior is fixed by its fields.
type stubCheck struct {
	name  string
	fail  string
	err   error
	panic bool
	delay time.Duration

	// hold, when set, is called before the check reports.
	hold func()
}

func (s stubCheck) Name() string        { return s.name }
func (s stubCheck) Description() string { return "stub " + s.name }

func (s stubCheck) Run(ctx context.Context, _ *Env, rep *report.Reporter) error {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if s.hold != nil {
		s.hold()
	}
	if s.panic {
		panic("boom")
	}
	if s.err != nil {
		return s.err
	}
	if s.fail != "" {
		rep.Fail(s.fail)
		return nil
	}
	rep.OK(s.name + " clean")
	return nil
}

func TestExecute_ReportsAbortAsFatal(t *testing.T) {
	var out, errOut bytes.Buffer
	rep := report.New(&out, &errOut)

	failed := Execute(context.Background(), stubCheck{name: "broken", err: errors.New("bad input")}, &Env{}, rep)

	assert.True(t, failed)
	assert.Equal(t, "[ci:guards] FATAL: broken: bad input\n", errOut.String())
	assert.Empty(t, out.String())
}

func TestExecute_RecoversPanic(t *testing.T) {
	var out, errOut bytes.Buffer
	rep := report.New(&out, &errOut)

	failed := Execute(context.Background(), stubCheck{name: "explodes", panic: true}, &Env{}, rep)

	assert.True(t, failed)
	assert.Equal(t, "[ci:guards] FATAL: explodes: CHECK_ABORTED: check aborted: boom\n", errOut.String())
}

func TestRun_PanicIsCheckAborted(t *testing.T) {
	err := run(context.Background(), stubCheck{name: "explodes", panic: true}, &Env{}, report.New(io.Discard, io.Discard))

	ge, ok := guarderrors.IsGuardError(err)
	require.True(t, ok)
	assert.Equal(t, guarderrors.CodeCheckAborted, ge.Code)
}

func TestRunAll_OutputFollowsCheckOrder(t *testing.T) {
	checks := []Check{
		stubCheck{name: "first", delay: 30 * time.Millisecond},
		stubCheck{name: "second", fail: "second is broken"},
		stubCheck{name: "third", delay: 10 * time.Millisecond},
		stubCheck{name: "fourth", err: errors.New("aborted")},
	}

	var out, errOut bytes.Buffer
	failed, err := RunAll(context.Background(), checks, &Env{}, 4, &out, &errOut)

	require.NoError(t, err)
	assert.True(t, failed)
	assert.Equal(t, "[ci:guards] OK: first clean\n[ci:guards] OK: third clean\n", out.String())
	assert.Equal(t,
		"[ci:guards] ERROR: second is broken\n[ci:guards] FATAL: fourth: aborted\n",
		errOut.String())
}

func TestRunAll_AllPass(t *testing.T) {
	checks := []Check{stubCheck{name: "a"}, stubCheck{name: "b"}}

	var out, errOut bytes.Buffer
	failed, err := RunAll(context.Background(), checks, &Env{}, 1, &out, &errOut)

	require.NoError(t, err)
	assert.False(t, failed)
	assert.Equal(t, "[ci:guards] OK: a clean\n[ci:guards] OK: b clean\n", out.String())
	assert.Empty(t, errOut.String())
}

func TestRunAll_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out, errOut bytes.Buffer
	_, err := RunAll(ctx, []Check{stubCheck{name: "a"}}, &Env{}, 1, &out, &errOut)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunAll_RealChecksOnEmptyDirectory(t *testing.T) {
	env := listEnv(t.TempDir())

	var out, errOut bytes.Buffer
	failed, err := RunAll(context.Background(), All(), env, 2, &out, &errOut)

	require.NoError(t, err)
	assert.True(t, failed, "version-sync needs metadata documents")
	assert.Contains(t, out.String(), "[ci:guards] OK: no forbidden legacy paths found\n")
	assert.Contains(t, errOut.String(), "[ci:guards] ERROR: package.json missing at repo root\n")
}

func TestRunAll_DefaultPoolSize(t *testing.T) {
	var out, errOut bytes.Buffer
	failed, err := RunAll(context.Background(), []Check{stubCheck{name: "a"}}, &Env{}, 0, &out, &errOut)

	require.NoError(t, err)
	assert.False(t, failed)
	assert.Equal(t, "[ci:guards] OK: a clean\n", out.String())
}

func TestRunAll_CheckDroppedAfterCancelFails(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	started := make(chan struct{})
	release := make(chan struct{})
	first := stubCheck{name: "first", hold: func() {
		close(started)
		<-release
	}}

	go func() { //nolint:naked-goroutine // test driver
		<-started
		// Give RunAll time to queue the second check behind the single worker.
		time.Sleep(100 * time.Millisecond)
		cancel()
		close(release)
	}()

	var out, errOut bytes.Buffer
	failed, err := RunAll(ctx, []Check{first, stubCheck{name: "second"}}, &Env{}, 1, &out, &errOut)

	require.NoError(t, err)
	assert.True(t, failed)
	assert.Equal(t, "[ci:guards] OK: first clean\n", out.String())
	assert.Equal(t, "[ci:guards] FATAL: second: not run: context canceled\n", errOut.String())
}

func TestOutcome_Skipped(t *testing.T) {
	o := &Outcome{Name: "version-sync"}
	o.skipped(nil)

	assert.True(t, o.Failed)
	assert.Empty(t, o.Stdout.String())
	assert.Equal(t, "[ci:guards] FATAL: version-sync: not run: task was not run\n", o.Stderr.String())
}
