package guard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	guarderrors "github.com/reflaxe-ocaml/guards/internal/pkg/errors"
	"github.com/reflaxe-ocaml/guards/internal/pkg/worker"
	"github.com/reflaxe-ocaml/guards/internal/report"
)

// Execute runs one check and reports an abort as a FATAL line.
// It returns true when the check failed for any reason.
func Execute(ctx context.Context, c Check, env *Env, rep *report.Reporter) bool {
	log := env.logger().With(zap.String("check", c.Name()))
	start := time.Now()

	scoped := *env
	scoped.Log = log

	if err := run(ctx, c, &scoped, rep); err != nil {
		fields := []zap.Field{zap.Error(err)}
		if ge, ok := guarderrors.IsGuardError(err); ok {
			fields = append(fields, zap.String("code", ge.Code))
		}
		log.Error("check aborted", fields...)
		rep.Fatal(fmt.Errorf("%s: %w", c.Name(), err))
	}

	log.Debug("check finished",
		zap.Bool("failed", rep.Failed()),
		zap.Int("errors", rep.ErrorCount()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return rep.Failed()
}

// run converts a panic inside a check into an error so one broken check
// cannot take the others down with it.
func run(ctx context.Context, c Check, env *Env, rep *report.Reporter) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = guarderrors.ErrCheckAbortedf(p)
		}
	}()
	return c.Run(ctx, env, rep)
}

// Outcome is the buffered output of one check run by RunAll.
type Outcome struct {
	Name   string
	Failed bool
	Stdout bytes.Buffer
	Stderr bytes.Buffer

	// ran is set by the pool task; a task dropped after cancellation
	// leaves it false.
	ran bool
}

// skipped records a check whose task never ran as a failure.
func (o *Outcome) skipped(cause error) {
	if cause == nil {
		cause = errors.New("task was not run")
	}
	report.New(&o.Stdout, &o.Stderr).Fatal(fmt.Errorf("%s: not run: %w", o.Name, cause))
	o.Failed = true
}

// RunAll runs checks on a worker pool, each against its own buffered
// reporter, and then writes their output in the order given.
// It returns true when any check failed.
// A non-positive poolSize uses the default pool size.
func RunAll(ctx context.Context, checks []Check, env *Env, poolSize int, out, errOut io.Writer) (bool, error) {
	cfg := worker.DefaultPoolConfig()
	if poolSize > 0 {
		cfg.Size = poolSize
	}
	log := env.logger()
	pool, err := worker.NewPool(cfg, log)
	if err != nil {
		return false, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Shutdown(30 * time.Second)

	outcomes := make([]*Outcome, len(checks))
	for i, c := range checks {
		c := c // per-iteration copy; go.mod targets go1.21 loop semantics
		o := &Outcome{Name: c.Name()}
		outcomes[i] = o
		if err := pool.Submit(ctx, func(ctx context.Context) {
			o.ran = true
			rep := report.New(&o.Stdout, &o.Stderr)
			o.Failed = Execute(ctx, c, env, rep)
		}); err != nil {
			pool.Wait()
			return false, fmt.Errorf("submit %s: %w", c.Name(), err)
		}
	}
	metrics := pool.Metrics()
	log.Debug("checks submitted",
		zap.Int("checks", len(checks)),
		zap.Int("running", metrics["running"]),
		zap.Int("free", metrics["free"]),
		zap.Int("cap", metrics["cap"]),
	)
	pool.Wait()

	failed := false
	for _, o := range outcomes {
		if !o.ran {
			o.skipped(ctx.Err())
		}
		if _, err := o.Stdout.WriteTo(out); err != nil {
			return false, err
		}
		if _, err := o.Stderr.WriteTo(errOut); err != nil {
			return false, err
		}
		failed = failed || o.Failed
	}
	return failed, nil
}
