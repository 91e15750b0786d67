// Package worker provides goroutine pool management for running several
// guard checks side by side.
//
// Naked goroutines are not used; all concurrency goes through Pool with
// context propagation. A single check never runs on more than one worker.
//
// Import Path: github.com/reflaxe-ocaml/guards/internal/pkg/worker
package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
)

// ErrPoolClosed is returned when submitting to a closed pool.
var ErrPoolClosed = errors.New("worker pool is closed")

// Task is a context-aware task function.
type Task func(ctx context.Context)

// Pool wraps ants.Pool with context-aware submission and a wait group so
// callers can block until every submitted task has finished.
type Pool struct {
	pool *ants.Pool
	name string
	log  *zap.Logger
	wg   sync.WaitGroup
}

// PoolConfig contains Worker Pool configuration.
type PoolConfig struct {
	Name string
	Size int
}

// DefaultPoolConfig returns default configuration.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{Name: "checks", Size: 5}
}

// NewPool creates a worker pool.
func NewPool(cfg PoolConfig, log *zap.Logger) (*Pool, error) {
	if log == nil {
		log = zap.NewNop()
	}

	// Unified panic recovery
	panicHandler := func(p interface{}) {
		log.Error("Worker panic recovered",
			zap.String("pool", cfg.Name),
			zap.Any("panic", p),
			zap.Stack("stack"),
		)
	}

	a, err := ants.NewPool(cfg.Size,
		ants.WithPanicHandler(panicHandler),
		ants.WithNonblocking(false),
		ants.WithExpiryDuration(10*time.Second),
	)
	if err != nil {
		return nil, err
	}
	return &Pool{pool: a, name: cfg.Name, log: log}, nil
}

// Submit submits a context-aware task.
// If context is already cancelled, returns ctx.Err() immediately without submitting.
func (p *Pool) Submit(ctx context.Context, task Task) error {
	// Fast path: check if context is already cancelled
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	p.wg.Add(1)
	err := p.pool.Submit(func() {
		defer p.wg.Done()

		// Check context again inside worker (may have been cancelled while queued)
		select {
		case <-ctx.Done():
			p.log.Debug("Task skipped: context cancelled",
				zap.String("pool", p.name),
				zap.Error(ctx.Err()),
			)
			return
		default:
		}
		task(ctx)
	})
	if err != nil {
		p.wg.Done()
		if errors.Is(err, ants.ErrPoolClosed) {
			return ErrPoolClosed
		}
		return err
	}
	return nil
}

// Wait blocks until every submitted task has returned.
func (p *Pool) Wait() {
	p.wg.Wait()
}

// Shutdown waits for running tasks (max timeout) and releases the workers.
func (p *Pool) Shutdown(timeout time.Duration) {
	if err := p.pool.ReleaseTimeout(timeout); err != nil {
		p.log.Warn("Pool shutdown timeout", zap.String("pool", p.name), zap.Error(err))
	}
}

// Metrics returns pool metrics for observability.
func (p *Pool) Metrics() map[string]int {
	return map[string]int{
		"running": p.pool.Running(),
		"free":    p.pool.Free(),
		"cap":     p.pool.Cap(),
	}
}
