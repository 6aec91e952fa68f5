package worker

import (
	"github.com/utkarsh5026/weft/pool"
)

// PoolWorker is a Worker view of a pool.Pool: tasks fan out to any
// idle pool worker, with no ordering guarantee across tasks beyond
// "dispatch is attempted in submission order". Use it for independent
// blocking calls; use a SerialWorker or ThreadWorker for work that
// must not interleave.
//
// PoolWorker owns the pool it wraps: Quit stops the pool, letting
// accepted tasks finish.
type PoolWorker struct {
	pool *pool.Pool
	quit quitFlag
}

// NewPoolWorker wraps p, taking ownership of it. The pool must
// already be started.
func NewPoolWorker(p *pool.Pool) *PoolWorker {
	return &PoolWorker{pool: p}
}

// Do submits task to the pool. Returns ErrAlreadyQuit after Quit; a
// pool stopped out from under the worker surfaces as
// pool.ErrPoolStopped.
func (w *PoolWorker) Do(task func()) error {
	if task == nil {
		return ErrNilTask
	}
	if err := w.quit.check(); err != nil {
		return err
	}
	return w.pool.Submit(task)
}

// Quit stops the wrapped pool, waiting for accepted tasks to finish.
// Idempotent.
func (w *PoolWorker) Quit() {
	if !w.quit.set() {
		return
	}
	_ = w.pool.Stop(0)
}
