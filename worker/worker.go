// Package worker defines the minimal capability an execution context
// exposes — Do and Quit — and the concrete variants applications
// compose into coordination policies.
//
// The point of the two-method interface is that coordination policy
// stays with the caller instead of leaking into implementations. Code
// guarding a stateful blocking resource (say, one long-lived
// connection) asks for a SerialWorker and gets strictly ordered,
// never-concurrent access; unrelated independent blocking calls go to
// a PoolWorker and fan out across a bounded pool. Neither party holds
// a lock the other can see, and neither policy can starve the other's
// backing resources.
//
// Variants:
//
//   - ThreadWorker: one dedicated goroutine draining a private FIFO
//   - SerialWorker: ordering combinator over any underlying Worker
//   - PoolWorker: fan-out over a pool.Pool
//   - LockWorker: mutex-serialized inline execution on the caller
//   - LoopWorker: a Worker view of an event loop
package worker

import (
	"errors"
	"sync/atomic"
)

var (
	// ErrAlreadyQuit is returned by Do once Quit has been called on a
	// worker. Work accepted before Quit still runs to completion.
	ErrAlreadyQuit = errors.New("worker: already quit")

	// ErrNilTask is returned by Do when the task is nil.
	ErrNilTask = errors.New("worker: nil task submitted")
)

// Worker is a place code can run. Do executes a task within the
// worker's execution context, synchronously or not relative to the
// caller depending on the variant. Quit permanently stops the worker
// from accepting work and releases whatever goroutine or resource it
// owns; it does not cancel work already accepted. Quit is idempotent.
//
// Combinators that wrap another Worker own it and propagate Quit to
// it once their own accepted work has drained.
type Worker interface {
	Do(task func()) error
	Quit()
}

// quitFlag is the one-way Active -> Quit latch shared by the worker
// variants.
type quitFlag struct {
	quit atomic.Bool
}

// set latches the flag, reporting whether this call was the one that
// flipped it.
func (q *quitFlag) set() bool {
	return q.quit.CompareAndSwap(false, true)
}

func (q *quitFlag) check() error {
	if q.quit.Load() {
		return ErrAlreadyQuit
	}
	return nil
}
