package worker

import (
	"sync"

	"github.com/utkarsh5026/weft/internal/goid"
)

// LockWorker serializes tasks with a mutex and runs them inline on
// the calling goroutine. Do blocks until the task has run, and a
// panicking task propagates to the caller like any local call.
//
// Reentrant submissions are safe: a task that calls Do on its own
// LockWorker does not deadlock. The nested task is queued and run by
// the outermost Do, still under the lock and still in order, before
// that outermost call returns.
//
// A LockWorker owns no goroutine, which makes it the cheapest way to
// get "mutually exclusive, ordered" semantics when the caller's own
// goroutine is an acceptable place to run.
type LockWorker struct {
	mu   sync.Mutex
	quit quitFlag

	// nested tracks goroutines currently inside Do, mapping each to
	// the tasks it has resubmitted reentrantly.
	nestedMu sync.Mutex
	nested   map[uint64][]func()
}

// NewLockWorker creates a LockWorker.
func NewLockWorker() *LockWorker {
	return &LockWorker{nested: make(map[uint64][]func())}
}

// Do runs task under the worker's lock, on the calling goroutine.
// When called from inside a task already running on this worker, the
// new task is deferred until the current one finishes rather than
// deadlocking. Returns ErrAlreadyQuit after Quit.
func (w *LockWorker) Do(task func()) error {
	if task == nil {
		return ErrNilTask
	}
	if err := w.quit.check(); err != nil {
		return err
	}

	g := goid.ID()
	w.nestedMu.Lock()
	if queued, ok := w.nested[g]; ok {
		w.nested[g] = append(queued, task)
		w.nestedMu.Unlock()
		return nil
	}
	w.nested[g] = nil
	w.nestedMu.Unlock()

	defer func() {
		w.nestedMu.Lock()
		delete(w.nested, g)
		w.nestedMu.Unlock()
	}()

	w.mu.Lock()
	defer w.mu.Unlock()

	task()
	for {
		w.nestedMu.Lock()
		queued := w.nested[g]
		if len(queued) == 0 {
			w.nestedMu.Unlock()
			return nil
		}
		next := queued[0]
		w.nested[g] = queued[1:]
		w.nestedMu.Unlock()
		next()
	}
}

// Quit rejects all future work. Idempotent; it does not wait for a
// task currently holding the lock.
func (w *LockWorker) Quit() {
	w.quit.set()
}
