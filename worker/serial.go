package worker

import (
	"sync"

	"github.com/eapache/queue"
)

// SerialWorker guarantees that tasks submitted to it run strictly in
// submission order and never concurrently with each other, whatever
// the underlying Worker's own concurrency. Wrapping a PoolWorker, for
// example, yields ordered, mutually exclusive access to a resource
// while still borrowing the pool's goroutines to run on.
//
// At most one task is in flight on the underlying worker at a time;
// the rest wait in a private FIFO and are pumped one by one as each
// task finishes. SerialWorker owns the Worker it wraps: Quit lets
// already-accepted tasks drain, then propagates to the underlying
// worker.
type SerialWorker struct {
	underlying Worker

	mu      sync.Mutex
	pending *queue.Queue // FIFO of func()
	active  bool         // a task is in flight on the underlying worker
	quit    bool
}

// NewSerialWorker wraps underlying, taking ownership of it.
func NewSerialWorker(underlying Worker) *SerialWorker {
	return &SerialWorker{
		underlying: underlying,
		pending:    queue.New(),
	}
}

// Do schedules task to run after every previously submitted task has
// finished. It never blocks. Returns ErrAlreadyQuit after Quit, or the
// underlying worker's error if it rejects the dispatch.
func (s *SerialWorker) Do(task func()) error {
	if task == nil {
		return ErrNilTask
	}

	s.mu.Lock()
	if s.quit {
		s.mu.Unlock()
		return ErrAlreadyQuit
	}
	if s.active {
		s.pending.Add(task)
		s.mu.Unlock()
		return nil
	}
	s.active = true
	s.mu.Unlock()

	return s.dispatch(task)
}

// Quit stops accepting tasks. Tasks already accepted still run, in
// order; once the queue drains, Quit propagates to the underlying
// worker. Idempotent.
func (s *SerialWorker) Quit() {
	s.mu.Lock()
	if s.quit {
		s.mu.Unlock()
		return
	}
	s.quit = true
	idle := !s.active
	s.mu.Unlock()

	if idle {
		s.underlying.Quit()
	}
}

// dispatch sends one task to the underlying worker. The wrapper pumps
// the next pending task when this one finishes, panic or not.
func (s *SerialWorker) dispatch(task func()) error {
	err := s.underlying.Do(func() {
		defer s.next()
		task()
	})
	if err != nil {
		// The underlying worker is gone; nothing further can run.
		s.mu.Lock()
		s.quit = true
		s.active = false
		s.mu.Unlock()
	}
	return err
}

func (s *SerialWorker) next() {
	s.mu.Lock()
	if s.pending.Length() > 0 {
		task := s.pending.Remove().(func())
		s.mu.Unlock()
		_ = s.dispatch(task)
		return
	}
	s.active = false
	propagate := s.quit
	s.mu.Unlock()

	if propagate {
		s.underlying.Quit()
	}
}
