// Package callqueue implements the thread-safe, unbounded FIFO of
// pending calls that the loop and dedicated workers drain.
//
// A Queue carries zero-argument callables from any number of producer
// goroutines to a single consuming side. Producers never block. The
// consumer waits on the Wake channel, then takes either one call (Pop)
// or a snapshot of everything currently queued (Drain). Calls pushed
// while a drain is executing land in the next snapshot, never the
// current one.
package callqueue

import (
	"sync"

	"github.com/eapache/queue"
)

// Queue is a multi-producer FIFO with a single-consumer wake signal.
// The zero value is not usable; call New.
type Queue struct {
	mu     sync.Mutex
	ring   *queue.Queue
	wake   chan struct{}
	closed bool
}

// New creates an empty, open queue.
func New() *Queue {
	return &Queue{
		ring: queue.New(),
		wake: make(chan struct{}, 1),
	}
}

// Push enqueues task and signals the consumer. It never blocks.
// It reports whether the task was accepted; pushes after Close are
// rejected so a racing producer cannot slip work past the final drain.
func (q *Queue) Push(task func()) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.ring.Add(task)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
	return true
}

// Wake returns the channel the consumer should block on. The channel
// carries at most one pending signal; after receiving, the consumer
// must Drain (or Pop until empty) before blocking again.
func (q *Queue) Wake() <-chan struct{} {
	return q.wake
}

// Drain removes and returns everything currently queued, in FIFO
// order. Tasks enqueued concurrently with Drain are left for the next
// call.
func (q *Queue) Drain() []func() {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := q.ring.Length()
	if n == 0 {
		return nil
	}
	tasks := make([]func(), 0, n)
	for range_i := 0; range_i < n; range_i++ {
		tasks = append(tasks, q.ring.Remove().(func()))
	}
	return tasks
}

// Pop removes and returns the oldest queued task, if any.
func (q *Queue) Pop() (func(), bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.ring.Length() == 0 {
		return nil, false
	}
	return q.ring.Remove().(func()), true
}

// Len returns the number of queued tasks.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.ring.Length()
}

// Close rejects all future pushes. Tasks already queued remain
// drainable; Close does not discard them.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
}
