package bridge

import (
	"sync"
	"time"
)

// Future is a one-shot result cell used to deliver a task's outcome
// across a goroutine boundary. It starts pending and settles exactly
// once, to either a value or an error. Settling an already-settled
// future is a programming error and panics rather than being silently
// ignored.
//
// Observers registered while pending run exactly once on settlement;
// observers registered afterwards run immediately with the stored
// result. Where observers run is fixed at construction: NewFuture
// runs them on whichever goroutine settles the future, while
// NewFutureOn hands them to an explicit delivery target (Defer uses
// this to put observers on the loop goroutine no matter which worker
// produced the value).
//
// Type parameters:
//   - T: The result type carried by the future
type Future[T any] struct {
	deliver func(func())

	mu        sync.Mutex
	settled   bool
	value     T
	err       error
	observers []func(T, error)
	done      chan struct{}
}

// NewFuture creates a pending future whose observers run on the
// settling goroutine.
func NewFuture[T any]() *Future[T] {
	return NewFutureOn[T](nil)
}

// NewFutureOn creates a pending future whose observers are handed to
// deliver instead of running on the settling goroutine. A nil deliver
// behaves like NewFuture.
func NewFutureOn[T any](deliver func(func())) *Future[T] {
	return &Future[T]{
		deliver: deliver,
		done:    make(chan struct{}),
	}
}

// Fulfill settles the future with a value. It panics if the future is
// already settled.
func (f *Future[T]) Fulfill(value T) {
	f.settle(value, nil)
}

// Fail settles the future with an error. It panics if the future is
// already settled or if err is nil.
func (f *Future[T]) Fail(err error) {
	if err == nil {
		panic("bridge: future failed with nil error")
	}
	var zero T
	f.settle(zero, err)
}

func (f *Future[T]) settle(value T, err error) {
	f.mu.Lock()
	if f.settled {
		f.mu.Unlock()
		panic("bridge: future already settled")
	}
	f.settled = true
	f.value = value
	f.err = err
	observers := f.observers
	f.observers = nil
	close(f.done)
	f.mu.Unlock()

	for _, fn := range observers {
		f.dispatch(fn)
	}
}

func (f *Future[T]) dispatch(fn func(T, error)) {
	if f.deliver == nil {
		fn(f.value, f.err)
		return
	}
	f.deliver(func() { fn(f.value, f.err) })
}

// Observe registers fn to be called with the settled result. On a
// pending future it runs exactly once upon settlement; on a settled
// future it runs immediately. Delivery follows the future's
// construction-time target.
func (f *Future[T]) Observe(fn func(T, error)) {
	f.mu.Lock()
	if !f.settled {
		f.observers = append(f.observers, fn)
		f.mu.Unlock()
		return
	}
	f.mu.Unlock()
	f.dispatch(fn)
}

// Get blocks until the future settles and returns its result. Safe to
// call from multiple goroutines; every caller sees the same result.
func (f *Future[T]) Get() (T, error) {
	<-f.done
	return f.value, f.err
}

// GetWithTimeout is Get with an upper bound on the wait. It returns
// ErrFutureTimeout if the future is still pending when d elapses.
func (f *Future[T]) GetWithTimeout(d time.Duration) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-time.After(d):
		var zero T
		return zero, ErrFutureTimeout
	}
}

// IsReady reports whether the future has settled, without blocking.
func (f *Future[T]) IsReady() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}
