// Package bridge moves task results across the boundary between the
// loop goroutine and pool workers, in both directions.
//
// Defer runs a task on the pool and returns a Future that settles with
// the task's result; observers registered on that future always run on
// the loop goroutine, no matter which worker produced the value.
// BlockingCall goes the other way: it runs a task on the loop
// goroutine and blocks the calling worker until the result is back,
// making a loop-thread call look like an ordinary local call apart
// from the added latency.
//
// Errors and panics raised by a task never escape the goroutine that
// ran it; they travel inside the future or the blocking call's return
// value and surface at the final synchronous boundary.
package bridge

import (
	"github.com/utkarsh5026/weft/loop"
	"github.com/utkarsh5026/weft/pool"
)

// Bridge ties one Loop to one Pool. Multiple bridges over distinct
// loops and pools can coexist in a process; there is no shared state
// between them.
type Bridge struct {
	loop *loop.Loop
	pool *pool.Pool
}

// New creates a bridge between l and p.
func New(l *loop.Loop, p *pool.Pool) *Bridge {
	return &Bridge{loop: l, pool: p}
}

// Loop returns the loop this bridge targets.
func (b *Bridge) Loop() *loop.Loop { return b.loop }

// Pool returns the pool this bridge targets.
func (b *Bridge) Pool() *pool.Pool { return b.pool }

type outcome[T any] struct {
	value T
	err   error
}

// Defer submits task to the pool and immediately returns a pending
// Future for its result. The future fails with the task's error, with
// a PanicError if the task panicked, or with pool.ErrPoolStopped if
// the pool would not accept it. Observers registered on the returned
// future are delivered on the loop goroutine.
//
// Example:
//
//	fut := bridge.Defer(b, func() (string, error) {
//	    return lookupHost(name) // blocking, runs on a pool worker
//	})
//	fut.Observe(func(addr string, err error) {
//	    // runs on the loop goroutine
//	})
func Defer[T any](b *Bridge, task func() (T, error)) *Future[T] {
	fut := NewFutureOn[T](b.loop.Submit)
	err := b.pool.Submit(func() {
		value, err := call(task)
		if err != nil {
			fut.Fail(err)
			return
		}
		fut.Fulfill(value)
	})
	if err != nil {
		fut.Fail(err)
	}
	return fut
}

// BlockingCall runs task on the loop goroutine and blocks the calling
// goroutine until it completes, returning exactly the task's result.
// The caller must not be the loop goroutine itself; that fails fast
// with ErrWrongThread instead of deadlocking. If the loop stops before
// the task runs, BlockingCall returns ErrLoopUnavailable rather than
// hanging.
func BlockingCall[T any](b *Bridge, task func() (T, error)) (T, error) {
	var zero T
	if b.loop.IsLoopGoroutine() {
		return zero, ErrWrongThread
	}

	resCh := make(chan outcome[T], 1)
	b.loop.Submit(func() {
		value, err := call(task)
		resCh <- outcome[T]{value: value, err: err}
	})

	select {
	case o := <-resCh:
		return o.value, o.err
	case <-b.loop.Done():
		// The loop may have run the task in its final iteration;
		// prefer the real result over the shutdown error.
		select {
		case o := <-resCh:
			return o.value, o.err
		default:
			return zero, ErrLoopUnavailable
		}
	}
}

// BlockingCallFuture is BlockingCall for loop tasks whose result is
// not known synchronously: task returns a Future, and the calling
// goroutine blocks until that future settles, collapsing the two
// asynchronous hops into one synchronous call. If the loop stops
// before either hop completes, it returns ErrLoopUnavailable.
func BlockingCallFuture[T any](b *Bridge, task func() *Future[T]) (T, error) {
	var zero T
	if b.loop.IsLoopGoroutine() {
		return zero, ErrWrongThread
	}

	resCh := make(chan outcome[T], 1)
	b.loop.Submit(func() {
		defer func() {
			if r := recover(); r != nil {
				resCh <- outcome[T]{err: PanicError{Value: r}}
			}
		}()
		fut := task()
		if fut == nil {
			resCh <- outcome[T]{err: ErrNilFuture}
			return
		}
		fut.Observe(func(value T, err error) {
			resCh <- outcome[T]{value: value, err: err}
		})
	})

	select {
	case o := <-resCh:
		return o.value, o.err
	case <-b.loop.Done():
		select {
		case o := <-resCh:
			return o.value, o.err
		default:
			return zero, ErrLoopUnavailable
		}
	}
}

// call runs task, converting a panic into a PanicError so it can be
// carried across the goroutine boundary as a value.
func call[T any](task func() (T, error)) (value T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = PanicError{Value: r}
		}
	}()
	return task()
}
