package pool

import "errors"

var (
	// ErrPoolStopped is returned by Submit and SetPoolSize once Stop
	// has been called.
	ErrPoolStopped = errors.New("pool: stopped")

	// ErrNotStarted is returned when Submit or Stop is called before
	// Start.
	ErrNotStarted = errors.New("pool: not started")

	// ErrAlreadyStarted is returned by Start on a pool that is already
	// running.
	ErrAlreadyStarted = errors.New("pool: already started")

	// ErrInvalidSize is returned when worker bounds do not satisfy
	// 0 < min <= max.
	ErrInvalidSize = errors.New("pool: worker bounds must satisfy 0 < min <= max")

	// ErrNilTask is returned by Submit when the task is nil.
	ErrNilTask = errors.New("pool: nil task submitted")

	// ErrStopTimeout is returned by Stop when workers did not finish
	// within the given timeout. The pool keeps draining in the
	// background; the error only means the wait gave up.
	ErrStopTimeout = errors.New("pool: timeout waiting for workers to stop")
)
