package bridge

import (
	"errors"
	"fmt"
)

var (
	// ErrWrongThread is returned when BlockingCall or
	// BlockingCallFuture is invoked from the loop goroutine itself.
	// Blocking there would deadlock: the loop would be waiting on a
	// task only it can run.
	ErrWrongThread = errors.New("bridge: blocking call from the loop goroutine")

	// ErrLoopUnavailable is returned when the target loop stopped
	// before servicing a blocking call.
	ErrLoopUnavailable = errors.New("bridge: loop stopped before the call ran")

	// ErrFutureTimeout is returned by Future.GetWithTimeout when the
	// future does not settle in time.
	ErrFutureTimeout = errors.New("bridge: timeout waiting for future")

	// ErrNilFuture is returned by BlockingCallFuture when the loop
	// task returns a nil future.
	ErrNilFuture = errors.New("bridge: loop task returned a nil future")
)

// PanicError wraps a panic recovered from a task so it can cross the
// thread boundary as an ordinary error value. The caller sees it at
// the synchronous boundary (Future.Get / BlockingCall) instead of the
// worker goroutine dying.
type PanicError struct {
	// Value is the value the task panicked with.
	Value any
}

// Error implements the error interface.
func (e PanicError) Error() string {
	return fmt.Sprintf("bridge: task panicked: %v", e.Value)
}

// Unwrap returns the underlying error if the panic value is an error
// type, enabling errors.Is and errors.As through the cause chain.
// If the value is not an error, Unwrap returns nil.
func (e PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
