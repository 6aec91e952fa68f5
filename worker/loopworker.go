package worker

import (
	"github.com/utkarsh5026/weft/loop"
)

// LoopWorker is a Worker view of an event loop: tasks run on the loop
// goroutine, in submission order, never concurrently. It lets code
// written against the Worker interface target the loop without
// knowing it is one.
//
// Unlike the other variants, LoopWorker does not own its loop: Quit
// detaches the worker but leaves the loop running, since the loop
// usually outlives any one view of it.
type LoopWorker struct {
	loop *loop.Loop
	quit quitFlag
}

// NewLoopWorker creates a Worker that submits to l.
func NewLoopWorker(l *loop.Loop) *LoopWorker {
	return &LoopWorker{loop: l}
}

// Do schedules task on the loop goroutine. Returns ErrAlreadyQuit
// after Quit or once the loop has finished.
func (w *LoopWorker) Do(task func()) error {
	if task == nil {
		return ErrNilTask
	}
	if err := w.quit.check(); err != nil {
		return err
	}
	select {
	case <-w.loop.Done():
		return ErrAlreadyQuit
	default:
	}
	w.loop.Submit(task)
	return nil
}

// Quit detaches the worker from the loop without stopping the loop.
// Idempotent.
func (w *LoopWorker) Quit() {
	w.quit.set()
}
