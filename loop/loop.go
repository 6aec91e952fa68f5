// Package loop provides the single-threaded cooperative event loop
// handle that the rest of the module bridges blocking work onto.
//
// A Loop runs callbacks one at a time on a single goroutine (the "loop
// goroutine"). Code on any goroutine hands callbacks to that goroutine
// with Submit, which never blocks. Once per iteration the loop drains a
// snapshot of everything submitted so far and executes it in FIFO
// order; callbacks submitted during a drain run in a later iteration,
// so a callback that keeps resubmitting itself cannot starve the loop.
//
// Submissions after Stop are silently dropped. That trade-off keeps
// shutdown simple at the cost of losing late tasks; callers that need
// to know whether their call ran should go through the bridge package,
// which converts a dead loop into an explicit error.
//
// The Loop does no I/O multiplexing of its own. It is the execution
// context other subsystems target, not a network reactor.
package loop

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/utkarsh5026/weft/internal/callqueue"
	"github.com/utkarsh5026/weft/internal/goid"
)

const (
	stateCreated int32 = iota
	stateRunning
	stateStopped
)

// Loop is a cooperative event loop. Create one with New, drive it with
// Run (usually on its own goroutine), and feed it with Submit from
// anywhere. All methods are safe for concurrent use.
type Loop struct {
	queue    *callqueue.Queue
	log      *zap.Logger
	state    atomic.Int32
	loopGID  atomic.Uint64
	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
}

// New creates a Loop. It does not start running until Run is called.
func New(opts ...Option) *Loop {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return &Loop{
		queue:  callqueue.New(),
		log:    cfg.logger,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Run executes callbacks until Stop is called, then returns. The
// calling goroutine becomes the loop goroutine; callbacks submitted
// before Run are executed in the first iteration.
//
// Run returns ErrAlreadyRunning if the loop is running or has already
// finished.
func (l *Loop) Run() error {
	if !l.state.CompareAndSwap(stateCreated, stateRunning) {
		return ErrAlreadyRunning
	}

	l.loopGID.Store(goid.ID())
	defer close(l.doneCh)

	for {
		// Check stop first so a stop issued during the previous drain
		// wins over a pending wake signal; callbacks queued at that
		// point are dropped, never half-run.
		select {
		case <-l.stopCh:
			return l.finish()
		default:
		}

		select {
		case <-l.stopCh:
			return l.finish()
		case <-l.queue.Wake():
			for _, task := range l.queue.Drain() {
				l.runTask(task)
			}
		}
	}
}

func (l *Loop) finish() error {
	l.state.Store(stateStopped)
	if n := l.queue.Len(); n > 0 {
		l.log.Debug("loop stopped with callbacks still queued",
			zap.Int("dropped", n))
	}
	return nil
}

// Submit schedules task to run on the loop goroutine. It never blocks
// and may be called from any goroutine, including the loop goroutine
// itself. If the loop has stopped the task is dropped.
func (l *Loop) Submit(task func()) {
	if task == nil {
		return
	}
	if l.state.Load() == stateStopped {
		l.log.Debug("dropping callback submitted after loop stop")
		return
	}
	l.queue.Push(task)
}

// Stop makes Run return after the current iteration. Callbacks still
// queued when the loop notices the stop are dropped, not executed.
// Stop is idempotent and safe from any goroutine, including a callback
// running on the loop itself.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() {
		// Mark stopped eagerly so Submit starts dropping even before
		// the loop goroutine observes stopCh.
		if l.state.Load() == stateRunning {
			l.state.Store(stateStopped)
		}
		close(l.stopCh)
	})
}

// Done returns a channel closed once Run has returned. A Loop that was
// never started closes it only after Stop followed by Run.
func (l *Loop) Done() <-chan struct{} {
	return l.doneCh
}

// Running reports whether Run is currently executing callbacks.
func (l *Loop) Running() bool {
	return l.state.Load() == stateRunning
}

// IsLoopGoroutine reports whether the caller is running on the loop
// goroutine. It is how the bridge package fails fast instead of
// deadlocking when a synchronous call targets the caller's own loop.
func (l *Loop) IsLoopGoroutine() bool {
	gid := l.loopGID.Load()
	return gid != 0 && goid.ID() == gid
}

// runTask executes one callback with panic recovery so a broken
// callback cannot kill the loop goroutine.
func (l *Loop) runTask(task func()) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Error("loop callback panicked", zap.Any("panic", r))
		}
	}()
	task()
}
