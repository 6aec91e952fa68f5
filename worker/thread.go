package worker

import (
	"go.uber.org/zap"

	"github.com/utkarsh5026/weft/internal/callqueue"
)

// ThreadWorker runs tasks on one dedicated goroutine, draining a
// private FIFO. Tasks execute strictly in submission order and never
// concurrently with each other, which makes a ThreadWorker the natural
// home for a blocking resource that must not see interleaved access.
type ThreadWorker struct {
	q      *callqueue.Queue
	log    *zap.Logger
	quit   quitFlag
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewThreadWorker creates a ThreadWorker and starts its goroutine.
func NewThreadWorker(opts ...Option) *ThreadWorker {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	w := &ThreadWorker{
		q:      callqueue.New(),
		log:    cfg.logger,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
	go w.run()
	return w
}

// Do enqueues task on the worker's private queue. It never blocks.
// Returns ErrAlreadyQuit once Quit has been called.
func (w *ThreadWorker) Do(task func()) error {
	if task == nil {
		return ErrNilTask
	}
	if err := w.quit.check(); err != nil {
		return err
	}
	// The queue closes before the final drain, so a push racing with
	// Quit either lands in the drain or is rejected here. Nothing is
	// ever accepted and then lost.
	if !w.q.Push(task) {
		return ErrAlreadyQuit
	}
	return nil
}

// Quit stops accepting work, lets everything already enqueued run,
// then stops the goroutine. It blocks until the goroutine has exited
// and is idempotent; late callers return once shutdown completes.
func (w *ThreadWorker) Quit() {
	if !w.quit.set() {
		<-w.doneCh
		return
	}
	w.q.Close()
	close(w.stopCh)
	<-w.doneCh
}

func (w *ThreadWorker) run() {
	defer close(w.doneCh)
	for {
		select {
		case <-w.stopCh:
			// Final drain: the queue is closed, so this is complete.
			for _, task := range w.q.Drain() {
				w.runTask(task)
			}
			return
		case <-w.q.Wake():
			for _, task := range w.q.Drain() {
				w.runTask(task)
			}
		}
	}
}

func (w *ThreadWorker) runTask(task func()) {
	defer func() {
		if r := recover(); r != nil {
			w.log.Error("thread worker task panicked",
				zap.Any("panic", r), zap.Stack("stack"))
		}
	}()
	task()
}
