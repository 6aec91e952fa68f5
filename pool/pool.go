package pool

import (
	"context"
	"sync"
	"time"

	"github.com/eapache/queue"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Pool is a bounded pool of worker goroutines for running blocking
// tasks. The worker count floats between the configured minimum and
// maximum: Start pre-spawns the minimum, Submit spawns up to the
// maximum when no worker is idle, and idle workers above the minimum
// retire after the idle timeout.
//
// All methods are safe for concurrent use. Submit never blocks the
// caller: when every worker is busy and the pool is at its maximum,
// tasks wait in an unbounded FIFO backlog.
//
// A task may block for as long as it likes; that is the point of the
// pool. Size it for the concurrency of the blocking workload, not for
// CPU parallelism. Note the usual hazard with bounded pools: if a
// task submitted here blocks waiting on another task submitted to the
// same pool, and no worker is free to run that second task, both wait
// forever. Give resources with such internal dependencies their own
// worker (see the worker package) instead of sharing a general pool.
type Pool struct {
	cfg *config
	log *zap.Logger

	mu      sync.Mutex
	min     int
	max     int
	running int          // workers alive, idle included
	idle    []*slot      // LIFO so the hottest worker is reused first
	pending *queue.Queue // backlog of func(), FIFO
	started bool
	stopped bool

	g      errgroup.Group
	doneCh chan struct{}
}

// slot is one worker's handoff channel. A slot parked in the idle
// list is claimed by exactly one producer, which then sends either a
// task or nil; nil tells the worker to exit. The channel has capacity
// one and the worker always empties it before parking again, so a
// send to a claimed slot never blocks.
type slot struct {
	taskCh chan func()
}

// Stats is a snapshot of the pool's current occupancy.
type Stats struct {
	// Running is the number of live workers, idle ones included.
	Running int
	// Idle is the number of workers parked waiting for a task.
	Idle int
	// Pending is the number of backlogged tasks not yet handed to a
	// worker.
	Pending int
}

// New creates a pool bounded by minWorkers and maxWorkers, which must
// satisfy 0 < min <= max. The pool does not run anything until Start.
func New(minWorkers, maxWorkers int, opts ...Option) (*Pool, error) {
	if minWorkers <= 0 || maxWorkers < minWorkers {
		return nil, ErrInvalidSize
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	log := cfg.logger
	if cfg.name != "" {
		log = log.With(zap.String("pool", cfg.name))
	}

	return &Pool{
		cfg:     cfg,
		log:     log,
		min:     minWorkers,
		max:     maxWorkers,
		pending: queue.New(),
		doneCh:  make(chan struct{}),
	}, nil
}

// Start spawns the minimum number of workers and begins accepting
// tasks. It returns ErrAlreadyStarted on a second call and
// ErrPoolStopped after Stop.
func (p *Pool) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return ErrPoolStopped
	}
	if p.started {
		return ErrAlreadyStarted
	}
	p.started = true

	for p.running < p.min {
		p.spawnLocked(nil)
	}
	p.log.Debug("pool started",
		zap.Int("min", p.min), zap.Int("max", p.max))
	return nil
}

// Submit hands task to the pool. If a worker is idle it runs the task
// immediately; otherwise, below the maximum, a new worker is spawned
// for it; otherwise it joins the backlog. Submit never blocks.
//
// Returns ErrPoolStopped once Stop has been called.
func (p *Pool) Submit(task func()) error {
	if task == nil {
		return ErrNilTask
	}

	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return ErrPoolStopped
	}
	if !p.started {
		p.mu.Unlock()
		return ErrNotStarted
	}

	if n := len(p.idle); n > 0 {
		s := p.idle[n-1]
		p.idle = p.idle[:n-1]
		p.mu.Unlock()
		s.taskCh <- task
		return nil
	}

	if p.running < p.max {
		p.spawnLocked(task)
		p.mu.Unlock()
		return nil
	}

	p.pending.Add(task)
	p.mu.Unlock()
	return nil
}

// SetPoolSize adjusts the worker bounds at runtime and converges the
// live worker count toward them: surplus idle workers are retired,
// missing workers are spawned, and backlogged tasks are dispatched to
// any newly available capacity. In-flight tasks are never aborted; a
// pool shrunk below its busy-worker count converges as tasks finish.
func (p *Pool) SetPoolSize(minWorkers, maxWorkers int) error {
	if minWorkers <= 0 || maxWorkers < minWorkers {
		return ErrInvalidSize
	}

	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return ErrPoolStopped
	}
	p.min, p.max = minWorkers, maxWorkers
	if !p.started {
		p.mu.Unlock()
		return nil
	}

	var retire []*slot
	for p.running > p.max && len(p.idle) > 0 {
		n := len(p.idle) - 1
		retire = append(retire, p.idle[n])
		p.idle = p.idle[:n]
		p.running--
	}
	for p.running < p.min {
		p.spawnLocked(nil)
	}
	for p.running < p.max && p.pending.Length() > 0 {
		p.spawnLocked(p.pending.Remove().(func()))
	}
	p.mu.Unlock()

	for _, s := range retire {
		s.taskCh <- nil
	}
	return nil
}

// Stats returns a snapshot of the worker and backlog counts.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Stats{
		Running: p.running,
		Idle:    len(p.idle),
		Pending: p.pending.Length(),
	}
}

// Stop rejects further submissions, lets backlogged and in-flight
// tasks finish, and joins all workers. A timeout of 0 waits forever;
// otherwise Stop returns ErrStopTimeout if the workers are still busy
// when it elapses (they keep draining in the background).
func (p *Pool) Stop(timeout time.Duration) error {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return ErrNotStarted
	}
	if p.stopped {
		p.mu.Unlock()
		return ErrPoolStopped
	}
	p.stopped = true
	idle := p.idle
	p.idle = nil
	p.running -= len(idle)
	p.mu.Unlock()

	for _, s := range idle {
		s.taskCh <- nil
	}

	go func() {
		_ = p.g.Wait()
		close(p.doneCh)
		p.log.Debug("pool stopped")
	}()
	return waitUntil(p.doneCh, timeout)
}

// spawnLocked starts one worker, optionally with an initial task.
// Caller must hold p.mu.
func (p *Pool) spawnLocked(first func()) {
	p.running++
	s := &slot{taskCh: make(chan func(), 1)}
	p.g.Go(func() error {
		p.work(s, first)
		return nil
	})
}

// work is the worker goroutine body: run a task, park for the next,
// repeat until retired.
func (p *Pool) work(s *slot, task func()) {
	for {
		if task != nil {
			p.execute(task)
		}
		var ok bool
		task, ok = p.next(s)
		if !ok {
			return
		}
	}
}

// next parks the worker until more work arrives. ok=false means the
// worker should exit; its running count has already been released.
func (p *Pool) next(s *slot) (task func(), ok bool) {
	p.mu.Lock()
	if p.running > p.max {
		p.running--
		p.mu.Unlock()
		return nil, false
	}
	if p.pending.Length() > 0 {
		t := p.pending.Remove().(func())
		p.mu.Unlock()
		return t, true
	}
	if p.stopped {
		p.running--
		p.mu.Unlock()
		return nil, false
	}
	p.idle = append(p.idle, s)
	p.mu.Unlock()

	idleTimer := time.NewTimer(p.cfg.idleTimeout)
	defer idleTimer.Stop()

	for {
		select {
		case t := <-s.taskCh:
			if t == nil {
				// Whoever retired us already released the count.
				return nil, false
			}
			return t, true

		case <-idleTimer.C:
			p.mu.Lock()
			if !p.unparkLocked(s) {
				// A producer claimed this slot between the timer
				// firing and us taking the lock; the handoff is
				// already in flight.
				p.mu.Unlock()
				t := <-s.taskCh
				if t == nil {
					return nil, false
				}
				return t, true
			}
			if p.running > p.min {
				p.running--
				p.mu.Unlock()
				return nil, false
			}
			// At the floor: park again and keep waiting.
			p.idle = append(p.idle, s)
			p.mu.Unlock()
			idleTimer.Reset(p.cfg.idleTimeout)
		}
	}
}

// unparkLocked removes s from the idle list, reporting whether it was
// still there. Caller must hold p.mu.
func (p *Pool) unparkLocked(s *slot) bool {
	for i, is := range p.idle {
		if is == s {
			p.idle = append(p.idle[:i], p.idle[i+1:]...)
			return true
		}
	}
	return false
}

// execute runs one task with panic recovery, so a broken task cannot
// kill its worker, and applies the optional rate limit.
func (p *Pool) execute(task func()) {
	if p.cfg.rateLimiter != nil {
		_ = p.cfg.rateLimiter.Wait(context.Background())
	}
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("pool task panicked",
				zap.Any("panic", r), zap.Stack("stack"))
		}
	}()
	task()
}
