// Package pool provides a bounded, elastic pool of worker goroutines
// for running blocking tasks.
//
// The primary type is Pool, a pool whose worker count floats between a
// configured minimum and maximum. Start pre-spawns the minimum; Submit
// wakes an idle worker, spawns a new one below the maximum, or queues
// the task in an unbounded FIFO backlog. Idle workers above the
// minimum retire after an idle timeout. Panic recovery is built in, so
// one broken task cannot kill its worker.
//
// # Basic Usage
//
//	p, err := pool.New(2, 8)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := p.Start(); err != nil {
//	    log.Fatal(err)
//	}
//	defer p.Stop(5 * time.Second)
//
//	_ = p.Submit(func() {
//	    // blocking work runs on a pool worker
//	})
//
// # Sizing
//
// Pool workers exist to absorb calls that block, so size the pool for
// the concurrency of the blocking workload rather than the number of
// CPUs. Bounds can be adjusted at runtime:
//
//	_ = p.SetPoolSize(4, 16) // converges without aborting running tasks
//
// # Why bounded
//
// An unbounded pool risks resource exhaustion when the blocking
// backend degrades; a pool that is too small risks deadlock when tasks
// block on one another. The latter hazard is the caller's to avoid:
// give a resource whose tasks depend on each other a dedicated worker
// (see the worker package) instead of sharing a general pool with
// unrelated work.
//
// # Configuration Options
//
//   - WithName(s): Name the pool in log output
//   - WithIdleTimeout(d): How long surplus workers idle before retiring (default: 30s)
//   - WithRateLimit(tasksPerSecond, burst): Throttle task starts
//   - WithLogger(l): Structured logging for panics and lifecycle events
//
// # Error Handling
//
// Submission after Stop fails with ErrPoolStopped. Tasks are plain
// func() values; result and error delivery across goroutines is the
// bridge package's job, not the pool's.
package pool
