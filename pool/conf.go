package pool

import (
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const defaultIdleTimeout = 30 * time.Second

// Option is a functional option for configuring the pool.
type Option func(*config)

type config struct {
	name        string
	idleTimeout time.Duration
	rateLimiter *rate.Limiter
	logger      *zap.Logger
}

func defaultConfig() *config {
	return &config{
		idleTimeout: defaultIdleTimeout,
		logger:      zap.NewNop(),
	}
}

// WithName sets a name for the pool, used in log output to tell
// multiple pools apart. If not specified, logs carry no pool name.
func WithName(name string) Option {
	return func(cfg *config) {
		cfg.name = name
	}
}

// WithIdleTimeout sets how long a worker above the minimum may sit
// idle before it is retired. This is a resource-reclamation policy,
// not a correctness knob: the pool grows back on demand.
// If not specified, defaults to 30 seconds.
func WithIdleTimeout(d time.Duration) Option {
	return func(cfg *config) {
		if d > 0 {
			cfg.idleTimeout = d
		}
	}
}

// WithRateLimit sets a rate limiter for controlling task throughput.
// tasksPerSecond specifies the maximum number of tasks to start per
// second, and burst the maximum started at once. This is useful when
// the blocking work behind the pool hits an external service that
// must not be overwhelmed. If not specified, no rate limiting is
// applied.
//
// Example:
//
//	WithRateLimit(10, 5) // Allow 10 tasks/sec with burst of 5
func WithRateLimit(tasksPerSecond float64, burst int) Option {
	return func(cfg *config) {
		if tasksPerSecond > 0 && burst > 0 {
			cfg.rateLimiter = rate.NewLimiter(rate.Limit(tasksPerSecond), burst)
		}
	}
}

// WithLogger sets the logger used for panic reports and lifecycle
// events. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}
