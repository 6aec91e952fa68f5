package loop

import (
	"errors"

	"go.uber.org/zap"
)

// ErrAlreadyRunning is returned by Run when the loop is already
// running or has already finished; a Loop runs at most once.
var ErrAlreadyRunning = errors.New("loop: already running or finished")

// Option configures a Loop.
type Option func(*config)

type config struct {
	logger *zap.Logger
}

func defaultConfig() *config {
	return &config{logger: zap.NewNop()}
}

// WithLogger sets the logger used for panic reports and dropped
// post-stop submissions. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}
