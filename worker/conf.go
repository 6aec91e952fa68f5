package worker

import "go.uber.org/zap"

// Option configures a worker constructor.
type Option func(*config)

type config struct {
	logger *zap.Logger
}

func defaultConfig() *config {
	return &config{logger: zap.NewNop()}
}

// WithLogger sets the logger used to report task panics. Defaults to
// a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}
