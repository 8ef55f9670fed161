package client

import (
	"time"

	"github.com/okian/eventmatch/pkg/logger"
)

// Option applies a configuration option to the Orchestrator.
type Option func(*Orchestrator)

// WithPollInterval sets the fixed delay between polls.
func WithPollInterval(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.interval = d
		}
	}
}

// WithMaxAttempts sets the number of unsuccessful polls before giving up.
func WithMaxAttempts(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.maxAttempts = n
		}
	}
}

// WithTicker replaces the poll ticker, mainly for tests.
func WithTicker(nt NewTicker) Option {
	return func(o *Orchestrator) {
		if nt != nil {
			o.newTicker = nt
		}
	}
}

// WithIDGenerator replaces the correlation id generator.
func WithIDGenerator(gen func() string) Option {
	return func(o *Orchestrator) {
		if gen != nil {
			o.newID = gen
		}
	}
}

// WithNotify registers a callback invoked with every user-facing notice.
func WithNotify(fn func(string)) Option {
	return func(o *Orchestrator) {
		o.notify = fn
	}
}

// WithLogger sets a custom logger for the orchestrator.
func WithLogger(l logger.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}
