package service

import (
	mirrorpool "github.com/okian/eventmatch/internal/adapters/mq/worker"
	repository "github.com/okian/eventmatch/internal/adapters/repository"
	"github.com/okian/eventmatch/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore injects the relay store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithDataDir sets the mirror directory.
func WithDataDir(dir string) Option {
	return func(s *Service) {
		if dir != "" {
			s.dataDir = dir
		}
	}
}

// WithMirror turns the file mirror on or off.
func WithMirror(enabled bool) Option {
	return func(s *Service) {
		s.mirrorEnabled = enabled
	}
}

// WithMirrorSink replaces the file writer used by the mirror.
func WithMirrorSink(sink mirrorpool.Sink) Option {
	return func(s *Service) {
		if sink != nil {
			s.sink = sink
		}
	}
}

// WithQueueSize sets the maximum number of pending mirror writes.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithWorkerCount sets the number of mirror writer goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
