package api

import "github.com/okian/eventmatch/pkg/logger"

type serverConfig struct {
	maxBodyBytes int64
}

// Option applies a configuration option to the Server.
type Option func(*Server, *serverConfig)

// WithMaxBodyBytes limits the size of ingest bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(_ *Server, c *serverConfig) {
		if n > 0 {
			c.maxBodyBytes = n
		}
	}
}

// WithCORSOrigins sets the allowed CORS origins. "*" allows any origin.
func WithCORSOrigins(origins []string) Option {
	return func(s *Server, _ *serverConfig) {
		if len(origins) > 0 {
			s.corsOrigins = origins
		}
	}
}

// WithLogger sets a custom logger for the server.
func WithLogger(l logger.Logger) Option {
	return func(s *Server, _ *serverConfig) {
		if l != nil {
			s.logger = l
		}
	}
}
