package mirror

import "github.com/okian/eventmatch/pkg/logger"

// Option applies a configuration option to the FileWriter.
type Option func(*FileWriter)

// WithLogger sets a custom logger for the writer.
func WithLogger(l logger.Logger) Option {
	return func(w *FileWriter) {
		if l != nil {
			w.logger = l
		}
	}
}
