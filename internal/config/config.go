// Package config defines process configuration for the relay server and the
// matchctl client, and the layered loader that builds it.
package config

import (
	"time"
)

// DefaultProviderURL is the enrichment provider intake webhook.
const DefaultProviderURL = "https://api.clay.com/v3/sources/webhook/pull-in-data-from-a-webhook-cdefd0cb-29fb-4b85-a451-26553f4e9402"

// Config contains process configuration shared by relayd and matchctl.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the relay HTTP listen address, e.g. ":3001".
	Addr string `koanf:"addr"`

	// DataDir is where the per-key JSON mirror files are written.
	DataDir string `koanf:"data_dir"`

	// MirrorEnabled toggles the best-effort file mirror.
	MirrorEnabled bool `koanf:"mirror_enabled"`

	// MirrorQueueSize bounds pending mirror writes.
	MirrorQueueSize int `koanf:"mirror_queue_size"`

	// MirrorWorkers sets the number of mirror writer goroutines.
	MirrorWorkers int `koanf:"mirror_workers"`

	// MaxBodyBytes caps webhook request bodies.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`

	// CORSOrigins lists allowed browser origins for the relay API.
	CORSOrigins []string `koanf:"cors_origins"`

	// RelayURL is the relay base URL the client polls.
	RelayURL string `koanf:"relay_url"`

	// ProcessorURL is the downstream URL processor intake.
	ProcessorURL string `koanf:"processor_url"`

	// ProviderURL is the enrichment provider intake.
	ProviderURL string `koanf:"provider_url"`

	// PollInterval is the fixed delay between client polls.
	PollInterval time.Duration `koanf:"poll_interval"`

	// MaxPollAttempts caps client polling before giving up quietly.
	MaxPollAttempts int `koanf:"max_poll_attempts"`

	// RequestTimeout bounds each outbound client request.
	RequestTimeout time.Duration `koanf:"request_timeout"`

	// PollLatest switches the client to the legacy /api/data/latest polling.
	PollLatest bool `koanf:"poll_latest"`

	// SessionFile persists the unlock flag between matchctl runs. Empty keeps it in memory.
	SessionFile string `koanf:"session_file"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		LogFormat:       "text",
		Addr:            ":3001",
		DataDir:         "data",
		MirrorEnabled:   true,
		MirrorQueueSize: 1024,
		MirrorWorkers:   2,
		MaxBodyBytes:    10 << 20,
		CORSOrigins:     []string{"*"},
		RelayURL:        "http://localhost:3001",
		ProcessorURL:    "http://localhost:10000/scrape",
		ProviderURL:     DefaultProviderURL,
		PollInterval:    5 * time.Second,
		MaxPollAttempts: 60,
		RequestTimeout:  30 * time.Second,
	}
}
