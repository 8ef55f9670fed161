// Command matchctl submits an event page for enrichment, polls the relay until
// the ranked attendees arrive, and prints them.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/okian/eventmatch/internal/config"
	"github.com/okian/eventmatch/internal/present"
	"github.com/okian/eventmatch/pkg/logger"
)

func newApp() *cli.App {
	return &cli.App{
		Name:  "matchctl",
		Usage: "find the people worth meeting at an event",
		Commands: []*cli.Command{
			submit,
			fetch,
			unlock,
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "disable coloured output",
			},
			&cli.StringFlag{
				Name:    "relay-url",
				Usage:   "relay base URL (overrides relay_url)",
				EnvVars: []string{"MATCHCTL_RELAY_URL"},
			},
			&cli.StringFlag{
				Name:  "session-file",
				Usage: "file holding the unlock flag (overrides session_file)",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "log requests and poll attempts to stderr",
			},
		},
		Before: setup,
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads configuration and applies global flag overrides. The result is
// kept in the app metadata for the subcommands.
func setup(c *cli.Context) error {
	cfg, err := config.Load(c.Context)
	if err != nil {
		return err
	}
	if c.IsSet("relay-url") {
		cfg.RelayURL = c.String("relay-url")
	}
	if c.IsSet("session-file") {
		cfg.SessionFile = c.String("session-file")
	}

	level := "warn"
	if c.Bool("verbose") {
		level = "debug"
	}
	if err := logger.Init(logger.WithFormat(cfg.LogFormat), logger.WithOutput(c.App.ErrWriter)); err != nil {
		return err
	}
	_ = logger.SetLevelString(level)

	if c.App.Metadata == nil {
		c.App.Metadata = map[string]any{}
	}
	c.App.Metadata[metaConfig] = cfg
	return nil
}

const metaConfig = "config"

func configFrom(c *cli.Context) *config.Config {
	if cfg, ok := c.App.Metadata[metaConfig].(*config.Config); ok {
		return cfg
	}
	return config.New()
}

func rendererFor(c *cli.Context) *present.Renderer {
	return present.NewRenderer(c.App.Writer, present.WithColor(!c.Bool("no-color")))
}

func gateFor(c *cli.Context) (*present.Gate, error) {
	return present.NewGate(configFrom(c).SessionFile)
}
