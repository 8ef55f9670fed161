package main

import (
	"errors"
	"net/http"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/okian/eventmatch/internal/client"
	"github.com/okian/eventmatch/internal/config"
	"github.com/okian/eventmatch/internal/domain/model"
	"github.com/okian/eventmatch/internal/present"
	"github.com/okian/eventmatch/pkg/logger"
)

var errNoEventURL = errors.New("an event url is required")

var submit = &cli.Command{
	Name:  "submit",
	Usage: "submit an event page and wait for its ranked attendees",
	Description: `example usage:
        matchctl submit --intent "founders hiring Go engineers" https://lu.ma/example
        matchctl submit --latest --unlock https://lu.ma/example`,
	ArgsUsage: "<event-url>",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "intent",
			Aliases: []string{"i"},
			Usage:   "who you want to meet; sent to the enrichment provider when set",
		},
		&cli.StringFlag{
			Name:  "processor-url",
			Usage: "downstream processor intake (overrides processor_url)",
		},
		&cli.StringFlag{
			Name:  "provider-url",
			Usage: "enrichment provider intake (overrides provider_url)",
		},
		&cli.DurationFlag{
			Name:  "poll-interval",
			Usage: "delay between polls (overrides poll_interval)",
		},
		&cli.IntFlag{
			Name:  "max-attempts",
			Usage: "polls before giving up (overrides max_poll_attempts)",
		},
		&cli.BoolFlag{
			Name:  "latest",
			Usage: "poll the most recent relay record instead of this submission's key",
		},
		&cli.BoolFlag{
			Name:  "unlock",
			Usage: "unlock contact details for this session before printing",
		},
	},
	Action: runSubmit,
}

func runSubmit(c *cli.Context) error {
	eventURL := strings.TrimSpace(c.Args().First())
	if eventURL == "" {
		return cli.Exit(errNoEventURL, 2)
	}

	cfg := configFrom(c)
	applySubmitFlags(c, cfg)

	r := rendererFor(c)
	gate, err := gateFor(c)
	if err != nil {
		return err
	}
	if c.Bool("unlock") {
		if err := gate.Unlock(); err != nil {
			return err
		}
		_ = r.Notice(present.NoticeUnlocked)
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	o := newOrchestrator(cfg, func(msg string) { _ = r.Notice(msg) })
	defer o.Close()

	subErr := o.Submit(ctx, model.SubmissionRequest{
		EventURL:      eventURL,
		ProfileIntent: strings.TrimSpace(c.String("intent")),
	})
	if subErr == nil {
		select {
		case <-o.Done():
		case <-ctx.Done():
			o.Cancel()
		}
	}

	st := o.State()
	logger.Get().Debug(ctx, "submission settled",
		logger.String("correlationId", st.CorrelationID),
		logger.Int("attempts", st.Attempts),
		logger.Bool("complete", st.IsComplete),
	)

	if st.ScrapingError != "" {
		_ = r.Note(st.ScrapingError)
	}
	if st.IsComplete {
		if err := r.Render(st.Attendees, gate.Unlocked()); err != nil {
			return err
		}
	}
	if subErr != nil {
		return cli.Exit("", 1)
	}
	return nil
}

func applySubmitFlags(c *cli.Context, cfg *config.Config) {
	if c.IsSet("processor-url") {
		cfg.ProcessorURL = c.String("processor-url")
	}
	if c.IsSet("provider-url") {
		cfg.ProviderURL = c.String("provider-url")
	}
	if d := c.Duration("poll-interval"); d > 0 {
		cfg.PollInterval = d
	}
	if n := c.Int("max-attempts"); n > 0 {
		cfg.MaxPollAttempts = n
	}
	if c.Bool("latest") {
		cfg.PollLatest = true
	}
}

// newOrchestrator wires the intake clients and relay poller from cfg. Pushes
// are bounded by request_timeout; polls use a client without a timeout.
func newOrchestrator(cfg *config.Config, notify func(string)) *client.Orchestrator {
	pushClient := &http.Client{Timeout: cfg.RequestTimeout}
	return client.New(
		client.NewProviderIntake(cfg.ProviderURL, pushClient),
		client.NewProcessorIntake(cfg.ProcessorURL, pushClient),
		client.NewRelayPoller(cfg.RelayURL, cfg.PollLatest, &http.Client{}),
		client.WithPollInterval(cfg.PollInterval),
		client.WithMaxAttempts(cfg.MaxPollAttempts),
		client.WithNotify(notify),
		client.WithLogger(logger.Get().Named("orchestrator")),
	)
}

