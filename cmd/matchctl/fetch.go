package main

import (
	"errors"
	"net/http"

	"github.com/urfave/cli/v2"

	"github.com/okian/eventmatch/internal/client"
)

var fetch = &cli.Command{
	Name:      "fetch",
	Usage:     "print a result already held by the relay",
	ArgsUsage: "[key]",
	Description: `without a key the most recent record is printed.
        matchctl fetch 2f1c9e0a-7c55-4b43-9a55-1e2f0f6f9d11`,
	Action: func(c *cli.Context) error {
		cfg := configFrom(c)
		key := c.Args().First()

		poller := client.NewRelayPoller(cfg.RelayURL, false, &http.Client{Timeout: cfg.RequestTimeout})
		res, err := poller.Fetch(c.Context, key)
		if errors.Is(err, client.ErrNotReady) {
			return cli.Exit("no result at "+poller.URL(key), 1)
		}
		if err != nil {
			return err
		}

		gate, err := gateFor(c)
		if err != nil {
			return err
		}
		return rendererFor(c).Render(res.Attendees, gate.Unlocked())
	},
}
