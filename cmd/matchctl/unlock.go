package main

import (
	"github.com/urfave/cli/v2"

	"github.com/okian/eventmatch/internal/present"
)

var unlock = &cli.Command{
	Name:  "unlock",
	Usage: "unlock contact details for this session",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "return-url",
			Usage: "checkout return URL carrying payment_success or payment_canceled",
		},
	},
	Action: func(c *cli.Context) error {
		r := rendererFor(c)
		gate, err := gateFor(c)
		if err != nil {
			return err
		}

		raw := c.String("return-url")
		if raw == "" {
			if err := gate.Unlock(); err != nil {
				return err
			}
			return r.Notice(present.NoticeUnlocked)
		}

		cleaned, notice, err := gate.ApplyReturnURL(raw)
		if err != nil {
			return err
		}
		if notice != "" {
			if err := r.Notice(notice); err != nil {
				return err
			}
		}
		return r.Notice(cleaned)
	},
}
