package config_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/eventmatch/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have the relay defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":3001")
			convey.So(cfg.DataDir, convey.ShouldEqual, "data")
			convey.So(cfg.MirrorEnabled, convey.ShouldBeTrue)
			convey.So(cfg.MaxBodyBytes, convey.ShouldEqual, 10<<20)
			convey.So(cfg.CORSOrigins, convey.ShouldResemble, []string{"*"})
		})

		convey.Convey("And the client polling defaults", func() {
			convey.So(cfg.PollInterval, convey.ShouldEqual, 5*time.Second)
			convey.So(cfg.MaxPollAttempts, convey.ShouldEqual, 60)
			convey.So(cfg.ProcessorURL, convey.ShouldEqual, "http://localhost:10000/scrape")
			convey.So(cfg.ProviderURL, convey.ShouldEqual, config.DefaultProviderURL)
			convey.So(cfg.PollLatest, convey.ShouldBeFalse)
		})

		convey.Convey("And it should validate", func() {
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})

	convey.Convey("Given configs with invalid fields", t, func() {
		cases := []struct {
			name   string
			mutate func(*config.Config)
		}{
			{"empty addr", func(c *config.Config) { c.Addr = " " }},
			{"zero interval", func(c *config.Config) { c.PollInterval = 0 }},
			{"zero attempts", func(c *config.Config) { c.MaxPollAttempts = 0 }},
			{"negative body cap", func(c *config.Config) { c.MaxBodyBytes = -1 }},
		}
		for _, tc := range cases {
			convey.Convey("Then validation rejects "+tc.name, func() {
				cfg := config.New()
				tc.mutate(cfg)
				err := cfg.Validate()
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		}
	})
}
