package client

import "time"

// Ticker delivers poll ticks.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// NewTicker starts a Ticker with period d.
type NewTicker func(d time.Duration) Ticker

type realTicker struct {
	t *time.Ticker
}

func (r *realTicker) C() <-chan time.Time { return r.t.C }
func (r *realTicker) Stop()               { r.t.Stop() }

// DefaultTicker uses the standard library's time.NewTicker.
var DefaultTicker NewTicker = func(d time.Duration) Ticker {
	return &realTicker{t: time.NewTicker(d)}
}
