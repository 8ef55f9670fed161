// Package client drives one submission from "user submits" to "attendees
// available": two parallel intake pushes followed by a bounded poll of the
// relay.
package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/okian/eventmatch/internal/domain/model"
	"github.com/okian/eventmatch/pkg/logger"
	"github.com/okian/eventmatch/pkg/metrics"
)

// Default orchestrator configuration constants.
const (
	defaultPollInterval = 5 * time.Second
	defaultMaxAttempts  = 60
)

// Notices shown to the user alongside state changes.
const (
	NoticeSubmitted    = "Submitting event URL and profile intent..."
	NoticeWaiting      = "Waiting for the enrichment provider to process and return the enriched data..."
	NoticeFailed       = "Failed to submit data. Please try again."
	NoticeStillWorking = "Still processing... Check back in a few minutes or refresh the page."
)

// State is a snapshot of one submission.
type State struct {
	EventURL      string
	ProfileIntent string
	CorrelationID string

	IsProcessing     bool
	IsWaitingForData bool
	IsComplete       bool

	Attendees []model.Attendee
	// ScrapingError is empty when no submission error occurred. Reaching the
	// attempt cap is not an error.
	ScrapingError string

	Attempts int
	Notices  []string
}

// IsLoading reports whether a submission is still in progress.
func (s State) IsLoading() bool { return s.IsProcessing || s.IsWaitingForData }

// Orchestrator owns the submission state and at most one poll loop.
type Orchestrator struct {
	provider  Pusher
	processor Pusher
	relay     Poller

	interval    time.Duration
	maxAttempts int
	newTicker   NewTicker
	newID       func() string
	notify      func(string)
	logger      logger.Logger

	mu     sync.Mutex
	state  State
	gen    uint64
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates an orchestrator over the two intake legs and the relay.
func New(provider, processor Pusher, relay Poller, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		provider:    provider,
		processor:   processor,
		relay:       relay,
		interval:    defaultPollInterval,
		maxAttempts: defaultMaxAttempts,
		newTicker:   DefaultTicker,
		newID:       uuid.NewString,
		logger:      logger.Get().Named("orchestrator"),
		done:        closedChan(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Submit starts a new submission, superseding any previous one. It fires the
// provider push (only when an intent is given) and the processor push in
// parallel and waits for both to settle. A failure of either leg is stored in
// State.ScrapingError and returned; polling does not start. On success the
// poll loop runs in the background until the result arrives, the attempt cap
// is reached, ctx is done, or Cancel/Close/Submit is called.
func (o *Orchestrator) Submit(ctx context.Context, req model.SubmissionRequest) error {
	if req.CorrelationID == "" {
		req.CorrelationID = o.newID()
	}

	o.mu.Lock()
	o.stopLocked()
	o.gen++
	gen := o.gen
	done := make(chan struct{})
	o.done = done
	o.state = State{
		EventURL:      req.EventURL,
		ProfileIntent: req.ProfileIntent,
		CorrelationID: req.CorrelationID,
		IsProcessing:  true,
		Attendees:     []model.Attendee{},
	}
	o.addNoticeLocked(NoticeSubmitted)
	o.mu.Unlock()
	o.emit(NoticeSubmitted)

	o.logger.Info(ctx, "submitting",
		logger.String("eventUrl", req.EventURL),
		logger.Bool("intent", req.HasIntent()),
		logger.String("correlationId", req.CorrelationID),
	)

	var g errgroup.Group
	if req.HasIntent() {
		g.Go(func() error { return o.provider.Push(ctx, req) })
	}
	g.Go(func() error { return o.processor.Push(ctx, req) })
	err := g.Wait()

	o.mu.Lock()
	if o.gen != gen {
		close(done)
		o.mu.Unlock()
		return ErrSuperseded
	}

	if err != nil {
		o.state.ScrapingError = err.Error()
		o.state.IsProcessing = false
		o.state.IsWaitingForData = false
		o.addNoticeLocked(NoticeFailed)
		close(done)
		o.mu.Unlock()

		metrics.RecordSubmission("failed")
		o.logger.Warn(ctx, "submission failed", logger.Error(err))
		o.emit(NoticeFailed)
		return err
	}

	o.state.IsWaitingForData = true
	o.state.Attempts = 0
	o.addNoticeLocked(NoticeWaiting)
	loopCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel
	o.mu.Unlock()

	metrics.RecordSubmission("accepted")
	o.emit(NoticeWaiting)

	go o.poll(loopCtx, gen, req.CorrelationID, done)
	return nil
}

// poll ticks until the result arrives, the cap is reached or loopCtx ends.
func (o *Orchestrator) poll(ctx context.Context, gen uint64, id string, done chan struct{}) {
	defer close(done)

	t := o.newTicker(o.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C():
		}

		res, err := o.relay.Fetch(ctx, id)
		if !o.apply(ctx, gen, res, err) {
			return
		}
	}
}

// apply folds one poll outcome into the state. It returns false when the
// loop must stop. Outcomes from a cancelled or superseded loop are dropped.
func (o *Orchestrator) apply(ctx context.Context, gen uint64, res model.Result, err error) bool { //nolint:gocritic // hugeParam: result is passed by value
	o.mu.Lock()
	if o.gen != gen || ctx.Err() != nil {
		o.mu.Unlock()
		return false
	}

	if err == nil {
		o.state.Attendees = res.Attendees
		o.state.IsComplete = true
		o.state.IsWaitingForData = false
		o.state.IsProcessing = false
		notice := fmt.Sprintf("Processing complete! Found %d attendees.", len(res.Attendees))
		o.addNoticeLocked(notice)
		o.stopLocked()
		o.mu.Unlock()

		metrics.RecordPollAttempt("ready")
		o.logger.Info(ctx, "result received", logger.Int("attendees", len(res.Attendees)))
		o.emit(notice)
		return false
	}

	o.state.Attempts++
	attempts := o.state.Attempts
	if attempts < o.maxAttempts {
		o.mu.Unlock()
		metrics.RecordPollAttempt("pending")
		if !errors.Is(err, ErrNotReady) {
			o.logger.Debug(ctx, "poll failed", logger.Int("attempt", attempts), logger.Error(err))
		} else {
			o.logger.Debug(ctx, "result not ready", logger.Int("attempt", attempts))
		}
		return true
	}

	o.state.IsWaitingForData = false
	o.state.IsProcessing = false
	o.addNoticeLocked(NoticeStillWorking)
	o.stopLocked()
	o.mu.Unlock()

	metrics.RecordPollAttempt("timeout")
	o.logger.Warn(ctx, "max poll attempts reached", logger.Int("attempts", attempts))
	o.emit(NoticeStillWorking)
	return false
}

// Deliver hands attendees to the orchestrator directly, ending any active
// poll loop.
func (o *Orchestrator) Deliver(attendees []model.Attendee) {
	if attendees == nil {
		attendees = []model.Attendee{}
	}

	o.mu.Lock()
	o.stopLocked()
	o.gen++
	o.state.Attendees = attendees
	o.state.IsComplete = true
	o.state.ScrapingError = ""
	o.state.IsProcessing = false
	o.state.IsWaitingForData = false
	notice := fmt.Sprintf("Data received! Found %d attendees.", len(attendees))
	o.addNoticeLocked(notice)
	o.mu.Unlock()

	o.emit(notice)
}

// Cancel stops the active submission: a poll loop is cancelled and pushes
// still in flight will not start one. Calling it when nothing is active is a
// no-op.
func (o *Orchestrator) Cancel() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.cancel == nil && !o.state.IsLoading() {
		return
	}
	o.stopLocked()
	o.gen++
	o.state.IsWaitingForData = false
	o.state.IsProcessing = false
}

// Close releases the orchestrator. Any active poll loop is cancelled.
func (o *Orchestrator) Close() {
	o.Cancel()
}

// State returns a snapshot of the current submission.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()

	s := o.state
	s.Attendees = append([]model.Attendee(nil), o.state.Attendees...)
	s.Notices = append([]string(nil), o.state.Notices...)
	return s
}

// Done is closed when the current submission stops: its pushes failed, or its
// poll loop ended for any reason.
func (o *Orchestrator) Done() <-chan struct{} {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.done
}

// stopLocked cancels the active loop. Must be called with o.mu held.
func (o *Orchestrator) stopLocked() {
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
}

func (o *Orchestrator) addNoticeLocked(msg string) {
	o.state.Notices = append(o.state.Notices, msg)
}

func (o *Orchestrator) emit(msg string) {
	if o.notify != nil {
		o.notify(msg)
	}
}

func closedChan() chan struct{} {
	c := make(chan struct{})
	close(c)
	return c
}
