package client

import (
	"errors"
	"fmt"
)

// Sentinel kinds for client errors.
var (
	// ErrNotReady means the relay has no usable result yet.
	ErrNotReady = errors.New("result not ready")
	// ErrSuperseded is returned by Submit when a newer submission or a
	// cancel took over while the pushes were in flight.
	ErrSuperseded = errors.New("submission superseded")
)

// Push legs.
const (
	LegProvider  = "provider"
	LegProcessor = "processor"
)

// SubmissionError reports a failed push to one of the intake endpoints.
type SubmissionError struct {
	Leg    string
	Status int
	// Body is the decoded response, or {"message": text} when it was not JSON.
	Body map[string]any
	Err  error
}

func (e *SubmissionError) Error() string {
	if e.Status > 0 {
		switch e.Leg {
		case LegProvider:
			return fmt.Sprintf("Could not send your profile intent to the enrichment provider. Status: %d", e.Status)
		default:
			return fmt.Sprintf("Failed to send the event URL to the processor. Status: %d", e.Status)
		}
	}
	return fmt.Sprintf("%s push failed: %v", e.Leg, e.Err)
}

func (e *SubmissionError) Unwrap() error { return e.Err }
