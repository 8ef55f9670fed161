package model

import "strings"

// SubmissionRequest is what the user typed for one submit cycle.
type SubmissionRequest struct {
	EventURL      string
	ProfileIntent string
	// CorrelationID is minted per submission and threaded through every leg
	// so the relay record can be fetched by key.
	CorrelationID string
}

// HasIntent reports whether the optional intent push should be fired.
func (s SubmissionRequest) HasIntent() bool {
	return s.ProfileIntent != ""
}

// Valid reports whether a submission may be initiated.
func (s SubmissionRequest) Valid() bool {
	return strings.TrimSpace(s.EventURL) != ""
}
