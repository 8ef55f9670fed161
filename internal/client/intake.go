package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/okian/eventmatch/internal/domain/model"
	"github.com/okian/eventmatch/pkg/logger"
)

// Pusher delivers one leg of a submission.
type Pusher interface {
	Push(ctx context.Context, sub model.SubmissionRequest) error
}

// HTTPIntake posts a JSON body to an intake endpoint. Any non-2xx status is
// a failure; the response is decoded as JSON when possible and kept as
// {"message": text} otherwise.
type HTTPIntake struct {
	leg    string
	url    string
	body   func(model.SubmissionRequest) any
	client *http.Client
	logger logger.Logger
}

// NewProviderIntake pushes the profile intent to the enrichment provider.
func NewProviderIntake(url string, hc *http.Client) *HTTPIntake {
	return newIntake(LegProvider, url, hc, func(s model.SubmissionRequest) any {
		return providerBody{ProfileIntent: s.ProfileIntent, SessionID: s.CorrelationID}
	})
}

// NewProcessorIntake pushes the event URL to the downstream processor.
func NewProcessorIntake(url string, hc *http.Client) *HTTPIntake {
	return newIntake(LegProcessor, url, hc, func(s model.SubmissionRequest) any {
		return processorBody{EventURL: s.EventURL, SessionID: s.CorrelationID}
	})
}

type providerBody struct {
	ProfileIntent string `json:"profileIntent"`
	SessionID     string `json:"sessionId,omitempty"`
}

type processorBody struct {
	EventURL  string `json:"event_url"`
	SessionID string `json:"session_id,omitempty"`
}

func newIntake(leg, url string, hc *http.Client, body func(model.SubmissionRequest) any) *HTTPIntake {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &HTTPIntake{
		leg:    leg,
		url:    url,
		body:   body,
		client: hc,
		logger: logger.Get().Named("intake").Named(leg),
	}
}

// Push implements Pusher.
func (i *HTTPIntake) Push(ctx context.Context, sub model.SubmissionRequest) error {
	payload, err := json.Marshal(i.body(sub))
	if err != nil {
		return &SubmissionError{Leg: i.leg, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, i.url, bytes.NewReader(payload))
	if err != nil {
		return &SubmissionError{Leg: i.leg, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := i.client.Do(req)
	if err != nil {
		return &SubmissionError{Leg: i.leg, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &SubmissionError{Leg: i.leg, Status: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}
	body := decodeResponse(raw)

	i.logger.Debug(ctx, "intake responded",
		logger.Int("status", resp.StatusCode),
		logger.Any("body", body),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &SubmissionError{
			Leg:    i.leg,
			Status: resp.StatusCode,
			Body:   body,
			Err:    fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}
	return nil
}

// decodeResponse parses a JSON object, falling back to {"message": text}.
func decodeResponse(raw []byte) map[string]any {
	text := strings.TrimSpace(string(raw))
	if text == "" {
		return map[string]any{}
	}
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err == nil && obj != nil {
		return obj
	}
	return map[string]any{"message": text}
}
