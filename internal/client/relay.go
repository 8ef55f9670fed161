package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/okian/eventmatch/internal/domain/model"
)

// Poller fetches the current result for a submission.
type Poller interface {
	// Fetch returns the stored result, or an error wrapping ErrNotReady when
	// the relay has nothing usable yet.
	Fetch(ctx context.Context, correlationID string) (model.Result, error)
}

// RelayPoller reads results from the relay HTTP API.
type RelayPoller struct {
	baseURL string
	latest  bool
	client  *http.Client
}

// NewRelayPoller polls baseURL. When latest is set, or no correlation id is
// known, it reads /api/data/latest instead of /api/data/{id}.
func NewRelayPoller(baseURL string, latest bool, hc *http.Client) *RelayPoller {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &RelayPoller{
		baseURL: strings.TrimRight(baseURL, "/"),
		latest:  latest,
		client:  hc,
	}
}

// URL returns the address polled for correlationID.
func (p *RelayPoller) URL(correlationID string) string {
	if p.latest || correlationID == "" {
		return p.baseURL + "/api/data/latest"
	}
	return p.baseURL + "/api/data/" + url.PathEscape(correlationID)
}

// Fetch implements Poller.
func (p *RelayPoller) Fetch(ctx context.Context, correlationID string) (model.Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL(correlationID), http.NoBody)
	if err != nil {
		return model.Result{}, fmt.Errorf("poll: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return model.Result{}, fmt.Errorf("poll: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return model.Result{}, fmt.Errorf("poll: status %d: %w", resp.StatusCode, ErrNotReady)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.Result{}, fmt.Errorf("poll: read body: %w", err)
	}

	res, err := model.ParseResult(raw)
	if err != nil {
		return model.Result{}, fmt.Errorf("poll: %w: %w", ErrNotReady, err)
	}
	return res, nil
}
