package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"

	repository "github.com/okian/eventmatch/internal/adapters/repository"
	"github.com/okian/eventmatch/internal/domain/model"
)

// WebhookHandler accepts pushes from the enrichment provider.
type WebhookHandler struct {
	deps         Dependencies
	maxBodyBytes int64
}

// NewWebhookHandler creates a new webhook handler.
func NewWebhookHandler(deps Dependencies, maxBodyBytes int64) *WebhookHandler {
	if maxBodyBytes <= 0 {
		maxBodyBytes = defaultMaxBodyBytes
	}
	return &WebhookHandler{deps: deps, maxBodyBytes: maxBodyBytes}
}

type ingestResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	DataKey       string `json:"dataKey"`
	AttendeeCount int    `json:"attendeeCount"`
}

type validationResponse struct {
	Error    string   `json:"error"`
	Received []string `json:"received"`
}

// HandlePush handles POST /api/webhooks/clay-data requests.
func (h *WebhookHandler) HandlePush(w http.ResponseWriter, r *http.Request) {
	const op = "ingest"

	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, WrapKind(op, ErrBodyTooLarge, err))
			return
		}
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}

	var payload model.Payload
	if err := json.Unmarshal(body, &payload); err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, fmt.Errorf("invalid JSON body: %w", err)))
		return
	}

	res, err := h.deps.Ingest(r.Context(), payload)
	if err != nil {
		if errors.Is(err, repository.ErrValidation) {
			writeJSON(w, http.StatusBadRequest, validationResponse{
				Error:    "Missing or invalid attendees data",
				Received: receivedFields(payload),
			})
			return
		}
		writeError(w, Wrap(op, err))
		return
	}

	writeJSON(w, http.StatusOK, ingestResponse{
		Success:       true,
		Message:       "Data received and stored successfully",
		DataKey:       res.Key,
		AttendeeCount: res.AttendeeCount,
	})
}

// receivedFields lists the top-level field names of a rejected push.
func receivedFields(p model.Payload) []string {
	fields := make([]string, 0, len(p))
	for k := range p {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	return fields
}
