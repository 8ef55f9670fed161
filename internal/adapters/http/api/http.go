// Package api declares the relay HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	repository "github.com/okian/eventmatch/internal/adapters/repository"
	"github.com/okian/eventmatch/internal/domain/model"
	"github.com/okian/eventmatch/pkg/logger"
)

// Route paths.
const (
	PathHealth    = "/health"
	PathMetrics   = "/metrics"
	PathStats     = "/stats"
	PathWebhook   = "/api/webhooks/clay-data"
	PathDataList  = "/api/data"
	PathDataEntry = "/api/data/"

	defaultMaxBodyBytes int64 = 10 << 20
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Ingest validates and stores a pushed result.
	Ingest(ctx context.Context, payload model.Payload) (repository.IngestResult, error)

	// Read operations expose stored results.
	Latest(ctx context.Context) (repository.Record, error)
	Get(ctx context.Context, key string) (repository.Record, error)
	Keys(ctx context.Context) repository.Listing
}

// Server wires HTTP routes for the relay API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	webhookHandler *WebhookHandler
	dataHandler    *DataHandler

	corsOrigins []string
	logger      logger.Logger
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		corsOrigins: []string{"*"},
		logger:      logger.Get().Named("http"),
	}
	cfg := serverConfig{maxBodyBytes: defaultMaxBodyBytes}
	for _, opt := range opts {
		opt(s, &cfg)
	}

	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(statsProvider)
	s.webhookHandler = NewWebhookHandler(deps, cfg.maxBodyBytes)
	s.dataHandler = NewDataHandler(deps)
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc(PathHealth, MetricsMiddleware(s.healthHandler.HandleHealth, "health"))
	mux.HandleFunc(PathMetrics, s.healthHandler.HandleMetrics)
	mux.HandleFunc(PathStats, MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc(PathWebhook, MetricsMiddleware(s.webhookHandler.HandlePush, "webhook"))
	mux.HandleFunc(PathDataList, MetricsMiddleware(s.dataHandler.HandleList, "data_list"))
}

// Handler returns the full handler chain around mux: CORS, panic recovery and
// the data entry route.
//
// Data keys may be event URLs sent with encoded slashes. ServeMux cleans
// "//" out of the decoded path and redirects, so /api/data/{key} is
// dispatched here on the escaped path before the mux sees it.
func (s *Server) Handler(mux *http.ServeMux) http.Handler {
	entry := MetricsMiddleware(s.dataHandler.HandleEntry, "data_entry")
	routed := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isDataEntry(r.URL.EscapedPath()) {
			entry(w, r)
			return
		}
		mux.ServeHTTP(w, r)
	})
	return CORSMiddleware(s.corsOrigins)(RecoverMiddleware(s.logger)(routed))
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError converts err to the relay's JSON error shapes.
func writeError(w http.ResponseWriter, err error) {
	var nf *repository.NotFoundError
	switch {
	case errors.As(err, &nf):
		writeJSON(w, http.StatusNotFound, notFoundResponse{
			Error:     "Data not found",
			Key:       nf.Key,
			Available: nonNil(nf.Available),
		})
	case errors.Is(err, ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "No data available"})
	case errors.Is(err, ErrBodyTooLarge):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Request body too large", Message: err.Error()})
	case errors.Is(err, ErrBadRequest):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Bad request", Message: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Internal server error", Message: err.Error()})
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
