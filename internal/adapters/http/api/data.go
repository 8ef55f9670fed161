package api

import (
	"net/http"
	"net/url"
	"strings"
)

// latestKey is the reserved path segment for the most recently inserted record.
const latestKey = "latest"

// DataHandler serves stored records to pollers.
type DataHandler struct {
	deps Dependencies
}

// NewDataHandler creates a new data handler.
func NewDataHandler(deps Dependencies) *DataHandler {
	return &DataHandler{deps: deps}
}

type listResponse struct {
	Keys   []string `json:"keys"`
	Count  int      `json:"count"`
	Latest *string  `json:"latest"`
}

type notFoundResponse struct {
	Error     string   `json:"error"`
	Key       string   `json:"key"`
	Available []string `json:"available"`
}

// HandleList handles GET /api/data requests.
func (h *DataHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	l := h.deps.Keys(r.Context())
	resp := listResponse{Keys: nonNil(l.Keys), Count: l.Count}
	if l.Latest != "" {
		latest := l.Latest
		resp.Latest = &latest
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleEntry handles GET /api/data/latest and GET /api/data/{key} requests.
func (h *DataHandler) HandleEntry(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	key, err := entryKey(r.URL.EscapedPath())
	if err != nil {
		writeError(w, WrapKind("get", ErrBadRequest, err))
		return
	}

	switch key {
	case "":
		h.HandleList(w, r)
	case latestKey:
		rec, err := h.deps.Latest(r.Context())
		if err != nil {
			writeError(w, Wrap("latest", err))
			return
		}
		writeJSON(w, http.StatusOK, rec)
	default:
		rec, err := h.deps.Get(r.Context(), key)
		if err != nil {
			writeError(w, Wrap("get", err))
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

func isDataEntry(escapedPath string) bool {
	return strings.HasPrefix(escapedPath, PathDataEntry)
}

// entryKey decodes the key segment of an escaped /api/data/ path.
func entryKey(escapedPath string) (string, error) {
	return url.PathUnescape(strings.TrimPrefix(escapedPath, PathDataEntry))
}
