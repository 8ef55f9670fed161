package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okian/eventmatch/internal/adapters/http/api"
	repository "github.com/okian/eventmatch/internal/adapters/repository"
	"github.com/okian/eventmatch/internal/domain/model"
	"github.com/okian/eventmatch/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

type mockStats struct{}

func (mockStats) GetStats() map[string]any {
	return map[string]any{"records": 0, "started": true}
}

type failingDeps struct {
	*repository.MemStore
}

func (failingDeps) Ingest(context.Context, model.Payload) (repository.IngestResult, error) {
	return repository.IngestResult{}, errors.New("disk on fire")
}

type panickingDeps struct {
	*repository.MemStore
}

func (panickingDeps) Latest(context.Context) (repository.Record, error) {
	panic("boom")
}

func newHandler(deps api.Dependencies, opts ...api.Option) http.Handler {
	srv := api.NewServer(deps, mockStats{}, opts...)
	mux := http.NewServeMux()
	srv.Register(context.Background(), mux)
	return srv.Handler(mux)
}

func do(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(rec *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		panic(err)
	}
	return out
}

func TestHealth(t *testing.T) {
	Convey("Given a relay handler", t, func() {
		h := newHandler(repository.NewMemStore())

		Convey("When GET /health is called", func() {
			rec := do(h, http.MethodGet, "/health", "")

			Convey("Then it reports ok", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				body := decode(rec)
				So(body["status"], ShouldEqual, "ok")
				So(body["message"], ShouldEqual, "Webhook server is running")
			})
		})

		Convey("When GET /metrics is called after some traffic", func() {
			_ = do(h, http.MethodGet, "/health", "")
			rec := do(h, http.MethodGet, "/metrics", "")

			Convey("Then Prometheus text is served", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, "eventmatch_relay_http_requests_total")
			})
		})

		Convey("When GET /stats is called", func() {
			rec := do(h, http.MethodGet, "/stats", "")

			Convey("Then the provider's stats are returned", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(decode(rec)["started"], ShouldEqual, true)
			})
		})
	})
}

func TestWebhook(t *testing.T) {
	Convey("Given a relay handler backed by an empty store", t, func() {
		store := repository.NewMemStore()
		h := newHandler(store, api.WithMaxBodyBytes(256))

		Convey("When a valid push arrives", func() {
			rec := do(h, http.MethodPost, "/api/webhooks/clay-data",
				`{"sessionId":"s-1","attendees":[{"name":"Ada"},{"name":"Linus"}],"extra":{"k":1}}`)

			Convey("Then it is acknowledged with the key and count", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				body := decode(rec)
				So(body["success"], ShouldEqual, true)
				So(body["message"], ShouldEqual, "Data received and stored successfully")
				So(body["dataKey"], ShouldEqual, "s-1")
				So(body["attendeeCount"], ShouldEqual, 2)
			})

			Convey("And the stored record carries passthrough and normalized fields", func() {
				got := decode(do(h, http.MethodGet, "/api/data/latest", ""))
				So(got["status"], ShouldEqual, "completed")
				So(got["timestamp"], ShouldNotBeEmpty)
				So(got["extra"], ShouldResemble, map[string]any{"k": float64(1)})
			})
		})

		Convey("When the attendee list is missing or not a list", func() {
			for _, body := range []string{`{"sessionId":"x"}`, `{"attendees":"nope","eventUrl":"u"}`, `null`} {
				rec := do(h, http.MethodPost, "/api/webhooks/clay-data", body)
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
				So(decode(rec)["error"], ShouldEqual, "Missing or invalid attendees data")
			}

			Convey("Then the received fields are echoed and the store is untouched", func() {
				rec := do(h, http.MethodPost, "/api/webhooks/clay-data", `{"sessionId":"x","eventUrl":"u"}`)
				So(decode(rec)["received"], ShouldResemble, []any{"eventUrl", "sessionId"})
				So(store.Count(context.Background()), ShouldEqual, 0)
			})
		})

		Convey("When the body is not JSON", func() {
			rec := do(h, http.MethodPost, "/api/webhooks/clay-data", `{"attendees":[`)

			Convey("Then it is rejected as a bad request", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the body exceeds the limit", func() {
			big := `{"attendees":[],"pad":"` + strings.Repeat("x", 512) + `"}`
			rec := do(h, http.MethodPost, "/api/webhooks/clay-data", big)

			Convey("Then it is rejected and nothing is stored", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
				So(decode(rec)["error"], ShouldEqual, "Request body too large")
				So(store.Count(context.Background()), ShouldEqual, 0)
			})
		})

		Convey("When the webhook is called with GET", func() {
			rec := do(h, http.MethodGet, "/api/webhooks/clay-data", "")

			Convey("Then the route is not found", func() {
				So(rec.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})

	Convey("Given a store that fails unexpectedly", t, func() {
		h := newHandler(failingDeps{repository.NewMemStore()})

		Convey("When a push arrives", func() {
			rec := do(h, http.MethodPost, "/api/webhooks/clay-data", `{"attendees":[]}`)

			Convey("Then a 500 with the message is returned", func() {
				So(rec.Code, ShouldEqual, http.StatusInternalServerError)
				body := decode(rec)
				So(body["error"], ShouldEqual, "Internal server error")
				So(body["message"], ShouldContainSubstring, "disk on fire")
			})
		})
	})
}

func TestData(t *testing.T) {
	Convey("Given an empty relay", t, func() {
		store := repository.NewMemStore()
		h := newHandler(store)

		Convey("Then latest is not found", func() {
			rec := do(h, http.MethodGet, "/api/data/latest", "")
			So(rec.Code, ShouldEqual, http.StatusNotFound)
			So(decode(rec)["error"], ShouldEqual, "No data available")
		})

		Convey("Then the listing is empty with a null latest", func() {
			rec := do(h, http.MethodGet, "/api/data", "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			body := decode(rec)
			So(body["keys"], ShouldResemble, []any{})
			So(body["count"], ShouldEqual, 0)
			So(body["latest"], ShouldBeNil)
			_, present := body["latest"]
			So(present, ShouldBeTrue)
		})

		Convey("When pushes A, B and an event-url keyed push arrive", func() {
			do(h, http.MethodPost, "/api/webhooks/clay-data", `{"sessionId":"A","attendees":[]}`)
			do(h, http.MethodPost, "/api/webhooks/clay-data", `{"sessionId":"B","attendees":[{"name":"b"}]}`)
			do(h, http.MethodPost, "/api/webhooks/clay-data", `{"eventUrl":"https://lu.ma/abc","attendees":[]}`)

			Convey("Then the listing is in insertion order", func() {
				body := decode(do(h, http.MethodGet, "/api/data", ""))
				So(body["keys"], ShouldResemble, []any{"A", "B", "https://lu.ma/abc"})
				So(body["count"], ShouldEqual, 3)
				So(body["latest"], ShouldEqual, "https://lu.ma/abc")
			})

			Convey("Then a key is fetched by its path", func() {
				rec := do(h, http.MethodGet, "/api/data/B", "")
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(decode(rec)["sessionId"], ShouldEqual, "B")
			})

			Convey("Then an encoded event url key is fetched intact", func() {
				rec := do(h, http.MethodGet, "/api/data/https%3A%2F%2Flu.ma%2Fabc", "")
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(decode(rec)["eventUrl"], ShouldEqual, "https://lu.ma/abc")
			})

			Convey("Then an unknown key lists the available keys", func() {
				rec := do(h, http.MethodGet, "/api/data/nope", "")
				So(rec.Code, ShouldEqual, http.StatusNotFound)
				body := decode(rec)
				So(body["error"], ShouldEqual, "Data not found")
				So(body["key"], ShouldEqual, "nope")
				So(body["available"], ShouldResemble, []any{"A", "B", "https://lu.ma/abc"})
			})
		})
	})
}

func TestMiddleware(t *testing.T) {
	Convey("Given a handler whose store panics", t, func() {
		h := newHandler(panickingDeps{repository.NewMemStore()})

		Convey("When the panicking route is called", func() {
			rec := do(h, http.MethodGet, "/api/data/latest", "")

			Convey("Then the panic becomes a 500", func() {
				So(rec.Code, ShouldEqual, http.StatusInternalServerError)
				So(decode(rec)["error"], ShouldEqual, "Internal server error")
			})

			Convey("And the server keeps serving", func() {
				So(do(h, http.MethodGet, "/health", "").Code, ShouldEqual, http.StatusOK)
			})
		})
	})

	Convey("Given the default CORS policy", t, func() {
		h := newHandler(repository.NewMemStore())

		Convey("When a cross-origin request arrives", func() {
			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			req.Header.Set("Origin", "http://localhost:5173")
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			Convey("Then any origin is allowed", func() {
				So(rec.Header().Get("Access-Control-Allow-Origin"), ShouldEqual, "*")
			})
		})
	})

	Convey("Given a restricted CORS policy", t, func() {
		h := newHandler(repository.NewMemStore(), api.WithCORSOrigins([]string{"https://app.example"}))

		Convey("When a preflight from another origin arrives", func() {
			req := httptest.NewRequest(http.MethodOptions, "/api/webhooks/clay-data", nil)
			req.Header.Set("Origin", "https://evil.example")
			req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			Convey("Then no allow-origin header is sent", func() {
				So(rec.Header().Get("Access-Control-Allow-Origin"), ShouldBeEmpty)
			})
		})
	})
}

func TestErrors(t *testing.T) {
	Convey("Given store errors", t, func() {
		Convey("Then Wrap infers the API kind", func() {
			So(errors.Is(api.Wrap("op", repository.ErrValidation), api.ErrBadRequest), ShouldBeTrue)
			So(errors.Is(api.Wrap("op", &repository.NotFoundError{Key: "k"}), api.ErrNotFound), ShouldBeTrue)
			So(errors.Is(api.Wrap("op", errors.New("x")), api.ErrInternal), ShouldBeTrue)
			So(api.Wrap("op", nil), ShouldBeNil)
		})

		Convey("Then the cause stays reachable", func() {
			err := api.Wrap("get", &repository.NotFoundError{Key: "k", Available: []string{"a"}})
			var nf *repository.NotFoundError
			So(errors.As(err, &nf), ShouldBeTrue)
			So(nf.Available, ShouldResemble, []string{"a"})
			So(err.Error(), ShouldStartWith, "get: ")
		})

		Convey("Then WrapKind keeps the explicit kind", func() {
			So(errors.Is(api.WrapKind("op", api.ErrBodyTooLarge, errors.New("big")), api.ErrBodyTooLarge), ShouldBeTrue)
			So(errors.Is(api.WrapKind("op", api.ErrBadRequest, errors.New("x")), api.ErrBadRequest), ShouldBeTrue)
		})
	})
}
