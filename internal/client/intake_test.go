package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/okian/eventmatch/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestHTTPIntake(t *testing.T) {
	Convey("Given a processor endpoint", t, func() {
		var got map[string]any
		var method, contentType string
		status := http.StatusOK
		reply := `{"ok":true}`
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(raw, &got)
			method, contentType = r.Method, r.Header.Get("Content-Type")
			w.WriteHeader(status)
			_, _ = w.Write([]byte(reply))
		}))
		defer srv.Close()

		sub := model.SubmissionRequest{EventURL: "https://lu.ma/x", ProfileIntent: "vcs", CorrelationID: "c-1"}

		Convey("When the processor accepts the push", func() {
			err := NewProcessorIntake(srv.URL, srv.Client()).Push(context.Background(), sub)

			Convey("Then the body carries the event url and correlation id", func() {
				So(err, ShouldBeNil)
				So(method, ShouldEqual, http.MethodPost)
				So(contentType, ShouldEqual, "application/json")
				So(got, ShouldResemble, map[string]any{"event_url": "https://lu.ma/x", "session_id": "c-1"})
			})
		})

		Convey("When the provider accepts the push", func() {
			err := NewProviderIntake(srv.URL, srv.Client()).Push(context.Background(), sub)

			Convey("Then the body carries the intent and session id", func() {
				So(err, ShouldBeNil)
				So(got, ShouldResemble, map[string]any{"profileIntent": "vcs", "sessionId": "c-1"})
			})
		})

		Convey("When the endpoint answers non-2xx with a text body", func() {
			status = http.StatusBadGateway
			reply = "upstream down"
			err := NewProcessorIntake(srv.URL, srv.Client()).Push(context.Background(), sub)

			Convey("Then a SubmissionError keeps the status and the text as message", func() {
				var se *SubmissionError
				So(errors.As(err, &se), ShouldBeTrue)
				So(se.Leg, ShouldEqual, LegProcessor)
				So(se.Status, ShouldEqual, http.StatusBadGateway)
				So(se.Body, ShouldResemble, map[string]any{"message": "upstream down"})
				So(err.Error(), ShouldEqual, "Failed to send the event URL to the processor. Status: 502")
			})
		})
	})

	Convey("Given an unreachable endpoint", t, func() {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		Convey("Then the push fails as a network error", func() {
			err := NewProviderIntake(url, nil).Push(context.Background(), model.SubmissionRequest{ProfileIntent: "x"})
			var se *SubmissionError
			So(errors.As(err, &se), ShouldBeTrue)
			So(se.Status, ShouldEqual, 0)
			So(err.Error(), ShouldStartWith, "provider push failed")
		})
	})
}

func TestDecodeResponse(t *testing.T) {
	Convey("Given intake response bodies", t, func() {
		So(decodeResponse([]byte(`{"a":1}`)), ShouldResemble, map[string]any{"a": float64(1)})
		So(decodeResponse([]byte("  ")), ShouldResemble, map[string]any{})
		So(decodeResponse([]byte("accepted")), ShouldResemble, map[string]any{"message": "accepted"})
		So(decodeResponse([]byte(`[1,2]`)), ShouldResemble, map[string]any{"message": "[1,2]"})
	})
}

func TestRelayPoller(t *testing.T) {
	Convey("Given a relay", t, func() {
		var path string
		status := http.StatusOK
		body := `{"attendees":[{"name":"Ada","leadScore":7}],"status":"completed"}`
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path = r.URL.EscapedPath()
			w.WriteHeader(status)
			_, _ = w.Write([]byte(body))
		}))
		defer srv.Close()

		Convey("When polling by correlation id", func() {
			p := NewRelayPoller(srv.URL+"/", false, srv.Client())
			res, err := p.Fetch(context.Background(), "a b/c")

			Convey("Then the keyed route is used and the result parsed", func() {
				So(err, ShouldBeNil)
				So(path, ShouldEqual, "/api/data/a%20b%2Fc")
				So(res.Attendees[0].Name, ShouldEqual, "Ada")
				So(string(res.Attendees[0].LeadScore), ShouldEqual, "7")
			})
		})

		Convey("When polling in latest mode", func() {
			p := NewRelayPoller(srv.URL, true, srv.Client())
			_, err := p.Fetch(context.Background(), "ignored")

			Convey("Then the latest route is used", func() {
				So(err, ShouldBeNil)
				So(path, ShouldEqual, "/api/data/latest")
			})
		})

		Convey("When attendee fields have unexpected types", func() {
			body = `{"attendees":[{"name":"Ada","leadScore":true},{"name":42,"linkedin":{"u":1}}]}`
			res, err := NewRelayPoller(srv.URL, false, srv.Client()).Fetch(context.Background(), "k")

			Convey("Then the result is accepted with empty placeholders", func() {
				So(err, ShouldBeNil)
				So(res.Attendees, ShouldHaveLength, 2)
				So(res.Attendees[0].Name, ShouldEqual, "Ada")
				So(string(res.Attendees[0].LeadScore), ShouldBeEmpty)
				So(res.Attendees[1].Name, ShouldEqual, "42")
				So(res.Attendees[1].LinkedIn, ShouldBeEmpty)
			})
		})

		Convey("When the relay answers 404", func() {
			status = http.StatusNotFound
			body = `{"error":"No data available"}`
			_, err := NewRelayPoller(srv.URL, false, srv.Client()).Fetch(context.Background(), "k")

			Convey("Then the result is not ready", func() {
				So(errors.Is(err, ErrNotReady), ShouldBeTrue)
			})
		})

		Convey("When the record has no attendee list", func() {
			body = `{"status":"completed"}`
			_, err := NewRelayPoller(srv.URL, false, srv.Client()).Fetch(context.Background(), "k")

			Convey("Then the result is not ready", func() {
				So(errors.Is(err, ErrNotReady), ShouldBeTrue)
			})
		})

		Convey("When the body is not JSON", func() {
			body = `<html>`
			_, err := NewRelayPoller(srv.URL, false, srv.Client()).Fetch(context.Background(), "k")

			Convey("Then the result is not ready", func() {
				So(errors.Is(err, ErrNotReady), ShouldBeTrue)
			})
		})
	})
}
