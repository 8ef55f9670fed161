package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
)

// ErrNoAttendees is returned by ParseResult when the body has no attendee list.
var ErrNoAttendees = errors.New("missing or invalid attendees")

// Attendee is one ranked person as returned by the enrichment provider.
// Contact links are optional; an empty string means "not available".
type Attendee struct {
	Name      string `json:"name"`
	LinkedIn  string `json:"linkedin,omitempty"`
	Twitter   string `json:"twitter,omitempty"`
	Instagram string `json:"instagram,omitempty"`
	Warpcast  string `json:"warpcast,omitempty"`
	LeadScore Score  `json:"leadScore,omitempty"`
	WhyMeet   string `json:"whyMeet,omitempty"`
}

// UnmarshalJSON decodes an attendee leniently. Fields holding strings or
// numbers are kept as text; any other type leaves the field empty, and an
// element that is not an object decodes to an empty Attendee.
func (a *Attendee) UnmarshalJSON(b []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		*a = Attendee{}
		return nil //nolint:nilerr // non-object element
	}
	*a = Attendee{
		Name:      text(fields["name"]),
		LinkedIn:  text(fields["linkedin"]),
		Twitter:   text(fields["twitter"]),
		Instagram: text(fields["instagram"]),
		Warpcast:  text(fields["warpcast"]),
		LeadScore: Score(text(fields["leadScore"])),
		WhyMeet:   text(fields["whyMeet"]),
	}
	return nil
}

// Score is an opaque, display-only lead score. Providers send it as a JSON
// number or a string; both are kept as text.
type Score string

// UnmarshalJSON accepts numbers and strings. Anything else yields "".
func (s *Score) UnmarshalJSON(b []byte) error {
	*s = Score(text(b))
	return nil
}

// text returns a JSON string's value or a JSON number's literal, and "" for
// every other kind of value.
func text(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	switch c := raw[0]; {
	case c == '"':
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			return ""
		}
		return v
	case c == '-' || (c >= '0' && c <= '9'):
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return ""
		}
		return n.String()
	}
	return ""
}

// MarshalJSON emits numeric scores as numbers and anything else as a string.
func (s Score) MarshalJSON() ([]byte, error) {
	if _, err := strconv.ParseFloat(string(s), 64); err == nil {
		return []byte(s), nil
	}
	return json.Marshal(string(s))
}

// Result is the client-side view of a stored record.
type Result struct {
	Attendees []Attendee `json:"attendees"`
	SessionID string     `json:"sessionId,omitempty"`
	EventURL  string     `json:"eventUrl,omitempty"`
	Status    string     `json:"status,omitempty"`
	Timestamp string     `json:"timestamp,omitempty"`
}

// ParseResult decodes a relay response body. It fails with ErrNoAttendees
// unless the body is an object whose attendees field is a JSON array. The
// elements themselves are decoded leniently and never fail the result.
func ParseResult(body []byte) (Result, error) {
	var p Payload
	if err := json.Unmarshal(body, &p); err != nil {
		return Result{}, err
	}
	if _, ok := p.AttendeeCount(); !ok {
		return Result{}, ErrNoAttendees
	}

	var items []json.RawMessage
	if err := json.Unmarshal(p[FieldAttendees], &items); err != nil {
		return Result{}, ErrNoAttendees
	}
	attendees := make([]Attendee, len(items))
	for i, item := range items {
		_ = attendees[i].UnmarshalJSON(item)
	}

	return Result{
		Attendees: attendees,
		SessionID: p.Key(FieldSessionID),
		EventURL:  p.String(FieldEventURL),
		Status:    p.String(FieldStatus),
		Timestamp: p.String(FieldTimestamp),
	}, nil
}
