// Package model contains domain models passed between layers.
package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

// Well-known payload fields.
const (
	FieldAttendees     = "attendees"
	FieldSessionID     = "sessionId"
	FieldEventURL      = "eventUrl"
	FieldProfileIntent = "profileIntent"
	FieldTimestamp     = "timestamp"
	FieldStatus        = "status"
)

// StatusCompleted is the status a stored record carries unless the push sets one.
const StatusCompleted = "completed"

// Payload is an inbound push body: a JSON object kept field-by-field so that
// unknown fields pass through verbatim.
type Payload map[string]json.RawMessage

// String returns the named field when it is a non-empty JSON string.
func (p Payload) String(field string) string {
	raw, ok := p[field]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// Key returns the named field as a store key: a non-empty string, or the
// literal of a non-zero number. Other values, zero included, yield "" so the
// caller falls through to the next candidate.
func (p Payload) Key(field string) string {
	raw := bytes.TrimSpace(p[field])
	k := text(raw)
	if len(raw) > 0 && raw[0] != '"' {
		if f, err := strconv.ParseFloat(k, 64); err != nil || f == 0 {
			return ""
		}
	}
	return k
}

// AttendeeCount reports the length of the attendee list and whether the field
// holds a JSON array at all.
func (p Payload) AttendeeCount() (int, bool) {
	raw, ok := p[FieldAttendees]
	if !ok {
		return 0, false
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return 0, false
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return 0, false
	}
	return len(items), true
}

// Record is a stored enrichment result. Fields holds the full JSON object
// served back to pollers: every inbound field plus timestamp and status.
type Record struct {
	Key           string
	ReceivedAt    time.Time
	AttendeeCount int
	Fields        Payload
}

// NewRecord merges the server timestamp and status with the inbound payload.
// Inbound fields are applied last, so a pushed timestamp or status is kept.
func NewRecord(key string, in Payload, attendees int, receivedAt time.Time) Record {
	fields := make(Payload, len(in)+2)
	ts, _ := json.Marshal(receivedAt.UTC().Format(time.RFC3339Nano))
	status, _ := json.Marshal(StatusCompleted)
	fields[FieldTimestamp] = ts
	fields[FieldStatus] = status
	for k, v := range in {
		fields[k] = v
	}

	return Record{
		Key:           key,
		ReceivedAt:    receivedAt,
		AttendeeCount: attendees,
		Fields:        fields,
	}
}

// MarshalJSON renders the record as the flat object clients receive.
func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Fields)
}
