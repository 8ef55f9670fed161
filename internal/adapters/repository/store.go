// Package repository implements the relay store: an ordered, in-memory map of
// pushed enrichment results keyed by session id, event url or a generated key.
package repository

import (
	"context"

	"github.com/okian/eventmatch/internal/domain/model"
)

// Record is the stored unit.
type Record = model.Record

// IngestResult acknowledges a successful push.
type IngestResult struct {
	Key           string
	AttendeeCount int
	// Replaced is true when the push overwrote an existing key.
	Replaced bool
	Record   Record
}

// Listing describes the keys currently held, in insertion order.
type Listing struct {
	Keys   []string
	Count  int
	Latest string // empty when the store is empty
}

// Store is the only read/write surface of the relay.
type Store interface {
	// Ingest validates and stores a push. Returns ErrValidation (wrapped) when
	// the attendee list is missing or not an array; the store is unchanged.
	Ingest(ctx context.Context, payload model.Payload) (IngestResult, error)

	// Latest returns the most recently inserted record.
	// Returns ErrNotFound when the store is empty.
	Latest(ctx context.Context) (Record, error)

	// Get returns the record stored under key, or a *NotFoundError listing
	// the known keys.
	Get(ctx context.Context, key string) (Record, error)

	// Keys lists keys in insertion order.
	Keys(ctx context.Context) Listing

	// Count returns the number of stored keys.
	Count(ctx context.Context) int
}
