package repository

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/okian/eventmatch/internal/domain/model"
	"github.com/okian/eventmatch/pkg/metrics"
)

// MemStore is the in-memory store of record.
//
// Ordering: keys keep the position of their first insertion. Overwriting a key
// replaces its record in place and does not make it the latest.
type MemStore struct {
	mu      sync.RWMutex
	records map[string]Record
	order   []string
	now     func() time.Time
}

var _ Store = (*MemStore)(nil)

// NewMemStore creates an empty store. One instance is constructed per process
// and injected wherever it is needed.
func NewMemStore(opts ...Option) *MemStore {
	s := &MemStore{
		records: make(map[string]Record),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	metrics.UpdateRecordCount(0)
	return s
}

// Ingest implements Store.
func (s *MemStore) Ingest(_ context.Context, payload model.Payload) (IngestResult, error) {
	count, ok := payload.AttendeeCount()
	if !ok {
		return IngestResult{}, fmt.Errorf("ingest: %w", ErrValidation)
	}

	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	key := s.resolveKeyLocked(payload, now)
	rec := model.NewRecord(key, payload, count, now)

	_, replaced := s.records[key]
	if !replaced {
		s.order = append(s.order, key)
	}
	s.records[key] = rec

	metrics.UpdateRecordCount(len(s.order))
	if replaced {
		metrics.RecordOverwrite()
	}

	return IngestResult{
		Key:           key,
		AttendeeCount: count,
		Replaced:      replaced,
		Record:        rec,
	}, nil
}

// resolveKeyLocked picks sessionId, then eventUrl, then a generated key.
// Must be called with s.mu held.
func (s *MemStore) resolveKeyLocked(payload model.Payload, now time.Time) string {
	if k := payload.Key(model.FieldSessionID); k != "" {
		return k
	}
	if k := payload.Key(model.FieldEventURL); k != "" {
		return k
	}
	base := strconv.FormatInt(now.UnixMilli(), 10)
	key := base
	for n := 1; ; n++ {
		if _, taken := s.records[key]; !taken {
			return key
		}
		key = base + "-" + strconv.Itoa(n)
	}
}

// Latest implements Store.
func (s *MemStore) Latest(_ context.Context) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.order) == 0 {
		metrics.RecordLookup("latest", "miss")
		return Record{}, ErrNotFound
	}
	metrics.RecordLookup("latest", "hit")
	return s.records[s.order[len(s.order)-1]], nil
}

// Get implements Store.
func (s *MemStore) Get(_ context.Context, key string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[key]
	if !ok {
		metrics.RecordLookup("key", "miss")
		return Record{}, &NotFoundError{Key: key, Available: s.keysLocked()}
	}
	metrics.RecordLookup("key", "hit")
	return rec, nil
}

// Keys implements Store.
func (s *MemStore) Keys(_ context.Context) Listing {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l := Listing{Keys: s.keysLocked(), Count: len(s.order)}
	if l.Count > 0 {
		l.Latest = s.order[l.Count-1]
	}
	metrics.RecordLookup("list", "hit")
	return l
}

// Count implements Store.
func (s *MemStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

func (s *MemStore) keysLocked() []string {
	keys := make([]string, len(s.order))
	copy(keys, s.order)
	return keys
}
