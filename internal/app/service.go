// Package service provides the relay service that implements the
// dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"sync"

	mirrorqueue "github.com/okian/eventmatch/internal/adapters/mq/queue"
	mirrorpool "github.com/okian/eventmatch/internal/adapters/mq/worker"
	"github.com/okian/eventmatch/internal/adapters/mirror"
	repository "github.com/okian/eventmatch/internal/adapters/repository"
	"github.com/okian/eventmatch/internal/domain/model"
	"github.com/okian/eventmatch/pkg/logger"
	"github.com/okian/eventmatch/pkg/metrics"
)

// Service owns the relay store and the optional write-behind mirror.
type Service struct {
	mu sync.RWMutex

	store repository.Store
	queue mirrorqueue.Queue
	pool  *mirrorpool.Pool
	sink  mirrorpool.Sink

	dataDir       string
	mirrorEnabled bool
	queueSize     int
	workerCount   int

	started    bool
	cancelPool context.CancelFunc

	logger logger.Logger
}

// New constructs a Service. The store is ready immediately; the mirror
// starts with Start.
func New(opts ...Option) *Service {
	s := &Service{
		dataDir:       "data",
		mirrorEnabled: true,
		queueSize:     1024,
		workerCount:   2,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.store == nil {
		s.store = repository.NewMemStore()
	}

	return s
}

// Start launches the mirror writers when mirroring is enabled.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("relay")
	}

	if s.mirrorEnabled {
		if s.sink == nil {
			s.sink = mirror.New(s.dataDir)
		}
		s.queue = mirrorqueue.NewInMemoryQueue(mirrorqueue.WithCapacity(s.queueSize))
		s.pool = mirrorpool.NewPool(s.workerCount, s.queue, s.sink)

		// The pool outlives ctx so Stop can drain pending writes.
		poolCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		s.cancelPool = cancel
		s.pool.Start(poolCtx)
	}

	s.started = true
	s.logger.Info(ctx, "relay service started",
		logger.Bool("mirror", s.mirrorEnabled),
		logger.String("dataDir", s.dataDir),
		logger.Int("mirrorWorkers", s.workerCount),
		logger.Int("mirrorQueueSize", s.queueSize),
	)

	return nil
}

// Stop drains the mirror queue and stops the writers.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}

	s.logger.Info(ctx, "stopping relay service...")

	var err error
	if s.pool != nil {
		err = s.pool.Shutdown(ctx)
		s.cancelPool()
	}

	s.started = false
	s.logger.Info(ctx, "relay service stopped")
	return err
}

// Ingest stores a push and schedules its mirror write.
func (s *Service) Ingest(ctx context.Context, payload model.Payload) (repository.IngestResult, error) {
	res, err := s.store.Ingest(ctx, payload)
	if err != nil {
		if errors.Is(err, repository.ErrValidation) {
			metrics.RecordIngest("invalid")
		} else {
			metrics.RecordIngest("error")
		}
		return repository.IngestResult{}, err
	}

	metrics.RecordIngest("stored")
	metrics.RecordAttendees(res.AttendeeCount)
	s.log().Info(ctx, "data received",
		logger.String("key", res.Key),
		logger.Int("attendees", res.AttendeeCount),
		logger.Bool("replaced", res.Replaced),
	)

	s.mirror(ctx, res)
	return res, nil
}

func (s *Service) mirror(ctx context.Context, res repository.IngestResult) { //nolint:gocritic // hugeParam: result is passed by value
	s.mu.RLock()
	q, started := s.queue, s.started
	s.mu.RUnlock()

	if !started || q == nil {
		return
	}

	if !q.Enqueue(ctx, mirrorqueue.Job{Key: res.Key, Record: res.Record}) {
		metrics.RecordMirrorWrite("dropped")
		s.log().Warn(ctx, "mirror queue full, write dropped", logger.String("key", res.Key))
	}
}

// Latest returns the most recently inserted record.
func (s *Service) Latest(ctx context.Context) (repository.Record, error) {
	return s.store.Latest(ctx)
}

// Get returns the record stored under key.
func (s *Service) Get(ctx context.Context, key string) (repository.Record, error) {
	return s.store.Get(ctx, key)
}

// Keys lists stored keys in insertion order.
func (s *Service) Keys(ctx context.Context) repository.Listing {
	return s.store.Keys(ctx)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	records := s.store.Count(ctx)
	metrics.UpdateRecordCount(records)

	stats := map[string]any{
		"started":       s.started,
		"records":       records,
		"mirrorEnabled": s.mirrorEnabled,
		"dataDir":       s.dataDir,
	}

	if s.started && s.queue != nil {
		stats["mirrorQueueLength"] = s.queue.Len(ctx)
		stats["mirrorQueueCapacity"] = s.queue.Cap()
		ps := s.pool.Stats()
		stats["mirrorWorkers"] = ps.Workers
		stats["mirrorWritten"] = ps.Processed
		stats["mirrorFailed"] = ps.Failed
	}

	return stats
}

func (s *Service) log() logger.Logger {
	s.mu.RLock()
	l := s.logger
	s.mu.RUnlock()
	if l == nil {
		return logger.Get().Named("relay")
	}
	return l
}
