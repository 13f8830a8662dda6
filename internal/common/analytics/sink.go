// internal/common/analytics/sink.go
package analytics

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"scheme-finder/internal/common/metrics"
	"scheme-finder/internal/models"
)

type Store interface {
	Append(ctx context.Context, event models.AnalyticsEvent) error
}

type Logger interface {
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

type SinkConfig struct {
	BufferSize   int
	WriteTimeout time.Duration
}

type queued struct {
	ctx   context.Context
	event models.AnalyticsEvent
}

// Sink records pipeline outcomes without ever blocking or failing the caller.
// Events are queued on a bounded channel and written by one worker goroutine;
// a full queue drops the event.
type Sink struct {
	store        Store
	logger       Logger
	writeTimeout time.Duration
	now          func() time.Time

	mu     sync.RWMutex
	closed bool
	events chan queued
	done   chan struct{}
	once   sync.Once
}

func NewSink(store Store, cfg SinkConfig, log Logger) *Sink {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 256
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 3 * time.Second
	}
	s := &Sink{
		store:        store,
		logger:       log,
		writeTimeout: cfg.WriteTimeout,
		now:          time.Now,
		events:       make(chan queued, cfg.BufferSize),
		done:         make(chan struct{}),
	}
	go s.run()
	return s
}

// Record queues one event. An empty actorID is recorded as anonymous and a
// non-nil err marks the outcome as error. The request context only carries
// values; its cancellation does not abort the write.
func (s *Sink) Record(ctx context.Context, action, actorID string, metadata map[string]interface{}, err error) {
	if s == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if actorID == "" {
		actorID = models.AnonymousActor
	}

	meta := make(map[string]interface{}, len(metadata))
	for k, v := range metadata {
		meta[k] = v
	}

	event := models.AnalyticsEvent{
		ID:        uuid.NewString(),
		Action:    action,
		ActorID:   actorID,
		Metadata:  meta,
		Outcome:   models.OutcomeSuccess,
		Timestamp: s.now().UTC(),
	}
	if err != nil {
		event.Outcome = models.OutcomeError
		event.ErrorMessage = err.Error()
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		s.drop(event, "sink closed")
		return
	}
	select {
	case s.events <- queued{ctx: context.WithoutCancel(ctx), event: event}:
		metrics.AnalyticsEvents.WithLabelValues("recorded").Inc()
	default:
		s.drop(event, "queue full")
	}
}

func (s *Sink) drop(event models.AnalyticsEvent, reason string) {
	metrics.AnalyticsEvents.WithLabelValues("dropped").Inc()
	s.logger.Warn("analytics event dropped", map[string]interface{}{
		"action": event.Action,
		"reason": reason,
	})
}

func (s *Sink) run() {
	defer close(s.done)
	for item := range s.events {
		ctx, cancel := context.WithTimeout(item.ctx, s.writeTimeout)
		err := s.store.Append(ctx, item.event)
		cancel()
		if err != nil {
			metrics.AnalyticsEvents.WithLabelValues("failed").Inc()
			s.logger.Error("analytics write failed", map[string]interface{}{
				"action":  item.event.Action,
				"eventId": item.event.ID,
				"error":   err.Error(),
			})
		}
	}
}

// Close stops accepting events and waits for queued ones to be written.
func (s *Sink) Close(ctx context.Context) error {
	if s == nil {
		return nil
	}
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		close(s.events)
		s.mu.Unlock()
	})
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
