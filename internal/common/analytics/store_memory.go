// internal/common/analytics/store_memory.go
package analytics

import (
	"context"
	"sync"

	"scheme-finder/internal/models"
)

// MemoryStore keeps events in process. Used in development and tests.
type MemoryStore struct {
	mu     sync.Mutex
	events []models.AnalyticsEvent
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Append(_ context.Context, event models.AnalyticsEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *MemoryStore) Events() []models.AnalyticsEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.AnalyticsEvent, len(m.events))
	copy(out, m.events)
	return out
}

type NoopStore struct{}

func (NoopStore) Append(context.Context, models.AnalyticsEvent) error { return nil }
