package memory

import (
	"context"
	"sync"
	"time"

	audit "reviewprivacy/pkg/platform/audit"
)

// InMemoryStore is an audit.Publisher that keeps events in memory. Used when no
// broker is configured and in tests.
type InMemoryStore struct {
	mu     sync.RWMutex
	events []audit.Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Emit(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event.Normalize(time.Now()))
	return nil
}

// ListAll returns every event in emission order.
func (s *InMemoryStore) ListAll(_ context.Context) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Event{}, s.events...), nil
}

// ListByAction returns the events recorded for a single action.
func (s *InMemoryStore) ListByAction(_ context.Context, action audit.AuditEvent) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []audit.Event
	for _, e := range s.events {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
}

func (s *InMemoryStore) Close() error {
	return nil
}
