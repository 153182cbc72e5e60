package event

import (
	"context"
	"sync"

	id "pinksync/pkg/domain"
)

// InMemoryStore keeps the per-application event logs in process memory.
// Durability is an external collaborator concern; this store's contract is
// purely append-only ordering within the process lifetime.
type InMemoryStore struct {
	mu     sync.RWMutex
	events map[id.AppID][]Event
}

// NewInMemoryStore constructs an empty in-memory event store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{events: make(map[id.AppID][]Event)}
}

func (s *InMemoryStore) Append(_ context.Context, ev Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[ev.AppID] = append(s.events[ev.AppID], ev.Clone())
	return nil
}

// ListByApp returns the application's events in acceptance order. The result
// is a copy; mutating it cannot touch the log.
func (s *InMemoryStore) ListByApp(_ context.Context, appID id.AppID) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored := s.events[appID]
	out := make([]Event, 0, len(stored))
	for _, ev := range stored {
		out = append(out, ev.Clone())
	}
	return out, nil
}
