package audit

import (
	"context"
	"sync"

	id "pinksync/pkg/domain"
)

// Store persists audit events. Append must preserve arrival order.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByApp(ctx context.Context, appID id.AppID) ([]Event, error)
}

// InMemoryStore is the default sink. It is safe for concurrent use.
type InMemoryStore struct {
	mu     sync.RWMutex
	events []Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *InMemoryStore) ListByApp(_ context.Context, appID id.AppID) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Event, 0)
	for _, ev := range s.events {
		if ev.AppID == appID {
			out = append(out, ev)
		}
	}
	return out, nil
}
