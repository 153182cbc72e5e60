package subscription

import (
	"context"
	"fmt"
	"sync"

	id "pinksync/pkg/domain"
	"pinksync/pkg/platform/sentinel"
)

// InMemoryStore keeps subscriptions in process memory. A single mutex guards
// the map so concurrent duplicate creates serialize on the check-then-insert.
type InMemoryStore struct {
	mu         sync.RWMutex
	byConsumer map[id.ConsumerID]Subscription
}

// NewInMemoryStore constructs an empty subscription store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{byConsumer: make(map[id.ConsumerID]Subscription)}
}

func (s *InMemoryStore) Create(_ context.Context, sub Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.byConsumer[sub.ConsumerID]; ok && existing.Status == StatusActive {
		return fmt.Errorf("active subscription for %s: %w", sub.ConsumerID, sentinel.ErrConflict)
	}
	s.byConsumer[sub.ConsumerID] = sub
	return nil
}

func (s *InMemoryStore) FindByConsumer(_ context.Context, consumerID id.ConsumerID) (Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sub, ok := s.byConsumer[consumerID]; ok {
		return sub, nil
	}
	return Subscription{}, fmt.Errorf("subscription for %s: %w", consumerID, sentinel.ErrNotFound)
}

func (s *InMemoryStore) ListActive(_ context.Context) ([]Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Subscription, 0, len(s.byConsumer))
	for _, sub := range s.byConsumer {
		if sub.Status == StatusActive {
			out = append(out, sub)
		}
	}
	return out, nil
}
