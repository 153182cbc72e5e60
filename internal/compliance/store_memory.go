package compliance

import (
	"context"
	"fmt"
	"sync"
	"time"

	id "pinksync/pkg/domain"
	"pinksync/pkg/platform/sentinel"
)

// InMemoryStateStore keeps compliance accumulators in process memory.
type InMemoryStateStore struct {
	mu     sync.RWMutex
	states map[id.AppID]*State
}

// NewInMemoryStateStore constructs an empty state store.
func NewInMemoryStateStore() *InMemoryStateStore {
	return &InMemoryStateStore{states: make(map[id.AppID]*State)}
}

func (s *InMemoryStateStore) RecordEvent(_ context.Context, appID id.AppID, at time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[appID]
	if !ok {
		st = &State{AppID: appID}
		s.states[appID] = st
	}
	st.EventsCount++
	st.LastEventAt = at
	return st.EventsCount, nil
}

func (s *InMemoryStateStore) AppendViolation(_ context.Context, appID id.AppID, v Violation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[appID]
	if !ok {
		return fmt.Errorf("compliance state for %s: %w", appID, sentinel.ErrNotFound)
	}
	st.Violations = append(st.Violations, v)
	return nil
}

// Get returns a copy; the violations slice is cloned so readers cannot
// append into shared state.
func (s *InMemoryStateStore) Get(_ context.Context, appID id.AppID) (State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.states[appID]
	if !ok {
		return State{}, fmt.Errorf("compliance state for %s: %w", appID, sentinel.ErrNotFound)
	}
	out := *st
	out.Violations = append([]Violation(nil), st.Violations...)
	return out, nil
}
