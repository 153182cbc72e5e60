package capability

import (
	"context"
	"sync"

	id "pinksync/pkg/domain"
)

// InMemoryStore keeps declarations in a keyed map plus an insertion-order
// index so listings stay stable for the process lifetime.
type InMemoryStore struct {
	mu    sync.RWMutex
	byApp map[id.AppID]Declaration
	order []id.AppID
}

// NewInMemoryStore constructs an empty capability store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{byApp: make(map[id.AppID]Declaration)}
}

func (s *InMemoryStore) Replace(_ context.Context, decl Declaration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byApp[decl.AppID]; !ok {
		s.order = append(s.order, decl.AppID)
	}
	decl.Capabilities = append([]id.Intent(nil), decl.Capabilities...)
	s.byApp[decl.AppID] = decl
	return nil
}

func (s *InMemoryStore) List(_ context.Context, filter QueryFilter) ([]Declaration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Declaration, 0, len(s.order))
	for _, appID := range s.order {
		decl := s.byApp[appID]
		if !matches(decl, filter) {
			continue
		}
		decl.Capabilities = append([]id.Intent(nil), decl.Capabilities...)
		out = append(out, decl)
	}
	return out, nil
}

func (s *InMemoryStore) Exists(_ context.Context, appID id.AppID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byApp[appID]
	return ok, nil
}

// matches applies the conjunctive filter semantics: every supplied field
// must hold; the intent filter is set membership.
func matches(decl Declaration, filter QueryFilter) bool {
	if filter.AppID != "" && decl.AppID != filter.AppID {
		return false
	}
	if filter.ComplianceLevel != "" && decl.ComplianceLevel != filter.ComplianceLevel {
		return false
	}
	if filter.Intent != "" && !decl.Supports(filter.Intent) {
		return false
	}
	return true
}
