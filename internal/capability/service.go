package capability

import (
	"context"
	"time"

	id "pinksync/pkg/domain"
	dErrors "pinksync/pkg/domain-errors"
)

// Service owns registry semantics and keeps orchestration out of handlers.
type Service struct {
	store Store
}

// NewService constructs the capability registry service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// DeclareInput carries an already-parsed declaration from the boundary.
type DeclareInput struct {
	AppID           id.AppID
	Capabilities    []id.Intent
	ComplianceLevel id.ComplianceLevel
	Version         string
}

// Declare registers or replaces the application's declaration. A second
// declaration for the same app wins wholesale; there is no merge.
//
// Errors: CodeInvalidInput when the capability set is empty.
func (s *Service) Declare(ctx context.Context, in DeclareInput, now time.Time) (Declaration, error) {
	if len(in.Capabilities) == 0 {
		return Declaration{}, dErrors.New(dErrors.CodeInvalidInput, "capabilities cannot be empty")
	}
	decl := Declaration{
		AppID:           in.AppID,
		Capabilities:    in.Capabilities,
		ComplianceLevel: in.ComplianceLevel,
		Version:         in.Version,
		RegisteredAt:    now,
	}
	if err := s.store.Replace(ctx, decl); err != nil {
		return Declaration{}, err
	}
	return decl, nil
}

// Query returns declarations matching all supplied filters.
func (s *Service) Query(ctx context.Context, filter QueryFilter) ([]Declaration, error) {
	return s.store.List(ctx, filter)
}

// Exists satisfies the compliance engine's CapabilityChecker port.
func (s *Service) Exists(ctx context.Context, appID id.AppID) (bool, error) {
	return s.store.Exists(ctx, appID)
}
