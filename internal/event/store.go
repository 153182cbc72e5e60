package event

import (
	"context"

	id "pinksync/pkg/domain"
)

// Store is the append-only event log. Implementations must preserve
// acceptance order per application and must never expose aliased internal
// state to callers.
//
// Error Contract:
// - Append returns nil on success; infrastructure failures are wrapped errors
// - ListByApp returns an empty slice (not an error) for unknown applications
type Store interface {
	Append(ctx context.Context, ev Event) error
	ListByApp(ctx context.Context, appID id.AppID) ([]Event, error)
}
