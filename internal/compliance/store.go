package compliance

import (
	"context"
	"time"

	id "pinksync/pkg/domain"
)

// StateStore owns the per-application compliance accumulators.
//
// Error Contract:
// - Get and AppendViolation return ErrNotFound (wrapped) for unknown apps
// - RecordEvent creates state lazily and never fails for valid input
type StateStore interface {
	// RecordEvent increments the application's counter and stamps the
	// acceptance time, creating state on first use. Returns the new count.
	RecordEvent(ctx context.Context, appID id.AppID, at time.Time) (int64, error)

	// AppendViolation appends to the application's violation list.
	AppendViolation(ctx context.Context, appID id.AppID, v Violation) error

	// Get returns a copy of the application's current state.
	Get(ctx context.Context, appID id.AppID) (State, error)
}
