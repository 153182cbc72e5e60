package capability

import (
	"context"

	id "pinksync/pkg/domain"
)

// Store holds declarations keyed by app. Replace is atomic: a concurrent
// reader sees either the old declaration or the new one, never a blend.
//
// Error Contract:
// - List never fails for well-formed filters; unknown apps yield empty results
// - Exists is a cheap membership probe for the compliance engine
type Store interface {
	Replace(ctx context.Context, decl Declaration) error
	List(ctx context.Context, filter QueryFilter) ([]Declaration, error)
	Exists(ctx context.Context, appID id.AppID) (bool, error)
}
