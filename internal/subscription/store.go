package subscription

import (
	"context"

	id "pinksync/pkg/domain"
)

// Store holds subscriptions keyed by consumer.
//
// Error Contract:
// - Create returns ErrConflict (wrapped) when the consumer already holds an
//   active subscription; the check and the insert are one atomic step
// - FindByConsumer returns ErrNotFound (wrapped) for unknown consumers
type Store interface {
	Create(ctx context.Context, sub Subscription) error
	FindByConsumer(ctx context.Context, consumerID id.ConsumerID) (Subscription, error)
	ListActive(ctx context.Context) ([]Subscription, error)
}
