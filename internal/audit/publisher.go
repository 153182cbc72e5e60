package audit

import (
	"context"
	"time"

	id "pinksync/pkg/domain"
)

// Publisher captures structured audit events. Emit hands events to a buffered
// inbox consumed by the Worker so the hot path never blocks on the sink; a
// full inbox drops the event rather than stall a submission.
type Publisher struct {
	inbox chan Event
	store Store
}

func NewPublisher(store Store, buffer int) *Publisher {
	if buffer <= 0 {
		buffer = 256
	}
	return &Publisher{
		inbox: make(chan Event, buffer),
		store: store,
	}
}

// Emit enqueues an audit event. Returns false if the inbox is full.
func (p *Publisher) Emit(base Event) bool {
	if base.Timestamp.IsZero() {
		base.Timestamp = time.Now()
	}
	select {
	case p.inbox <- base:
		return true
	default:
		return false
	}
}

// Inbox exposes the receive side for the Worker.
func (p *Publisher) Inbox() <-chan Event {
	return p.inbox
}

func (p *Publisher) List(ctx context.Context, appID id.AppID) ([]Event, error) {
	return p.store.ListByApp(ctx, appID)
}
