package audit

import (
	"time"

	id "pinksync/pkg/domain"
)

// Action identifies what happened. Values are stable strings so downstream
// consumers can filter without importing this package.
type Action string

const (
	ActionEventAccepted       Action = "event_accepted"
	ActionEventRejected       Action = "event_rejected"
	ActionCapabilityDeclared  Action = "capability_declared"
	ActionSubscriptionCreated Action = "subscription_created"
	ActionViolationRecorded   Action = "violation_recorded"
)

// Event is emitted from domain logic to capture key broker actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp  time.Time
	Action     Action
	AppID      id.AppID
	ConsumerID id.ConsumerID
	ActorID    string
	Detail     string
}
