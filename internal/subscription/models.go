package subscription

import (
	"time"

	id "pinksync/pkg/domain"
)

// Status is the subscription lifecycle state. The broker only creates active
// subscriptions; inactive supports revocation and pending exists for wire
// compatibility with consumers that stage subscriptions externally.
type Status string

const (
	StatusActive   Status = "active"
	StatusPending  Status = "pending"
	StatusInactive Status = "inactive"
)

// Filter is an optional conjunctive predicate over event traffic. Every
// non-empty field must be satisfied; an empty list means "any".
type Filter struct {
	AppIDs           []id.AppID
	Intents          []id.Intent
	ComplianceLevels []id.ComplianceLevel
}

// Subscription is a consumer's standing request for matching events.
// Invariant: at most one active subscription per consumer.
type Subscription struct {
	SubscriptionID string
	ConsumerID     id.ConsumerID
	EventTypes     []id.Intent
	WebhookURL     string
	Filter         *Filter
	Status         Status
	CreatedAt      time.Time
	ExpiresAt      *time.Time
}

// Matches evaluates this subscription against an event's intent, its app,
// and the app's compliance level as it stood before the event's own counter
// increment. A nil filter matches everything the event-type set allows.
func (s Subscription) Matches(appID id.AppID, intent id.Intent, level id.ComplianceLevel, now time.Time) bool {
	if s.Status != StatusActive {
		return false
	}
	if s.ExpiresAt != nil && !now.Before(*s.ExpiresAt) {
		return false
	}
	if !containsIntent(s.EventTypes, intent) {
		return false
	}
	if s.Filter == nil {
		return true
	}
	if len(s.Filter.AppIDs) > 0 && !containsApp(s.Filter.AppIDs, appID) {
		return false
	}
	if len(s.Filter.Intents) > 0 && !containsIntent(s.Filter.Intents, intent) {
		return false
	}
	if len(s.Filter.ComplianceLevels) > 0 && !containsLevel(s.Filter.ComplianceLevels, level) {
		return false
	}
	return true
}

func containsIntent(list []id.Intent, v id.Intent) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func containsApp(list []id.AppID, v id.AppID) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func containsLevel(list []id.ComplianceLevel, v id.ComplianceLevel) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
