package subscription

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"

	id "pinksync/pkg/domain"
	dErrors "pinksync/pkg/domain-errors"
	"pinksync/pkg/platform/sentinel"
)

// Service owns subscription creation and event matching. Delivery is not its
// concern: Match ends at producing the matched subscriptions.
type Service struct {
	store Store
}

// NewService constructs the subscription service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// SubscribeInput carries an already-parsed subscription request.
type SubscribeInput struct {
	ConsumerID id.ConsumerID
	EventTypes []id.Intent
	WebhookURL string
	Filter     *Filter
	ExpiresAt  *time.Time
}

// Subscribe creates an active subscription for the consumer.
//
// Errors: CodeInvalidInput for an empty event-type set or a malformed
// webhook URL; CodeConflict when the consumer already holds an active
// subscription. A conflict never alters the existing subscription.
func (s *Service) Subscribe(ctx context.Context, in SubscribeInput, now time.Time) (Subscription, error) {
	if len(in.EventTypes) == 0 {
		return Subscription{}, dErrors.New(dErrors.CodeInvalidInput, "event_types cannot be empty")
	}
	if in.WebhookURL != "" {
		parsed, err := url.Parse(in.WebhookURL)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
			return Subscription{}, dErrors.New(dErrors.CodeInvalidInput, "webhook_url must be an absolute http(s) URL")
		}
	}

	sub := Subscription{
		SubscriptionID: "sub_" + uuid.NewString(),
		ConsumerID:     in.ConsumerID,
		EventTypes:     in.EventTypes,
		WebhookURL:     in.WebhookURL,
		Filter:         in.Filter,
		Status:         StatusActive,
		CreatedAt:      now,
		ExpiresAt:      in.ExpiresAt,
	}
	if err := s.store.Create(ctx, sub); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return Subscription{}, dErrors.New(dErrors.CodeConflict,
				fmt.Sprintf("consumer %s already has an active subscription", in.ConsumerID))
		}
		return Subscription{}, err
	}
	return sub, nil
}

// Match returns every active subscription the event must be delivered to.
// The level argument is the application's derived compliance level as it
// stood immediately before this event's own counter increment.
func (s *Service) Match(ctx context.Context, appID id.AppID, intent id.Intent, level id.ComplianceLevel, now time.Time) ([]Subscription, error) {
	active, err := s.store.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	matched := make([]Subscription, 0, len(active))
	for _, sub := range active {
		if sub.Matches(appID, intent, level, now) {
			matched = append(matched, sub)
		}
	}
	return matched, nil
}
