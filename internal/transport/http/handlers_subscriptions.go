package httptransport

import (
	"net/http"
	"time"

	"pinksync/internal/subscription"
	id "pinksync/pkg/domain"
	pstrings "pinksync/pkg/platform/strings"
)

type subscriptionFilterRequest struct {
	AppIDs           []string `json:"app_ids,omitempty"`
	Intents          []string `json:"intents,omitempty"`
	ComplianceLevels []string `json:"compliance_levels,omitempty"`
}

type subscribeRequest struct {
	ConsumerID string                     `json:"consumer_id"`
	EventTypes []string                   `json:"event_types"`
	WebhookURL string                     `json:"webhook_url"`
	Filter     *subscriptionFilterRequest `json:"filters,omitempty"`
	ExpiresAt  *time.Time                 `json:"expires_at,omitempty"`
}

type subscribeResponse struct {
	SubscriptionID string    `json:"subscription_id"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

func (req subscribeRequest) toSubscribeInput() (subscription.SubscribeInput, error) {
	consumerID, err := id.ParseConsumerID(req.ConsumerID)
	if err != nil {
		return subscription.SubscribeInput{}, err
	}

	types := make([]id.Intent, 0, len(req.EventTypes))
	for _, raw := range pstrings.DedupeAndTrimLower(req.EventTypes) {
		intent, err := id.ParseIntent(raw)
		if err != nil {
			return subscription.SubscribeInput{}, err
		}
		types = append(types, intent)
	}

	in := subscription.SubscribeInput{
		ConsumerID: consumerID,
		EventTypes: types,
		WebhookURL: req.WebhookURL,
		ExpiresAt:  req.ExpiresAt,
	}

	if req.Filter != nil {
		filter := &subscription.Filter{}
		for _, raw := range req.Filter.AppIDs {
			appID, err := id.ParseAppID(raw)
			if err != nil {
				return subscription.SubscribeInput{}, err
			}
			filter.AppIDs = append(filter.AppIDs, appID)
		}
		for _, raw := range req.Filter.Intents {
			intent, err := id.ParseIntent(raw)
			if err != nil {
				return subscription.SubscribeInput{}, err
			}
			filter.Intents = append(filter.Intents, intent)
		}
		for _, raw := range req.Filter.ComplianceLevels {
			level, err := id.ParseComplianceLevel(raw)
			if err != nil {
				return subscription.SubscribeInput{}, err
			}
			filter.ComplianceLevels = append(filter.ComplianceLevels, level)
		}
		in.Filter = filter
	}

	return in, nil
}

func (h *Handler) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req subscribeRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	in, err := req.toSubscribeInput()
	if err != nil {
		writeError(w, err)
		return
	}

	sub, err := h.broker.CreateSubscription(ctx, in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, subscribeResponse{
		SubscriptionID: sub.SubscriptionID,
		Status:         string(sub.Status),
		CreatedAt:      sub.CreatedAt,
	})
}
