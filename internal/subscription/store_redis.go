package subscription

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	id "pinksync/pkg/domain"
	"pinksync/pkg/platform/sentinel"
)

const (
	// Redis key prefix for subscriptions, keyed by consumer.
	consumerKeyPrefix = "psync:sub:consumer:"
	// Redis set of all consumer IDs with a stored subscription.
	consumersSetKey = "psync:sub:consumers"
)

// RedisStore is a Redis-backed subscription store for deployments where
// several broker instances must share the per-consumer uniqueness invariant.
// SETNX makes the check-then-insert a single atomic step on the server.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore constructs a Redis-backed subscription store. The client
// lifecycle is managed by the caller.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Create(ctx context.Context, sub Subscription) error {
	payload, err := json.Marshal(redisSubscription(sub))
	if err != nil {
		return fmt.Errorf("marshal subscription: %w", err)
	}

	key := consumerKeyPrefix + sub.ConsumerID.String()
	ok, err := s.client.SetNX(ctx, key, payload, 0).Result()
	if err != nil {
		return fmt.Errorf("create subscription: %w", err)
	}
	if !ok {
		return fmt.Errorf("active subscription for %s: %w", sub.ConsumerID, sentinel.ErrConflict)
	}
	if err := s.client.SAdd(ctx, consumersSetKey, sub.ConsumerID.String()).Err(); err != nil {
		return fmt.Errorf("index subscription: %w", err)
	}
	return nil
}

func (s *RedisStore) FindByConsumer(ctx context.Context, consumerID id.ConsumerID) (Subscription, error) {
	raw, err := s.client.Get(ctx, consumerKeyPrefix+consumerID.String()).Result()
	if errors.Is(err, redis.Nil) {
		return Subscription{}, fmt.Errorf("subscription for %s: %w", consumerID, sentinel.ErrNotFound)
	}
	if err != nil {
		return Subscription{}, fmt.Errorf("find subscription: %w", err)
	}
	var stored storedSubscription
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return Subscription{}, fmt.Errorf("unmarshal subscription: %w", err)
	}
	return stored.toDomain(), nil
}

func (s *RedisStore) ListActive(ctx context.Context) ([]Subscription, error) {
	consumers, err := s.client.SMembers(ctx, consumersSetKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list consumers: %w", err)
	}
	if len(consumers) == 0 {
		return []Subscription{}, nil
	}

	keys := make([]string, len(consumers))
	for i, c := range consumers {
		keys[i] = consumerKeyPrefix + c
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}

	out := make([]Subscription, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue // consumer removed between SMEMBERS and MGET
		}
		var stored storedSubscription
		if err := json.Unmarshal([]byte(raw), &stored); err != nil {
			return nil, fmt.Errorf("unmarshal subscription: %w", err)
		}
		sub := stored.toDomain()
		if sub.Status == StatusActive {
			out = append(out, sub)
		}
	}
	return out, nil
}

// storedSubscription is the JSON wire shape persisted in Redis.
type storedSubscription struct {
	SubscriptionID   string   `json:"subscription_id"`
	ConsumerID       string   `json:"consumer_id"`
	EventTypes       []string `json:"event_types"`
	WebhookURL       string   `json:"webhook_url,omitempty"`
	AppIDs           []string `json:"filter_app_ids,omitempty"`
	Intents          []string `json:"filter_intents,omitempty"`
	ComplianceLevels []string `json:"filter_compliance_levels,omitempty"`
	HasFilter        bool     `json:"has_filter"`
	Status           string   `json:"status"`
	CreatedAt        int64    `json:"created_at_unix_nano"`
	ExpiresAt        *int64   `json:"expires_at_unix_nano,omitempty"`
}

func redisSubscription(sub Subscription) storedSubscription {
	stored := storedSubscription{
		SubscriptionID: sub.SubscriptionID,
		ConsumerID:     sub.ConsumerID.String(),
		EventTypes:     intentsToStrings(sub.EventTypes),
		WebhookURL:     sub.WebhookURL,
		Status:         string(sub.Status),
		CreatedAt:      sub.CreatedAt.UnixNano(),
	}
	if sub.ExpiresAt != nil {
		nanos := sub.ExpiresAt.UnixNano()
		stored.ExpiresAt = &nanos
	}
	if sub.Filter != nil {
		stored.HasFilter = true
		for _, a := range sub.Filter.AppIDs {
			stored.AppIDs = append(stored.AppIDs, a.String())
		}
		for _, i := range sub.Filter.Intents {
			stored.Intents = append(stored.Intents, i.String())
		}
		for _, l := range sub.Filter.ComplianceLevels {
			stored.ComplianceLevels = append(stored.ComplianceLevels, l.String())
		}
	}
	return stored
}

func (s storedSubscription) toDomain() Subscription {
	sub := Subscription{
		SubscriptionID: s.SubscriptionID,
		ConsumerID:     id.ConsumerID(s.ConsumerID),
		WebhookURL:     s.WebhookURL,
		Status:         Status(s.Status),
		CreatedAt:      unixNano(s.CreatedAt),
	}
	for _, e := range s.EventTypes {
		sub.EventTypes = append(sub.EventTypes, id.Intent(e))
	}
	if s.ExpiresAt != nil {
		t := unixNano(*s.ExpiresAt)
		sub.ExpiresAt = &t
	}
	if s.HasFilter {
		f := &Filter{}
		for _, a := range s.AppIDs {
			f.AppIDs = append(f.AppIDs, id.AppID(a))
		}
		for _, i := range s.Intents {
			f.Intents = append(f.Intents, id.Intent(i))
		}
		for _, l := range s.ComplianceLevels {
			f.ComplianceLevels = append(f.ComplianceLevels, id.ComplianceLevel(l))
		}
		sub.Filter = f
	}
	return sub
}

func unixNano(n int64) time.Time { return time.Unix(0, n).UTC() }

func intentsToStrings(intents []id.Intent) []string {
	out := make([]string, 0, len(intents))
	for _, i := range intents {
		out = append(out, i.String())
	}
	return out
}
