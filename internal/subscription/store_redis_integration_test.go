//go:build integration

package subscription

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	id "pinksync/pkg/domain"
	"pinksync/pkg/platform/sentinel"
	"pinksync/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *RedisStore
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.store = NewRedisStore(s.redis.Client)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisStoreSuite) TestCreateAndFindRoundTrip() {
	ctx := context.Background()
	expires := time.Now().Add(24 * time.Hour).Truncate(time.Millisecond).UTC()
	sub := Subscription{
		SubscriptionID: "sub_redis_1",
		ConsumerID:     "accessibility-monitor-1",
		EventTypes:     []id.Intent{id.IntentVisualOnly, id.IntentCaptionsMandatory},
		WebhookURL:     "https://monitor.example.com/webhook",
		Filter: &Filter{
			ComplianceLevels: []id.ComplianceLevel{id.LevelGold, id.LevelPlatinum},
		},
		Status:    StatusActive,
		CreatedAt: time.Now().Truncate(time.Millisecond).UTC(),
		ExpiresAt: &expires,
	}
	s.Require().NoError(s.store.Create(ctx, sub))

	found, err := s.store.FindByConsumer(ctx, "accessibility-monitor-1")
	s.Require().NoError(err)
	s.Equal(sub.SubscriptionID, found.SubscriptionID)
	s.Equal(sub.EventTypes, found.EventTypes)
	s.Require().NotNil(found.Filter)
	s.Equal(sub.Filter.ComplianceLevels, found.Filter.ComplianceLevels)
	s.Require().NotNil(found.ExpiresAt)
	s.True(expires.Equal(*found.ExpiresAt))
}

// TestCreateIsAtomic: SETNX carries the uniqueness invariant across
// instances; the second create must conflict.
func (s *RedisStoreSuite) TestCreateIsAtomic() {
	ctx := context.Background()
	sub := Subscription{
		SubscriptionID: "sub_first",
		ConsumerID:     "dup-consumer",
		EventTypes:     []id.Intent{id.IntentVisualAlerts},
		Status:         StatusActive,
		CreatedAt:      time.Now(),
	}
	s.Require().NoError(s.store.Create(ctx, sub))

	dup := sub
	dup.SubscriptionID = "sub_second"
	err := s.store.Create(ctx, dup)
	s.Require().ErrorIs(err, sentinel.ErrConflict)

	kept, err := s.store.FindByConsumer(ctx, "dup-consumer")
	s.Require().NoError(err)
	s.Equal("sub_first", kept.SubscriptionID)
}

func (s *RedisStoreSuite) TestFindUnknownConsumer() {
	_, err := s.store.FindByConsumer(context.Background(), "nobody")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RedisStoreSuite) TestListActive() {
	ctx := context.Background()
	for _, consumer := range []id.ConsumerID{"c-one", "c-two", "c-three"} {
		s.Require().NoError(s.store.Create(ctx, Subscription{
			SubscriptionID: "sub_" + consumer.String(),
			ConsumerID:     consumer,
			EventTypes:     []id.Intent{id.IntentTextPrimary},
			Status:         StatusActive,
			CreatedAt:      time.Now(),
		}))
	}

	active, err := s.store.ListActive(ctx)
	s.Require().NoError(err)
	s.Len(active, 3)
}
