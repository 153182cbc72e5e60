//go:build integration

package event

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	id "pinksync/pkg/domain"
	"pinksync/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = NewPostgresStore(s.postgres.DB)
	s.Require().NoError(s.store.EnsureSchema(context.Background()))
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "accessibility_events"))
}

func (s *PostgresStoreSuite) TestAppendAndListRoundTrip() {
	ctx := context.Background()
	ts := time.Date(2025, 12, 20, 18, 0, 0, 0, time.UTC)

	ev := Event{
		EventID:   "evt_pg_1",
		AppID:     "health-portal-v2",
		UserID:    "user-12345",
		Intent:    id.IntentVisualOnly,
		Timestamp: ts,
		Metadata:  map[string]any{"context": "emergency_alert", "severity": "required"},
		LevelHint: id.LevelGold,
		Signature: "deadbeef",
	}
	s.Require().NoError(s.store.Append(ctx, ev))

	got, err := s.store.ListByApp(ctx, "health-portal-v2")
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal(ev.EventID, got[0].EventID)
	s.Equal(ev.UserID, got[0].UserID)
	s.Equal(ev.Intent, got[0].Intent)
	s.True(ts.Equal(got[0].Timestamp))
	s.Equal("emergency_alert", got[0].Metadata["context"])
	s.Equal(ev.Signature, got[0].Signature)
}

// TestAcceptanceOrderSurvives: order comes from the serial column, not the
// caller-supplied timestamps, which the broker does not trust for ordering.
func (s *PostgresStoreSuite) TestAcceptanceOrderSurvives() {
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	// Append with deliberately reversed client timestamps.
	for i := 0; i < 10; i++ {
		s.Require().NoError(s.store.Append(ctx, Event{
			EventID:   fmt.Sprintf("evt_order_%d", i),
			AppID:     "ordered-app",
			Intent:    id.IntentReducedMotion,
			Timestamp: base.Add(-time.Duration(i) * time.Hour),
			Signature: "sig",
		}))
	}

	got, err := s.store.ListByApp(ctx, "ordered-app")
	s.Require().NoError(err)
	s.Require().Len(got, 10)
	for i := 0; i < 10; i++ {
		s.Equal(fmt.Sprintf("evt_order_%d", i), got[i].EventID)
	}
}

func (s *PostgresStoreSuite) TestDuplicateEventIDRejected() {
	ctx := context.Background()
	ev := Event{EventID: "evt_dup", AppID: "app-dup", Intent: id.IntentTextPrimary, Timestamp: time.Now(), Signature: "sig"}
	s.Require().NoError(s.store.Append(ctx, ev))
	s.Require().Error(s.store.Append(ctx, ev))
}
