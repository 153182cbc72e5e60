package broker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"pinksync/internal/audit"
	"pinksync/internal/capability"
	"pinksync/internal/compliance"
	"pinksync/internal/event"
	"pinksync/internal/subscription"
	id "pinksync/pkg/domain"
	dErrors "pinksync/pkg/domain-errors"
)

type recordingDelivery struct {
	mu     sync.Mutex
	events []event.Event
	subs   [][]subscription.Subscription
}

func (d *recordingDelivery) Deliver(ev event.Event, matches []subscription.Subscription) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, ev)
	d.subs = append(d.subs, matches)
}

type BrokerSuite struct {
	suite.Suite
	broker   *Broker
	events   *event.InMemoryStore
	caps     *capability.Service
	delivery   *recordingDelivery
	auditor    *audit.Publisher
	auditStore *audit.InMemoryStore
	ctx        context.Context
}

func (s *BrokerSuite) SetupTest() {
	s.ctx = context.Background()
	s.events = event.NewInMemoryStore()
	s.caps = capability.NewService(capability.NewInMemoryStore())
	engine := compliance.NewEngine(compliance.NewInMemoryStateStore(), s.caps)
	subs := subscription.NewService(subscription.NewInMemoryStore())
	s.delivery = &recordingDelivery{}
	s.auditStore = audit.NewInMemoryStore()
	s.auditor = audit.NewPublisher(s.auditStore, 1024)
	s.broker = New(s.events, engine, s.caps, subs, slog.New(slog.DiscardHandler), Options{
		Delivery: s.delivery,
		Auditor:  s.auditor,
	})
}

func TestBrokerSuite(t *testing.T) {
	suite.Run(t, new(BrokerSuite))
}

func (s *BrokerSuite) submit(appID id.AppID, intent id.Intent) SubmitResult {
	res, err := s.broker.SubmitEvent(s.ctx, SubmitInput{AppID: appID, Intent: intent})
	s.Require().NoError(err)
	return res
}

func (s *BrokerSuite) TestSubmitEvent_SignsAndStores() {
	appID := id.AppID("screen-reader-app")
	res := s.submit(appID, id.IntentSignLanguage)

	s.Require().NotEmpty(res.Event.EventID)
	s.Contains(res.Event.EventID, "evt_")
	s.Len(res.Event.Signature, 64)
	s.Equal(int64(1), res.EventsCount)

	stored, err := s.events.ListByApp(s.ctx, appID)
	s.Require().NoError(err)
	s.Require().Len(stored, 1)
	s.Equal(res.Event.EventID, stored[0].EventID)
	s.Equal(res.Event.Signature, stored[0].Signature)
}

func (s *BrokerSuite) TestSubmitEvent_AppendOnlyOrdering() {
	appID := id.AppID("ordering-app")
	var ids []string
	for i := 0; i < 20; i++ {
		ids = append(ids, s.submit(appID, id.IntentVisualOnly).Event.EventID)
	}

	stored, err := s.events.ListByApp(s.ctx, appID)
	s.Require().NoError(err)
	s.Require().Len(stored, 20)
	for i, ev := range stored {
		s.Equal(ids[i], ev.EventID)
	}
}

func (s *BrokerSuite) TestCompliance_ThresholdsEndToEnd() {
	appID := id.AppID("tiered-app")

	checkpoints := map[int]id.ComplianceLevel{
		1:   id.LevelBronze,
		49:  id.LevelBronze,
		50:  id.LevelSilver,
		199: id.LevelSilver,
		200: id.LevelGold,
		210: id.LevelGold,
	}

	for i := 1; i <= 210; i++ {
		s.submit(appID, id.IntentCaptionsMandatory)
		if want, ok := checkpoints[i]; ok {
			report, err := s.broker.GetCompliance(s.ctx, appID)
			s.Require().NoError(err)
			s.Equal(want, report.Level, "after %d events", i)
			s.Equal(int64(i), report.EventsCount)
		}
	}
}

func (s *BrokerSuite) TestMatching_UsesPreIncrementLevel() {
	appID := id.AppID("threshold-app")
	consumer := id.ConsumerID("relay-service")

	_, err := s.broker.CreateSubscription(s.ctx, subscription.SubscribeInput{
		ConsumerID: consumer,
		EventTypes: []id.Intent{id.IntentVisualOnly},
		WebhookURL: "https://consumer.example/hook",
		Filter: &subscription.Filter{
			ComplianceLevels: []id.ComplianceLevel{id.LevelSilver},
		},
	})
	s.Require().NoError(err)

	for i := 1; i <= 49; i++ {
		res := s.submit(appID, id.IntentVisualOnly)
		s.Empty(res.Matched, "event %d is pre-silver", i)
	}

	// The 50th event takes the counter to 50 but is matched at the level
	// that stood before it, which is still bronze.
	res := s.submit(appID, id.IntentVisualOnly)
	s.Empty(res.Matched, "the event crossing the threshold cannot match itself")

	// The 51st event sees silver.
	res = s.submit(appID, id.IntentVisualOnly)
	s.Require().Len(res.Matched, 1)
	s.Equal(consumer, res.Matched[0].ConsumerID)
}

func (s *BrokerSuite) TestMatching_HandsOffToDelivery() {
	appID := id.AppID("delivered-app")
	_, err := s.broker.CreateSubscription(s.ctx, subscription.SubscribeInput{
		ConsumerID: id.ConsumerID("caption-consumer"),
		EventTypes: []id.Intent{id.IntentCaptionsMandatory},
		WebhookURL: "https://consumer.example/hook",
	})
	s.Require().NoError(err)

	res := s.submit(appID, id.IntentCaptionsMandatory)
	s.Require().Len(res.Matched, 1)

	s.delivery.mu.Lock()
	defer s.delivery.mu.Unlock()
	s.Require().Len(s.delivery.events, 1)
	s.Equal(res.Event.EventID, s.delivery.events[0].EventID)
	s.Len(s.delivery.subs[0], 1)
}

func (s *BrokerSuite) TestSubmitBatch_ItemsAreIndependent() {
	appID := id.AppID("batch-app")
	result := s.broker.SubmitBatch(s.ctx, []SubmitInput{
		{AppID: appID, Intent: id.IntentVisualOnly},
		{AppID: appID, Intent: id.IntentNoAudioCues},
		{AppID: appID, Intent: id.IntentHighContrast},
	})
	s.Len(result.Accepted, 3)
	s.Empty(result.Rejected)

	report, err := s.broker.GetCompliance(s.ctx, appID)
	s.Require().NoError(err)
	s.Equal(int64(3), report.EventsCount)
}

func (s *BrokerSuite) TestGetCompliance_UnknownApp() {
	_, err := s.broker.GetCompliance(s.ctx, id.AppID("never-seen"))
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *BrokerSuite) TestRecordViolation_FlipsStatusNotLevel() {
	appID := id.AppID("audited-app")
	for i := 0; i < 60; i++ {
		s.submit(appID, id.IntentTextPrimary)
	}

	err := s.broker.RecordViolation(s.ctx, appID, "auditor-1", compliance.Violation{
		Type:        "missing_alt_text",
		Severity:    id.SeverityCritical,
		Timestamp:   time.Now(),
		Description: "images shipped without alt text",
	})
	s.Require().NoError(err)

	report, err := s.broker.GetCompliance(s.ctx, appID)
	s.Require().NoError(err)
	s.Equal(id.LevelSilver, report.Level)
	s.Equal(compliance.StatusNonCompliant, report.Status)
	s.Empty(report.CertificateURL)
}

func (s *BrokerSuite) TestDeclareCapability_VisibleToComplianceChecks() {
	appID := id.AppID("declared-app")
	_, err := s.broker.DeclareCapability(s.ctx, capability.DeclareInput{
		AppID:           appID,
		Capabilities:    []id.Intent{id.IntentSignLanguage},
		ComplianceLevel: id.LevelBronze,
		Version:         "1.0.0",
	})
	s.Require().NoError(err)

	// Declared but silent apps still get a report.
	report, err := s.broker.GetCompliance(s.ctx, appID)
	s.Require().NoError(err)
	s.Equal(int64(0), report.EventsCount)
	s.Equal(id.LevelBronze, report.Level)
}

func (s *BrokerSuite) TestSubmit_CrossAppParallelism() {
	const perApp = 25
	var wg sync.WaitGroup
	for a := 0; a < 4; a++ {
		appID := id.AppID(fmt.Sprintf("parallel-app-%d", a))
		for i := 0; i < perApp; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := s.broker.SubmitEvent(s.ctx, SubmitInput{
					AppID:  appID,
					Intent: id.IntentReducedMotion,
				})
				s.NoError(err)
			}()
		}
	}
	wg.Wait()

	for a := 0; a < 4; a++ {
		appID := id.AppID(fmt.Sprintf("parallel-app-%d", a))
		report, err := s.broker.GetCompliance(s.ctx, appID)
		s.Require().NoError(err)
		s.Equal(int64(perApp), report.EventsCount)

		stored, err := s.events.ListByApp(s.ctx, appID)
		s.Require().NoError(err)
		s.Len(stored, perApp)
	}
}

func (s *BrokerSuite) TestAudit_TrailRecordsAcceptance() {
	appID := id.AppID("audited-trail-app")
	worker := audit.NewWorker(s.auditStore, s.auditor.Inbox(), slog.New(slog.DiscardHandler))
	ctx, cancel := context.WithCancel(s.ctx)
	defer cancel()
	go func() { _ = worker.Run(ctx) }()

	s.submit(appID, id.IntentVisualAlerts)

	s.Require().Eventually(func() bool {
		events, err := s.auditor.List(s.ctx, appID)
		return err == nil && len(events) == 1
	}, time.Second, 10*time.Millisecond)

	events, err := s.auditor.List(s.ctx, appID)
	s.Require().NoError(err)
	s.Equal(audit.ActionEventAccepted, events[0].Action)
}
