package compliance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	id "pinksync/pkg/domain"
	dErrors "pinksync/pkg/domain-errors"
)

type stubCapabilityChecker struct {
	declared map[id.AppID]bool
}

func (s *stubCapabilityChecker) Exists(_ context.Context, appID id.AppID) (bool, error) {
	return s.declared[appID], nil
}

type EngineSuite struct {
	suite.Suite
	store  *InMemoryStateStore
	caps   *stubCapabilityChecker
	engine *Engine
}

func (s *EngineSuite) SetupTest() {
	s.store = NewInMemoryStateStore()
	s.caps = &stubCapabilityChecker{declared: make(map[id.AppID]bool)}
	s.engine = NewEngine(s.store, s.caps)
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) recordN(appID id.AppID, n int) {
	ctx := context.Background()
	for i := 0; i < n; i++ {
		_, err := s.engine.RecordEvent(ctx, appID, time.Now())
		s.Require().NoError(err)
	}
}

// TestThresholdExactness pins the tier boundaries: 9 events is bronze, 10 is
// still bronze (boundary inclusive), 50 flips to silver, 200 to gold.
func (s *EngineSuite) TestThresholdExactness() {
	ctx := context.Background()
	app := id.AppID("tiers-app")

	checkpoints := map[int]id.ComplianceLevel{
		1:   id.LevelBronze,
		9:   id.LevelBronze,
		10:  id.LevelBronze,
		49:  id.LevelBronze,
		50:  id.LevelSilver,
		199: id.LevelSilver,
		200: id.LevelGold,
		500: id.LevelGold,
	}

	total := 0
	for _, n := range []int{1, 9, 10, 49, 50, 199, 200, 500} {
		s.recordN(app, n-total)
		total = n
		report, err := s.engine.Derive(ctx, app)
		s.Require().NoError(err)
		s.Equal(checkpoints[n], report.Level, "at %d events", n)
		s.Equal(int64(n), report.EventsCount)
	}
}

// TestMonotonicity verifies the one-directional ratchet: as the counter
// grows the level never decreases.
func (s *EngineSuite) TestMonotonicity() {
	ctx := context.Background()
	app := id.AppID("ratchet-app")

	prev := id.LevelBronze
	for i := 0; i < 250; i++ {
		_, err := s.engine.RecordEvent(ctx, app, time.Now())
		s.Require().NoError(err)
		report, err := s.engine.Derive(ctx, app)
		s.Require().NoError(err)
		s.True(report.Level.AtLeast(prev), "level regressed at event %d", i+1)
		prev = report.Level
	}
	s.Equal(id.LevelGold, prev)
}

func (s *EngineSuite) TestUnknownApplication() {
	_, err := s.engine.Derive(context.Background(), "never-seen")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

// TestDeclaredButSilentApp gets a zero-count bronze report rather than a 404:
// a capability declaration is enough to make the application known.
func (s *EngineSuite) TestDeclaredButSilentApp() {
	app := id.AppID("declared-only")
	s.caps.declared[app] = true

	report, err := s.engine.Derive(context.Background(), app)
	s.Require().NoError(err)
	s.Equal(id.LevelBronze, report.Level)
	s.Equal(int64(0), report.EventsCount)
	s.Equal(StatusCompliant, report.Status)
}

// TestStatusIndependentOfLevel: a critical violation makes a gold app
// non-compliant without touching its level, and drops the certificate.
func (s *EngineSuite) TestStatusIndependentOfLevel() {
	ctx := context.Background()
	app := id.AppID("gold-but-broken")
	s.recordN(app, 200)

	report, err := s.engine.Derive(ctx, app)
	s.Require().NoError(err)
	s.Equal(id.LevelGold, report.Level)
	s.Equal(StatusCompliant, report.Status)
	s.Equal("https://pinksync.org/certificates/gold-but-broken-gold", report.CertificateURL)

	err = s.engine.RecordViolation(ctx, app, Violation{
		Type:      "missing_captions",
		Severity:  id.SeverityCritical,
		Timestamp: time.Now(),
	})
	s.Require().NoError(err)

	report, err = s.engine.Derive(ctx, app)
	s.Require().NoError(err)
	s.Equal(id.LevelGold, report.Level)
	s.Equal(StatusNonCompliant, report.Status)
	s.Empty(report.CertificateURL)
	s.Len(report.Violations, 1)
}

// TestNonCriticalViolationsKeepCompliant: warnings and infos are recorded
// but do not flip status.
func (s *EngineSuite) TestNonCriticalViolationsKeepCompliant() {
	ctx := context.Background()
	app := id.AppID("warned-app")
	s.recordN(app, 5)

	for _, sev := range []id.Severity{id.SeverityWarning, id.SeverityInfo} {
		err := s.engine.RecordViolation(ctx, app, Violation{Type: "contrast_low", Severity: sev, Timestamp: time.Now()})
		s.Require().NoError(err)
	}

	report, err := s.engine.Derive(ctx, app)
	s.Require().NoError(err)
	s.Equal(StatusCompliant, report.Status)
	s.Len(report.Violations, 2)
	s.NotEmpty(report.CertificateURL)
}

func (s *EngineSuite) TestViolationForUnknownAppFails() {
	err := s.engine.RecordViolation(context.Background(), "ghost", Violation{
		Type: "anything", Severity: id.SeverityCritical, Timestamp: time.Now(),
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

// TestCurrentLevelDefaultsToBronze: the matcher's pre-increment read for an
// app with no state sees the floor, not an error.
func (s *EngineSuite) TestCurrentLevelDefaultsToBronze() {
	level, err := s.engine.CurrentLevel(context.Background(), "fresh-app")
	s.Require().NoError(err)
	s.Equal(id.LevelBronze, level)
}
