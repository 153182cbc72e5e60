package compliance

import (
	"context"
	"errors"
	"time"

	id "pinksync/pkg/domain"
	dErrors "pinksync/pkg/domain-errors"
	"pinksync/pkg/platform/sentinel"
)

// CapabilityChecker is the engine's read-only view of the capability
// registry. An application with a declaration but no events still gets a
// report instead of a not-found.
type CapabilityChecker interface {
	Exists(ctx context.Context, appID id.AppID) (bool, error)
}

// Engine derives compliance levels and statuses from accumulated state.
// Derivation is a pure function of the current State; the engine holds no
// caches, so a report always reflects the counter as it stands.
type Engine struct {
	states StateStore
	caps   CapabilityChecker
}

// NewEngine constructs the compliance engine.
func NewEngine(states StateStore, caps CapabilityChecker) *Engine {
	return &Engine{states: states, caps: caps}
}

// RecordEvent increments the application's counter. The broker calls this
// exactly once per stored event, after the append succeeds, so rejected
// events are never counted. Returns the new count.
func (e *Engine) RecordEvent(ctx context.Context, appID id.AppID, at time.Time) (int64, error) {
	return e.states.RecordEvent(ctx, appID, at)
}

// RecordViolation appends a violation from the external auditing feed.
//
// Errors: CodeNotFound when the application has no recorded events.
func (e *Engine) RecordViolation(ctx context.Context, appID id.AppID, v Violation) error {
	if err := e.states.AppendViolation(ctx, appID, v); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "unknown application")
		}
		return err
	}
	return nil
}

// CurrentLevel returns the derived level from the counter as it stands,
// without touching violations. The subscription matcher reads this before
// an event's own increment so an event cannot qualify itself.
func (e *Engine) CurrentLevel(ctx context.Context, appID id.AppID) (id.ComplianceLevel, error) {
	st, err := e.states.Get(ctx, appID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return LevelForCount(0), nil
		}
		return "", err
	}
	return LevelForCount(st.EventsCount), nil
}

// Derive computes the full compliance report for an application.
//
// Errors: CodeNotFound when the application has neither recorded events nor
// a capability declaration; the report is never silently zeroed.
func (e *Engine) Derive(ctx context.Context, appID id.AppID) (Report, error) {
	st, err := e.states.Get(ctx, appID)
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			return Report{}, err
		}
		declared, capErr := e.caps.Exists(ctx, appID)
		if capErr != nil {
			return Report{}, capErr
		}
		if !declared {
			return Report{}, dErrors.New(dErrors.CodeNotFound, "unknown application")
		}
		st = State{AppID: appID}
	}

	report := Report{
		AppID:       appID,
		Level:       LevelForCount(st.EventsCount),
		Status:      statusFor(st.Violations),
		EventsCount: st.EventsCount,
		LastEventAt: st.LastEventAt,
		Violations:  st.Violations,
	}
	if report.Violations == nil {
		report.Violations = []Violation{}
	}
	if report.Status == StatusCompliant {
		report.CertificateURL = certificateURL(appID, report.Level)
	}
	return report, nil
}

// statusFor flags non-compliance when any critical violation exists. Status
// is deliberately independent of level.
func statusFor(violations []Violation) Status {
	for _, v := range violations {
		if v.Severity == id.SeverityCritical {
			return StatusNonCompliant
		}
	}
	return StatusCompliant
}
