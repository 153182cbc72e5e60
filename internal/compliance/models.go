package compliance

import (
	"fmt"
	"time"

	id "pinksync/pkg/domain"
)

// Status is the compliance verdict, independent of level. An application can
// be gold and non-compliant at the same time.
type Status string

const (
	StatusCompliant    Status = "compliant"
	StatusNonCompliant Status = "non-compliant"
)

// Violation is a recorded compliance breach. Violations arrive from an
// out-of-band auditing feed; the engine only reads them.
type Violation struct {
	Type        string
	Severity    id.Severity
	Timestamp   time.Time
	Description string
}

// State is the per-application accumulator mutated as a side effect of event
// acceptance. EventsCount only ever grows and Violations is append-only.
type State struct {
	AppID       id.AppID
	EventsCount int64
	Violations  []Violation
	LastEventAt time.Time
}

// Report is the derived compliance view returned to callers. It is computed
// purely from State; nothing in a Report is stored.
type Report struct {
	AppID          id.AppID
	Level          id.ComplianceLevel
	Status         Status
	EventsCount    int64
	LastEventAt    time.Time
	Violations     []Violation
	CertificateURL string // empty unless Status == StatusCompliant
}

// Level thresholds over cumulative events_count. The thresholds are strictly
// increasing over a strictly increasing counter, so a derived level can never
// go backwards.
const (
	silverThreshold = 50
	goldThreshold   = 200
)

// LevelForCount maps a cumulative event count to a derived level. Every
// application floor is bronze; platinum is never derived from counts.
func LevelForCount(n int64) id.ComplianceLevel {
	switch {
	case n >= goldThreshold:
		return id.LevelGold
	case n >= silverThreshold:
		return id.LevelSilver
	default:
		return id.LevelBronze
	}
}

// certificateURL is a stable, deterministic function of app and level. The
// certificate itself is not cryptographically verifiable in this core.
func certificateURL(appID id.AppID, level id.ComplianceLevel) string {
	return fmt.Sprintf("https://pinksync.org/certificates/%s-%s", appID, level)
}
