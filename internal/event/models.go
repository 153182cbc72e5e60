package event

import (
	"time"

	id "pinksync/pkg/domain"
)

// Event is an accepted accessibility event. Once appended to the store it is
// frozen: no field is ever mutated and no event is ever deleted.
type Event struct {
	EventID   string
	AppID     id.AppID
	UserID    id.UserID // empty for anonymous events
	Intent    id.Intent
	Timestamp time.Time
	Metadata  map[string]any
	// LevelHint is the compliance level the caller believes this event
	// relates to. Informational only; derivation never reads it.
	LevelHint id.ComplianceLevel
	Signature string
}

// Clone returns a deep enough copy that callers cannot reach back into
// stored state through the metadata map.
func (e Event) Clone() Event {
	if e.Metadata != nil {
		meta := make(map[string]any, len(e.Metadata))
		for k, v := range e.Metadata {
			meta[k] = v
		}
		e.Metadata = meta
	}
	return e
}
