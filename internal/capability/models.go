package capability

import (
	"time"

	id "pinksync/pkg/domain"
)

// Declaration is an application's self-declared capability set. One
// declaration per app: a re-declaration replaces the prior one wholesale
// (last-write-wins), it is not an update log.
type Declaration struct {
	AppID           id.AppID
	Capabilities    []id.Intent
	ComplianceLevel id.ComplianceLevel // self-declared, distinct from the derived level
	Version         string
	RegisteredAt    time.Time
}

// Supports reports whether the declaration's capability set contains intent.
func (d Declaration) Supports(intent id.Intent) bool {
	for _, c := range d.Capabilities {
		if c == intent {
			return true
		}
	}
	return false
}

// QueryFilter narrows a registry query. All supplied fields must match
// (conjunctive); zero values mean "any".
type QueryFilter struct {
	AppID           id.AppID
	ComplianceLevel id.ComplianceLevel
	Intent          id.Intent
}
