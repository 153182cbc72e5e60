// Package signature produces the deterministic integrity stamp attached to
// every accepted event. The stamp lets a third party audit "this event was
// truly accepted by the broker at this time" without trusting the store:
// given the four identifying fields, anyone can recompute the signature.
package signature

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	id "pinksync/pkg/domain"
)

// Sign computes the SHA-256 hex digest of the canonical concatenation of the
// event's identifying fields. It is a pure function: no salt, no shared
// state, identical inputs always yield identical output.
//
// Canonical form: event_id|app_id|intent|timestamp, with the timestamp
// rendered as RFC 3339 with nanoseconds in UTC so every verifier serializes
// time identically.
func Sign(eventID string, appID id.AppID, intent id.Intent, ts time.Time) string {
	payload := strings.Join([]string{
		eventID,
		appID.String(),
		intent.String(),
		ts.UTC().Format(time.RFC3339Nano),
	}, "|")
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// Verify recomputes the signature and compares it to the presented one.
func Verify(sig, eventID string, appID id.AppID, intent id.Intent, ts time.Time) bool {
	return sig == Sign(eventID, appID, intent, ts)
}
