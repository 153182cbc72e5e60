package domain

import dErrors "pinksync/pkg/domain-errors"

// Intent is a declared accessibility need or state.
// Invariant: the value must be one of the supported intents.
//
// Usage: construct via ParseIntent at trust boundaries to enforce the
// allowlist; direct casting bypasses validation.
type Intent string

// Supported accessibility intents. This enumeration is closed: producers,
// the compliance engine, and the subscription matcher all agree on it, so
// adding a value here is a protocol change.
const (
	IntentVisualOnly        Intent = "visual_only"
	IntentSignLanguage      Intent = "sign_language"
	IntentReducedMotion     Intent = "reduced_motion"
	IntentHighContrast      Intent = "high_contrast"
	IntentCaptionsMandatory Intent = "captions_mandatory"
	IntentNoAudioCues       Intent = "no_audio_cues"
	IntentVisualAlerts      Intent = "visual_alerts"
	IntentTextPrimary       Intent = "text_primary"
)

// validIntents is the single source of truth for valid intents.
var validIntents = map[Intent]bool{
	IntentVisualOnly:        true,
	IntentSignLanguage:      true,
	IntentReducedMotion:     true,
	IntentHighContrast:      true,
	IntentCaptionsMandatory: true,
	IntentNoAudioCues:       true,
	IntentVisualAlerts:      true,
	IntentTextPrimary:       true,
}

// Intents returns the full taxonomy in a stable order.
func Intents() []Intent {
	return []Intent{
		IntentVisualOnly,
		IntentSignLanguage,
		IntentReducedMotion,
		IntentHighContrast,
		IntentCaptionsMandatory,
		IntentNoAudioCues,
		IntentVisualAlerts,
		IntentTextPrimary,
	}
}

// ParseIntent constructs an Intent from external input.
//
// Errors: returns CodeInvalidInput when the value is empty or unsupported.
func ParseIntent(s string) (Intent, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "intent cannot be empty")
	}
	i := Intent(s)
	if !i.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid intent")
	}
	return i, nil
}

// IsValid checks if the intent is one of the supported enum values.
func (i Intent) IsValid() bool {
	return validIntents[i]
}

// String returns the string representation of the intent.
func (i Intent) String() string {
	return string(i)
}
