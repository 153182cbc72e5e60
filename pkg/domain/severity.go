package domain

import dErrors "pinksync/pkg/domain-errors"

// Severity classifies a compliance violation. Only critical violations flip
// an application's status to non-compliant.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

var validSeverities = map[Severity]bool{
	SeverityCritical: true,
	SeverityWarning:  true,
	SeverityInfo:     true,
}

// ParseSeverity constructs a Severity from external input.
func ParseSeverity(s string) (Severity, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "severity cannot be empty")
	}
	sev := Severity(s)
	if !validSeverities[sev] {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid severity")
	}
	return sev, nil
}

// IsValid checks if the severity is one of the supported enum values.
func (s Severity) IsValid() bool {
	return validSeverities[s]
}

// String returns the string representation of the severity.
func (s Severity) String() string {
	return string(s)
}
