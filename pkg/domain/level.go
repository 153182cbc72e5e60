package domain

import dErrors "pinksync/pkg/domain-errors"

// ComplianceLevel is a tiered ranking of an application's accessibility
// maturity. Levels are ordered bronze < silver < gold < platinum.
type ComplianceLevel string

const (
	LevelBronze   ComplianceLevel = "bronze"
	LevelSilver   ComplianceLevel = "silver"
	LevelGold     ComplianceLevel = "gold"
	LevelPlatinum ComplianceLevel = "platinum"
)

// levelRank gives the ordering used for monotonicity checks. Platinum exists
// for declared levels only; the count-based derivation tops out at gold.
var levelRank = map[ComplianceLevel]int{
	LevelBronze:   0,
	LevelSilver:   1,
	LevelGold:     2,
	LevelPlatinum: 3,
}

// ParseComplianceLevel constructs a ComplianceLevel from external input.
//
// Errors: returns CodeInvalidInput when the value is empty or unsupported.
func ParseComplianceLevel(s string) (ComplianceLevel, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "compliance_level cannot be empty")
	}
	l := ComplianceLevel(s)
	if !l.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid compliance_level")
	}
	return l, nil
}

// IsValid checks if the level is one of the supported enum values.
func (l ComplianceLevel) IsValid() bool {
	_, ok := levelRank[l]
	return ok
}

// AtLeast reports whether l ranks at or above other.
func (l ComplianceLevel) AtLeast(other ComplianceLevel) bool {
	return levelRank[l] >= levelRank[other]
}

// String returns the string representation of the level.
func (l ComplianceLevel) String() string {
	return string(l)
}
