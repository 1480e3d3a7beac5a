// Package entity defines the domain models for the prediction feature.
package entity

// RiskLevel is one of the four ordinal malnutrition risk categories the
// classifier can emit.
type RiskLevel string

const (
	RiskLow      RiskLevel = "Low"
	RiskModerate RiskLevel = "Moderate"
	RiskHigh     RiskLevel = "High"
	RiskVeryHigh RiskLevel = "Very High"
)

// fallbackDescription is returned for any label outside the known set,
// guarding against drift between the model artifact and this table.
const fallbackDescription = "No description available."

// riskDescriptions maps each known label to its human-readable meaning.
var riskDescriptions = map[RiskLevel]string{
	RiskLow:      "Minimal malnutrition risk.",
	RiskModerate: "Moderate risk. Consider intervention.",
	RiskHigh:     "High risk. Urgent intervention advised.",
	RiskVeryHigh: "Critical risk. Immediate intervention required.",
}

// Description returns the human-readable meaning of the risk level, or a
// generic fallback string for an unrecognized label.
func (r RiskLevel) Description() string {
	if d, ok := riskDescriptions[r]; ok {
		return d
	}
	return fallbackDescription
}
