package domain

import "strings"

// RiskLevel is the assessed severity of a conversation, ordered
// GREEN < YELLOW < ORANGE < RED.
type RiskLevel string

const (
	RiskGreen  RiskLevel = "GREEN"
	RiskYellow RiskLevel = "YELLOW"
	RiskOrange RiskLevel = "ORANGE"
	RiskRed    RiskLevel = "RED"
)

// ParseRiskLevel maps a raw string to a RiskLevel. Unknown or empty values
// default to GREEN, matching the permissive default of the AI contract.
func ParseRiskLevel(s string) RiskLevel {
	switch RiskLevel(strings.ToUpper(strings.TrimSpace(s))) {
	case RiskYellow:
		return RiskYellow
	case RiskOrange:
		return RiskOrange
	case RiskRed:
		return RiskRed
	default:
		return RiskGreen
	}
}

// Severity returns the ordinal position of the level, GREEN being 0.
func (r RiskLevel) Severity() int {
	switch r {
	case RiskYellow:
		return 1
	case RiskOrange:
		return 2
	case RiskRed:
		return 3
	default:
		return 0
	}
}

// Elevated reports whether the level warrants an escalation record.
func (r RiskLevel) Elevated() bool {
	return r == RiskOrange || r == RiskRed
}
