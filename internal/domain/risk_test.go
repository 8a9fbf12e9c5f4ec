package domain

import "testing"

func TestParseRiskLevel(t *testing.T) {
	tests := []struct {
		input string
		want  RiskLevel
	}{
		{"GREEN", RiskGreen},
		{"YELLOW", RiskYellow},
		{"ORANGE", RiskOrange},
		{"RED", RiskRed},
		{"red", RiskRed},
		{"  Orange  ", RiskOrange},
		{"", RiskGreen},
		{"PURPLE", RiskGreen},
		{"CRITICAL", RiskGreen},
	}

	for _, tt := range tests {
		if got := ParseRiskLevel(tt.input); got != tt.want {
			t.Errorf("ParseRiskLevel(%q) = %s, want %s", tt.input, got, tt.want)
		}
	}
}

func TestRiskSeverityOrdering(t *testing.T) {
	ordered := []RiskLevel{RiskGreen, RiskYellow, RiskOrange, RiskRed}
	for i := 1; i < len(ordered); i++ {
		if ordered[i].Severity() <= ordered[i-1].Severity() {
			t.Errorf("%s must be more severe than %s", ordered[i], ordered[i-1])
		}
	}
}

func TestRiskElevated(t *testing.T) {
	if RiskGreen.Elevated() || RiskYellow.Elevated() {
		t.Error("GREEN and YELLOW must not be elevated")
	}
	if !RiskOrange.Elevated() || !RiskRed.Elevated() {
		t.Error("ORANGE and RED must be elevated")
	}
}
