package domain

import (
	"fmt"
	"strings"
)

// RiskLevel is the enumerated severity of one screened condition.
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// ParseRiskLevel normalizes a model-emitted risk label. Matching is
// case-insensitive and the abbreviation "Med", emitted by older analyst
// instructions, maps to Medium.
func ParseRiskLevel(s string) (RiskLevel, error) {
	switch {
	case strings.EqualFold(s, "low"):
		return RiskLow, nil
	case strings.EqualFold(s, "medium"), strings.EqualFold(s, "med"):
		return RiskMedium, nil
	case strings.EqualFold(s, "high"):
		return RiskHigh, nil
	}
	return "", fmt.Errorf("unknown risk level %q", s)
}

// RiskFinding is one row of the report's risk table.
type RiskFinding struct {
	Condition string    `json:"condition"`
	Risk      RiskLevel `json:"risk"`
	Evidence  string    `json:"evidence"`
}

// FinalReport is the structured outcome of a finished interview. At most
// one exists per session.
type FinalReport struct {
	ClinicalSummary string        `json:"clinical_summary"`
	RiskAssessment  []RiskFinding `json:"risk_assessment"`
	Recommendations []string      `json:"recommendations"`
}
