package usecase

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"screening-agent/internal/domain"
)

type reportPayload struct {
	ClinicalSummary string           `json:"clinical_summary"`
	RiskAssessment  []riskRowPayload `json:"risk_assessment"`
	Recommendations []string         `json:"recommendations"`
}

// riskRowPayload accepts the canonical column names plus the aliases older
// analyst instructions produced ("Risk" for "Risk Level", "Notes" for
// "Evidence").
type riskRowPayload struct {
	Condition string `json:"Condition"`
	RiskLevel string `json:"Risk Level"`
	Risk      string `json:"Risk"`
	Evidence  string `json:"Evidence"`
	Notes     string `json:"Notes"`
}

// parseFinalReport validates a report payload against the canonical schema
// and normalizes aliased fields. Any failure leaves the raw payload as the
// only artifact of the attempt.
func parseFinalReport(raw string) (*domain.FinalReport, error) {
	dec := json.NewDecoder(bytes.NewBufferString(strings.TrimSpace(raw)))
	dec.DisallowUnknownFields()

	var payload reportPayload
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("usecase: decode report payload: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return nil, errors.New("usecase: decode report payload: multiple JSON values")
		}
		return nil, fmt.Errorf("usecase: decode report payload trailing data: %w", err)
	}

	if strings.TrimSpace(payload.ClinicalSummary) == "" {
		return nil, errors.New("usecase: report missing clinical summary")
	}

	report := &domain.FinalReport{
		ClinicalSummary: payload.ClinicalSummary,
		Recommendations: payload.Recommendations,
	}
	for _, row := range payload.RiskAssessment {
		if strings.TrimSpace(row.Condition) == "" {
			return nil, errors.New("usecase: risk row missing condition")
		}
		label := row.RiskLevel
		if label == "" {
			label = row.Risk
		}
		if label == "" {
			return nil, fmt.Errorf("usecase: risk row for %q missing risk level", row.Condition)
		}
		level, err := domain.ParseRiskLevel(label)
		if err != nil {
			return nil, fmt.Errorf("usecase: risk row for %q: %w", row.Condition, err)
		}
		evidence := row.Evidence
		if evidence == "" {
			evidence = row.Notes
		}
		report.RiskAssessment = append(report.RiskAssessment, domain.RiskFinding{
			Condition: row.Condition,
			Risk:      level,
			Evidence:  evidence,
		})
	}
	return report, nil
}
