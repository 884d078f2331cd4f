package usecase

import (
	"testing"

	"github.com/stretchr/testify/require"

	"screening-agent/internal/domain"
)

func TestParseFinalReport_CanonicalPayload(t *testing.T) {
	report, err := parseFinalReport(validReportJSON())
	require.NoError(t, err)

	// every field round-trips losslessly, rows and recommendations in order
	require.Equal(t, &domain.FinalReport{
		ClinicalSummary: "The participant described persistent low mood and disrupted sleep.",
		RiskAssessment: []domain.RiskFinding{
			{Condition: "Depression", Risk: domain.RiskMedium, Evidence: "Reported low mood on most days."},
			{Condition: "Anxiety", Risk: domain.RiskLow, Evidence: "No persistent worry reported."},
			{Condition: "Burnout", Risk: domain.RiskHigh, Evidence: "Exhaustion and detachment from work."},
		},
		Recommendations: []string{
			"Discuss the screening with a licensed clinician.",
			"Keep a regular sleep schedule.",
			"Re-screen in two weeks.",
		},
	}, report)
}

func TestParseFinalReport_AcceptsAliasedColumns(t *testing.T) {
	raw := `{
  "clinical_summary": "Summary.",
  "risk_assessment": [{"Condition": "Anxiety", "Risk": "Med", "Notes": "Frequent worry."}],
  "recommendations": ["Rest."]
}`
	report, err := parseFinalReport(raw)
	require.NoError(t, err)
	require.Equal(t, domain.RiskFinding{
		Condition: "Anxiety",
		Risk:      domain.RiskMedium,
		Evidence:  "Frequent worry.",
	}, report.RiskAssessment[0])
}

func TestParseFinalReport_CanonicalColumnWinsOverAlias(t *testing.T) {
	raw := `{
  "clinical_summary": "Summary.",
  "risk_assessment": [{"Condition": "Anxiety", "Risk Level": "High", "Risk": "Low", "Evidence": "Primary.", "Notes": "Secondary."}],
  "recommendations": []
}`
	report, err := parseFinalReport(raw)
	require.NoError(t, err)
	require.Equal(t, domain.RiskHigh, report.RiskAssessment[0].Risk)
	require.Equal(t, "Primary.", report.RiskAssessment[0].Evidence)
}

func TestParseFinalReport_NormalizesLevelCase(t *testing.T) {
	raw := `{
  "clinical_summary": "Summary.",
  "risk_assessment": [
    {"Condition": "Depression", "Risk Level": "low", "Evidence": "a"},
    {"Condition": "Anxiety", "Risk Level": "MEDIUM", "Evidence": "b"},
    {"Condition": "Burnout", "Risk Level": "hIgH", "Evidence": "c"}
  ],
  "recommendations": []
}`
	report, err := parseFinalReport(raw)
	require.NoError(t, err)
	require.Equal(t, domain.RiskLow, report.RiskAssessment[0].Risk)
	require.Equal(t, domain.RiskMedium, report.RiskAssessment[1].Risk)
	require.Equal(t, domain.RiskHigh, report.RiskAssessment[2].Risk)
}

func TestParseFinalReport_Rejections(t *testing.T) {
	cases := map[string]string{
		"not json":           `not-json`,
		"unknown top field":  `{"clinical_summary":"s","risk_assessment":[],"recommendations":[],"extra":1}`,
		"unknown row field":  `{"clinical_summary":"s","risk_assessment":[{"Condition":"Anxiety","Risk Level":"Low","Evidence":"e","Severity":"x"}],"recommendations":[]}`,
		"trailing data":      `{"clinical_summary":"s","risk_assessment":[],"recommendations":[]}{"again":true}`,
		"missing summary":    `{"risk_assessment":[],"recommendations":[]}`,
		"missing condition":  `{"clinical_summary":"s","risk_assessment":[{"Risk Level":"Low","Evidence":"e"}],"recommendations":[]}`,
		"missing risk label": `{"clinical_summary":"s","risk_assessment":[{"Condition":"Anxiety","Evidence":"e"}],"recommendations":[]}`,
		"unrecognized level": `{"clinical_summary":"s","risk_assessment":[{"Condition":"Anxiety","Risk Level":"Severe","Evidence":"e"}],"recommendations":[]}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := parseFinalReport(raw)
			require.Error(t, err)
		})
	}
}
