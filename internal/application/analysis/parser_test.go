package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/bryanwahyu/cybersec-agent/internal/domain/analysis"
)

func TestParseCompletion_StrictJSON(t *testing.T) {
	raw := `{
		"threat_type": "SQL Injection",
		"severity": "HIGH",
		"confidence_score": 0.92,
		"explanation": "Classic tautology payload in the query string.",
		"indicators_of_compromise": ["' OR '1'='1", "198.51.100.7"],
		"recommended_actions": ["Use parameterized queries", "Block the source IP"]
	}`

	r := parseCompletion(raw)
	assert.Equal(t, "SQL Injection", r.ThreatType)
	assert.Equal(t, domain.SeverityHigh, r.Severity)
	assert.InDelta(t, 0.92, r.ConfidenceScore, 0.0001)
	require.Len(t, r.IndicatorsOfCompromise, 2)
	require.Len(t, r.RecommendedActions, 2)
	assert.Equal(t, raw, r.RawAnalysis)
}

func TestParseCompletion_FencedJSONWithProse(t *testing.T) {
	raw := "Here is my analysis:\n\n```json\n" +
		`{"threat_type": "Malware Execution", "severity": "critical", "confidence_score": 0.8, "explanation": "x", "indicators_of_compromise": [], "recommended_actions": ["isolate host"]}` +
		"\n```\n\nLet me know if you need more."

	r := parseCompletion(raw)
	assert.Equal(t, "Malware Execution", r.ThreatType)
	assert.Equal(t, domain.SeverityCritical, r.Severity, "severity parsing is case-insensitive")
	require.Len(t, r.RecommendedActions, 1)
	assert.Equal(t, raw, r.RawAnalysis, "raw analysis keeps the full completion, fences included")
}

func TestParseCompletion_MarkdownHeadingRecovery(t *testing.T) {
	raw := `**THREAT TYPE**: Brute Force Attack

**SEVERITY LEVEL**: HIGH

**CONFIDENCE SCORE**: 0.9

**DETAILED EXPLANATION**:
Repeated authentication failures from one source address.

**INDICATORS OF COMPROMISE**:
- 203.0.113.42
- port 22

**RECOMMENDED ACTIONS**:
1. Enable fail2ban
2. Rotate credentials`

	r := parseCompletion(raw)
	assert.Equal(t, "Brute Force Attack", r.ThreatType)
	assert.Equal(t, domain.SeverityHigh, r.Severity)
	assert.InDelta(t, 0.9, r.ConfidenceScore, 0.0001)
	assert.Contains(t, r.Explanation, "authentication failures")
	assert.Equal(t, []string{"203.0.113.42", "port 22"}, r.IndicatorsOfCompromise)
	assert.Equal(t, []string{"Enable fail2ban", "Rotate credentials"}, r.RecommendedActions)
}

func TestParseCompletion_GarbageFallsBackToMinimalReport(t *testing.T) {
	raw := "I'm sorry, I cannot comply with that."

	r := parseCompletion(raw)
	assert.Equal(t, domain.SeverityInfo, r.Severity)
	assert.Equal(t, 0.0, r.ConfidenceScore)
	assert.Equal(t, "Unknown", r.ThreatType)
	assert.NotEmpty(t, r.Explanation)
	assert.NotNil(t, r.IndicatorsOfCompromise)
	assert.NotNil(t, r.RecommendedActions)
	assert.Equal(t, raw, r.RawAnalysis)
}

func TestParseCompletion_ConfidenceGivenAsPercent(t *testing.T) {
	raw := `{"threat_type": "Recon", "severity": "LOW", "confidence_score": 85, "explanation": "x"}`

	r := parseCompletion(raw)
	assert.InDelta(t, 0.85, r.ConfidenceScore, 0.0001)
}

func TestParseCompletion_UnknownSeverityDefaultsToInfo(t *testing.T) {
	raw := `{"threat_type": "Odd", "severity": "CATASTROPHIC", "confidence_score": 0.5, "explanation": "x"}`

	r := parseCompletion(raw)
	assert.Equal(t, domain.SeverityInfo, r.Severity)
}

func TestParseCompletion_NegativeConfidenceClamped(t *testing.T) {
	raw := `{"threat_type": "Odd", "severity": "LOW", "confidence_score": -3, "explanation": "x"}`

	r := parseCompletion(raw)
	assert.Equal(t, 0.0, r.ConfidenceScore)
}
