package analysis

import (
	"strings"
	"time"
)

// ReportID identifier type
type ReportID string

// Severity enum
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
	SeverityInfo     Severity = "INFO"
)

// ParseSeverity maps free text from the model to a Severity.
// Anything unrecognised collapses to INFO so the field is always set.
func ParseSeverity(s string) Severity {
	switch Severity(strings.ToUpper(strings.TrimSpace(s))) {
	case SeverityCritical:
		return SeverityCritical
	case SeverityHigh:
		return SeverityHigh
	case SeverityMedium:
		return SeverityMedium
	case SeverityLow:
		return SeverityLow
	default:
		return SeverityInfo
	}
}

// AnomalyResult holds the anomaly-detection service output for one log.
type AnomalyResult struct {
	Score      float64 `json:"anomaly_score"`
	Threshold  float64 `json:"threshold"`
	IsAnomaly  bool    `json:"is_anomaly"`
	Confidence float64 `json:"confidence"` // 0-100
}

// Interpretation buckets the score against the threshold for prompt text.
func (a AnomalyResult) Interpretation() string {
	switch {
	case a.Score < a.Threshold*0.3:
		return "NORMAL - log matches typical patterns"
	case a.Score < a.Threshold*0.7:
		return "SUSPICIOUS - minor deviations from normal"
	case a.Score < a.Threshold:
		return "CONCERNING - unusual patterns present"
	default:
		return "ANOMALOUS - significant abnormal behaviour"
	}
}

// SearchSource is one ranked result from a search provider.
type SearchSource struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// SearchResult carries the query actually issued and the sources found,
// in provider order. Sources may be empty when search was disabled,
// unavailable or simply found nothing; Query stays populated either way.
type SearchResult struct {
	Query   string         `json:"query"`
	Sources []SearchSource `json:"sources"`
}

// AgentAction records one extra tool invocation made by the verifier.
// Observation is the raw tool output, kept untruncated for audit.
type AgentAction struct {
	Tool        string `json:"tool"`
	ToolInput   string `json:"tool_input"`
	Observation string `json:"observation"`
}

// Report is the terminal artifact of one analysis request.
// Built once by the orchestrator; stages fill their own fields and
// never overwrite what an earlier stage set.
type Report struct {
	ID                     ReportID       `json:"id"`
	ThreatType             string         `json:"threat_type"`
	Severity               Severity       `json:"severity"`
	ConfidenceScore        float64        `json:"confidence_score"` // 0.0-1.0
	Explanation            string         `json:"explanation"`
	IndicatorsOfCompromise []string       `json:"indicators_of_compromise"`
	RecommendedActions     []string       `json:"recommended_actions"`
	RawAnalysis            string         `json:"raw_analysis"`
	BertData               *AnomalyResult `json:"bert_data,omitempty"`
	SearchQuery            string         `json:"search_query,omitempty"`
	SearchSources          []SearchSource `json:"search_sources"`
	AgentSummary           string         `json:"agent_summary,omitempty"`
	AgentActions           []AgentAction  `json:"agent_actions,omitempty"`
	CreatedAt              time.Time      `json:"created_at"`
}
