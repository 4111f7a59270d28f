package analysis

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	domain "github.com/bryanwahyu/cybersec-agent/internal/domain/analysis"
)

// parseCompletion turns a raw model completion into report fields using
// a three-tier contract: strict JSON parse, then heuristic recovery of
// markdown-style headings, then a minimal INFO report. It never fails;
// the caller always gets a usable report with RawAnalysis set to the
// full untouched completion.
func parseCompletion(raw string) *domain.Report {
	if r, ok := parseStrict(raw); ok {
		return normalize(r, raw)
	}
	if r, ok := parseHeadings(raw); ok {
		return normalize(r, raw)
	}
	return minimalReport(raw, "Analysis output could not be parsed into a structured report; see raw_analysis for the full model output.")
}

// minimalReport is the tier-three fallback and the shape returned when
// synthesis never produced output at all.
func minimalReport(raw, explanation string) *domain.Report {
	return &domain.Report{
		ThreatType:             "Unknown",
		Severity:               domain.SeverityInfo,
		ConfidenceScore:        0.0,
		Explanation:            explanation,
		IndicatorsOfCompromise: []string{},
		RecommendedActions:     []string{},
		RawAnalysis:            raw,
	}
}

type completionJSON struct {
	ThreatType             string   `json:"threat_type"`
	Severity               string   `json:"severity"`
	ConfidenceScore        float64  `json:"confidence_score"`
	Explanation            string   `json:"explanation"`
	IndicatorsOfCompromise []string `json:"indicators_of_compromise"`
	RecommendedActions     []string `json:"recommended_actions"`
}

// parseStrict extracts a JSON object from the completion (models wrap
// JSON in markdown fences or commentary) and unmarshals it.
func parseStrict(raw string) (*domain.Report, bool) {
	jsonStr, ok := extractJSON(raw)
	if !ok {
		return nil, false
	}
	var c completionJSON
	if err := json.Unmarshal([]byte(jsonStr), &c); err != nil {
		return nil, false
	}
	if c.ThreatType == "" && c.Severity == "" && c.Explanation == "" {
		return nil, false
	}
	return &domain.Report{
		ThreatType:             c.ThreatType,
		Severity:               domain.ParseSeverity(c.Severity),
		ConfidenceScore:        c.ConfidenceScore,
		Explanation:            c.Explanation,
		IndicatorsOfCompromise: c.IndicatorsOfCompromise,
		RecommendedActions:     c.RecommendedActions,
	}, true
}

var fenceRe = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// extractJSON pulls the JSON object out of a completion that may wrap
// it in a code fence or surround it with prose.
func extractJSON(raw string) (string, bool) {
	if m := fenceRe.FindStringSubmatch(raw); m != nil {
		return m[1], true
	}
	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start < 0 || end <= start {
		return "", false
	}
	return raw[start : end+1], true
}

var (
	threatRe      = regexp.MustCompile(`(?i)\*\*THREAT TYPE\*\*:?\s*(.+)`)
	severityRe    = regexp.MustCompile(`(?i)\*\*SEVERITY LEVEL\*\*:?\s*(\w+)`)
	confidenceRe  = regexp.MustCompile(`(?i)\*\*CONFIDENCE SCORE\*\*:?\s*([\d.]+)`)
	explanationRe = regexp.MustCompile(`(?is)\*\*DETAILED EXPLANATION\*\*:?\s*(.+?)(?:\*\*|$)`)
	iocRe         = regexp.MustCompile(`(?is)\*\*INDICATORS OF COMPROMISE\*\*[^:\n]*:?\s*(.+?)(?:\*\*|$)`)
	actionsRe     = regexp.MustCompile(`(?is)\*\*RECOMMENDED ACTIONS\*\*:?\s*(.+?)(?:\*\*|$)`)
	listPrefixRe  = regexp.MustCompile(`^\d+\.?\s*`)
)

// parseHeadings is the tier-two recovery for completions that ignored
// the JSON instruction and answered in the markdown report format.
func parseHeadings(raw string) (*domain.Report, bool) {
	r := &domain.Report{Explanation: raw}
	matched := false

	if m := threatRe.FindStringSubmatch(raw); m != nil {
		r.ThreatType = strings.TrimSpace(m[1])
		matched = true
	}
	if m := severityRe.FindStringSubmatch(raw); m != nil {
		r.Severity = domain.ParseSeverity(m[1])
		matched = true
	}
	if m := confidenceRe.FindStringSubmatch(raw); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			r.ConfidenceScore = v
		}
	}
	if m := explanationRe.FindStringSubmatch(raw); m != nil {
		r.Explanation = strings.TrimSpace(m[1])
	}
	if m := iocRe.FindStringSubmatch(raw); m != nil {
		r.IndicatorsOfCompromise = splitList(m[1])
	}
	if m := actionsRe.FindStringSubmatch(raw); m != nil {
		r.RecommendedActions = splitList(m[1])
	}
	return r, matched
}

func splitList(block string) []string {
	var items []string
	for _, line := range strings.Split(block, "\n") {
		line = listPrefixRe.ReplaceAllString(strings.TrimSpace(line), "")
		line = strings.TrimSpace(strings.TrimLeft(line, "-* "))
		if line != "" {
			items = append(items, line)
		}
	}
	return items
}

// normalize enforces report invariants: severity always set, confidence
// clamped to [0,1], list fields never nil, raw output retained.
func normalize(r *domain.Report, raw string) *domain.Report {
	if r.ThreatType == "" {
		r.ThreatType = "Unknown"
	}
	if r.Severity == "" {
		r.Severity = domain.SeverityInfo
	}
	if r.ConfidenceScore < 0 {
		r.ConfidenceScore = 0
	}
	if r.ConfidenceScore > 1 {
		// Some models answer in percent.
		if r.ConfidenceScore <= 100 {
			r.ConfidenceScore = r.ConfidenceScore / 100
		} else {
			r.ConfidenceScore = 1
		}
	}
	if r.IndicatorsOfCompromise == nil {
		r.IndicatorsOfCompromise = []string{}
	}
	if r.RecommendedActions == nil {
		r.RecommendedActions = []string{}
	}
	r.RawAnalysis = raw
	return r
}
