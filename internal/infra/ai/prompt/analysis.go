package prompt

import (
	"fmt"
	"strings"

	domain "github.com/bryanwahyu/cybersec-agent/internal/domain/analysis"
)

// System returns the analyst persona shared by every LLM call.
func System() string {
	return `You are an expert cybersecurity analyst specializing in log analysis and threat detection.
Your role is to analyze security logs and provide actionable intelligence about potential threats.
Be precise, technical, and actionable.

Severity guidance:
- CRITICAL: active exploitation, system compromise, data breach
- HIGH: attempted exploitation, privilege escalation attempts
- MEDIUM: suspicious activity, potential reconnaissance
- LOW: minor anomalies, policy violations
- INFO: normal activity, informational logs`
}

// Extraction builds the quick threat-keyword prompt. The answer is used
// verbatim as a search query, so the prompt insists on short output.
func Extraction(logText string, anomaly *domain.AnomalyResult) string {
	var b strings.Builder
	b.WriteString("Analyze this security log and identify the SPECIFIC threats or attack types present.\n")
	b.WriteString("Provide 2-3 precise search keywords/phrases that would help find threat intelligence.\n\n")
	b.WriteString("Log:\n")
	b.WriteString(truncate(logText, 500))
	b.WriteString("\n")
	if anomaly != nil {
		b.WriteString("\nAnomaly detection:\n")
		b.WriteString(FormatAnomaly(*anomaly))
	}
	b.WriteString(`
Provide ONLY the search keywords (e.g. "SSH brute force attack indicators", "CVE-2024-1234", "SQL injection attack patterns").
Be specific and technical. Focus on attack types, CVEs, malware names, or specific techniques.
Do NOT provide generic terms like "security log analysis".

Search keywords:`)
	return b.String()
}

// Synthesis builds the structured-report prompt from whatever evidence
// is available. Log text is always present; anomaly data and sources
// are embedded only when the corresponding stage produced them.
func Synthesis(logText string, anomaly *domain.AnomalyResult, search domain.SearchResult) string {
	var b strings.Builder
	b.WriteString("Analyze the following security log and respond with a single JSON object.\n\n")
	b.WriteString("LOG CONTENT:\n")
	b.WriteString(logText)
	b.WriteString("\n")
	if anomaly != nil {
		b.WriteString("\nANOMALY DETECTION RESULTS:\n")
		b.WriteString(FormatAnomaly(*anomaly))
	}
	if len(search.Sources) > 0 {
		b.WriteString("\nTHREAT INTELLIGENCE:\n")
		b.WriteString(FormatSources(search.Sources))
	}
	b.WriteString(`
Respond with ONLY a JSON object in exactly this shape:
{
  "threat_type": "specific threat type, e.g. Brute Force Attack",
  "severity": "CRITICAL|HIGH|MEDIUM|LOW|INFO",
  "confidence_score": 0.0,
  "explanation": "what happened, why it matters, context from the intelligence above",
  "indicators_of_compromise": ["IPs, ports, signatures, CVE references"],
  "recommended_actions": ["prioritized, specific actions"]
}`)
	return b.String()
}

// AgentContext builds the verification-loop prompt: the draft findings,
// the transcript of tool calls made so far, and the tool protocol.
func AgentContext(report *domain.Report, logText string, actions []domain.AgentAction, tools string) string {
	var b strings.Builder
	b.WriteString("You have completed an initial security log analysis. Here are the results:\n\n")
	fmt.Fprintf(&b, "Threat Type: %s\n", report.ThreatType)
	fmt.Fprintf(&b, "Severity: %s\n", report.Severity)
	fmt.Fprintf(&b, "Confidence: %.2f\n\n", report.ConfidenceScore)
	fmt.Fprintf(&b, "Explanation: %s\n\n", truncate(report.Explanation, 500))
	if len(report.RecommendedActions) > 0 {
		b.WriteString("Recommended Actions:\n")
		for i, a := range report.RecommendedActions {
			if i >= 3 {
				break
			}
			fmt.Fprintf(&b, "- %s\n", a)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Original Log (first 300 chars):\n%s\n\n", truncate(logText, 300))
	if len(actions) > 0 {
		b.WriteString("Tool calls already made during verification:\n")
		for _, a := range actions {
			fmt.Fprintf(&b, "TOOL: %s\nINPUT: %s\nOBSERVATION: %s\n---\n", a.Tool, a.ToolInput, a.Observation)
		}
		b.WriteString("\n")
	}
	b.WriteString("Your task: decide whether ONE more tool call would materially improve confidence in this report.\n")
	b.WriteString("Available tools:\n")
	b.WriteString(tools)
	b.WriteString(`
If a tool call would help, respond with exactly:
TOOL: tool_name
INPUT: tool input

If no further investigation is needed, respond with exactly:
SUMMARY: [a 2-3 sentence executive summary of the threat and its implications]`)
	return b.String()
}

// FinalSummary is issued once the tool-call budget is exhausted.
func FinalSummary(report *domain.Report, actions []domain.AgentAction) string {
	var b strings.Builder
	b.WriteString("Verification is complete. Based on the analysis")
	fmt.Fprintf(&b, " (threat type %q, severity %s)", report.ThreatType, report.Severity)
	if len(actions) > 0 {
		fmt.Fprintf(&b, " and the %d additional tool observations below", len(actions))
	}
	b.WriteString(", write a 2-3 sentence executive summary of the threat and its implications.\n")
	for _, a := range actions {
		fmt.Fprintf(&b, "\nTOOL: %s\nOBSERVATION: %s\n", a.Tool, truncate(a.Observation, 400))
	}
	b.WriteString("\nRespond with the summary only.")
	return b.String()
}

// FormatAnomaly renders the anomaly result as prompt text.
func FormatAnomaly(a domain.AnomalyResult) string {
	yn := "NO"
	if a.IsAnomaly {
		yn = "YES"
	}
	return fmt.Sprintf("Anomaly Score: %.2f (Threshold: %.2f)\nIs Anomaly: %s\nConfidence: %.1f%%\nInterpretation: %s",
		a.Score, a.Threshold, yn, a.Confidence, a.Interpretation())
}

// FormatSources renders search sources as a numbered list for the model.
func FormatSources(sources []domain.SearchSource) string {
	var b strings.Builder
	for i, s := range sources {
		fmt.Fprintf(&b, "[%d] %s\n    URL: %s\n    Summary: %s\n", i+1, s.Title, s.URL, s.Snippet)
	}
	return b.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
