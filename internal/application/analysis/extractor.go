package analysis

import (
	"context"
	"regexp"
	"strings"
	"time"

	domain "github.com/bryanwahyu/cybersec-agent/internal/domain/analysis"
	"github.com/bryanwahyu/cybersec-agent/internal/infra/ai/prompt"
)

const maxQueryLength = 100

// Extractor asks the language model for a short threat description
// usable as a search query. The model is on the critical path, so an
// empty or malformed answer falls back to deterministic extraction from
// the log itself; Extract always yields a non-empty query.
type Extractor struct {
	LLM     domain.LLM
	Timeout time.Duration
}

// Extract returns the search query and whether it came from the model
// (false means the deterministic fallback was used).
func (e *Extractor) Extract(ctx context.Context, logText string, anomaly *domain.AnomalyResult) (string, bool) {
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	out, err := e.LLM.Complete(ctx, prompt.System(), prompt.Extraction(logText, anomaly))
	if err == nil {
		if q := cleanQuery(out); len(q) > 10 {
			return q, true
		}
	}
	return fallbackQuery(logText), false
}

// cleanQuery flattens a model answer into a single short query line.
func cleanQuery(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.Join(strings.Fields(s), " ")
	s = strings.Trim(s, `"' `)
	if len(s) > maxQueryLength {
		s = strings.TrimSpace(s[:maxQueryLength])
	}
	return s
}

var threatPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(SQL injection|XSS|command injection)`),
	regexp.MustCompile(`(?i)(brute force|password attack)`),
	regexp.MustCompile(`(?i)(ransomware|malware|trojan)`),
	regexp.MustCompile(`(?i)(CVE-\d{4}-\d{4,7})`),
}

// fallbackQuery derives a query from the log text alone. The result is
// deterministic for a given input and never empty.
func fallbackQuery(logText string) string {
	var keywords []string
	for _, re := range threatPatterns {
		keywords = append(keywords, re.FindAllString(logText, -1)...)
		if len(keywords) >= 3 {
			keywords = keywords[:3]
			break
		}
	}
	if len(keywords) > 0 {
		return strings.ToLower(strings.Join(keywords, " "))
	}

	lower := strings.ToLower(logText)
	switch {
	case strings.Contains(lower, "failed") && (strings.Contains(lower, "password") || strings.Contains(lower, "login")):
		return "SSH authentication failure brute force"
	case strings.Contains(lower, "unauthorized"):
		return "unauthorized access attempt"
	case strings.Contains(lower, "injection"):
		return "code injection attack"
	}

	// Last resort: first line of the log, trimmed to query length.
	line := logText
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	line = strings.TrimSpace(line)
	if len(line) > 80 {
		line = strings.TrimSpace(line[:80])
	}
	if line == "" {
		return "security log threat analysis"
	}
	return line + " security threat"
}
