package middleware

import (
	"strings"

	domain "github.com/bryanwahyu/cybersec-agent/internal/domain/analysis"
)

// Input validation and sanitization utilities

// ValidateLogText checks log input before it reaches the pipeline.
func ValidateLogText(text string) error {
	return domain.Request{LogText: text}.Validate()
}

// SanitizeLogText strips null bytes and control characters that have no
// business in a log line while preserving tabs and newlines (multi-line
// logs are expected input).
func SanitizeLogText(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")

	var result strings.Builder
	result.Grow(len(input))
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}

// ValidateMaxSources clamps the requested source cap
func ValidateMaxSources(n int) int {
	if n <= 0 {
		return 5 // default
	}
	if n > 10 {
		return 10 // keep downstream prompts bounded
	}
	return n
}
