package analysis

import (
	"fmt"
	"strings"
)

// MaxLogLength caps accepted log text, matching the public API contract.
const MaxLogLength = 50000

// Request is the immutable input to one pipeline run.
type Request struct {
	LogText   string `json:"log_text"`
	UseSearch bool   `json:"use_search"`
}

// Validate rejects input before the pipeline starts. This is the only
// hard-failure path exposed to callers; everything past validation
// degrades instead of failing.
func (r Request) Validate() error {
	if strings.TrimSpace(r.LogText) == "" {
		return ErrEmptyLog
	}
	if len(r.LogText) > MaxLogLength {
		return fmt.Errorf("%w: %d chars (max %d)", ErrLogTooLong, len(r.LogText), MaxLogLength)
	}
	return nil
}
