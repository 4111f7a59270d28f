package analysis

import (
	"context"
	"time"

	domain "github.com/bryanwahyu/cybersec-agent/internal/domain/analysis"
	"github.com/bryanwahyu/cybersec-agent/internal/infra/ai/prompt"
)

// Synthesizer produces the structured report from all evidence gathered
// so far. Synthesis failure is never fatal: an unreachable model or an
// unparseable completion both degrade to a minimal INFO report via
// parseCompletion, and the request still succeeds.
type Synthesizer struct {
	LLM     domain.LLM
	Timeout time.Duration
}

// Synthesize fills every report field except the agent ones. The
// returned report always satisfies the severity/confidence invariants.
func (s *Synthesizer) Synthesize(ctx context.Context, logText string, anomaly *domain.AnomalyResult, search domain.SearchResult) *domain.Report {
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	raw, err := s.LLM.Complete(ctx, prompt.System(), prompt.Synthesis(logText, anomaly, search))
	var report *domain.Report
	if err != nil {
		report = minimalReport("", "Analysis degraded: the language model was unavailable during synthesis ("+err.Error()+"). The log was scored with the evidence gathered by earlier stages only.")
	} else {
		report = parseCompletion(raw)
	}

	report.BertData = anomaly
	report.SearchQuery = search.Query
	report.SearchSources = search.Sources
	if report.SearchSources == nil {
		report.SearchSources = []domain.SearchSource{}
	}
	return report
}
