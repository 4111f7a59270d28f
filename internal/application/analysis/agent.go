package analysis

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	domain "github.com/bryanwahyu/cybersec-agent/internal/domain/analysis"
	"github.com/bryanwahyu/cybersec-agent/internal/infra/ai/prompt"
)

// The verifier's tool set is closed and known at compile time.
const (
	ToolSearch  = "threat_search"
	ToolExtract = "keyword_extract"
)

const toolDescriptions = `- threat_search: search threat intelligence for a query (input: search query)
- keyword_extract: derive precise threat keywords from log text (input: log text)`

// Verification is what the agent loop adds to a draft report.
type Verification struct {
	Summary  string
	Actions  []domain.AgentAction
	Degraded string // non-empty when no summary could be produced
}

// Verifier runs the bounded autonomous loop: each iteration asks the
// model whether one more tool call would improve confidence in the
// draft, executes it if so, and feeds the observation back. The budget
// guarantees termination even against a model that always wants another
// call; failed tool calls are recorded and count against the budget so
// the loop cannot spin on a dead tool.
type Verifier struct {
	LLM       domain.LLM
	Searcher  *Searcher
	Extractor *Extractor
	Budget    int
}

var (
	toolCallRe = regexp.MustCompile(`(?is)TOOL:\s*(\w+)\s*\n\s*INPUT:\s*(.+?)(?:\n\s*---|\n\s*TOOL:|$)`)
	summaryRe  = regexp.MustCompile(`(?is)SUMMARY:\s*(.+)`)
)

func (v *Verifier) Verify(ctx context.Context, draft *domain.Report, logText string) Verification {
	budget := v.Budget
	if budget <= 0 {
		budget = 3
	}
	actions := make([]domain.AgentAction, 0, budget)

	for len(actions) < budget {
		if ctx.Err() != nil {
			return Verification{Actions: actions, Degraded: "deadline exceeded during verification"}
		}

		resp, err := v.LLM.Complete(ctx, prompt.System(), prompt.AgentContext(draft, logText, actions, toolDescriptions))
		if err != nil {
			return Verification{Actions: actions, Degraded: "language model unavailable during verification: " + err.Error()}
		}

		tool, input, wantsTool := parseToolCall(resp)
		if !wantsTool {
			return Verification{Summary: parseSummary(resp), Actions: actions}
		}

		actions = append(actions, domain.AgentAction{
			Tool:        tool,
			ToolInput:   input,
			Observation: v.runTool(ctx, tool, input),
		})
	}

	// Budget exhausted: one final summary request, not a tool call.
	resp, err := v.LLM.Complete(ctx, prompt.System(), prompt.FinalSummary(draft, actions))
	if err != nil {
		return Verification{Actions: actions, Degraded: "language model unavailable for final summary: " + err.Error()}
	}
	return Verification{Summary: parseSummary(resp), Actions: actions}
}

// runTool dispatches one tool invocation. Tool failures become the
// observation text rather than an error so the loop stays total.
func (v *Verifier) runTool(ctx context.Context, tool, input string) string {
	switch tool {
	case ToolSearch:
		res := v.Searcher.Search(ctx, input)
		if !res.OK() {
			return "Search failed: " + res.Reason()
		}
		if len(res.Value().Sources) == 0 {
			return fmt.Sprintf("No threat intelligence found for query: %s", input)
		}
		return prompt.FormatSources(res.Value().Sources)
	case ToolExtract:
		query, fromModel := v.Extractor.Extract(ctx, input, nil)
		if !fromModel {
			return "Extracted search query (deterministic fallback): " + query
		}
		return "Extracted search query: " + query
	default:
		return fmt.Sprintf("Unknown tool %q; available tools:\n%s", tool, toolDescriptions)
	}
}

func parseToolCall(resp string) (tool, input string, ok bool) {
	m := toolCallRe.FindStringSubmatch(resp)
	if m == nil {
		return "", "", false
	}
	return strings.TrimSpace(m[1]), strings.TrimSpace(m[2]), true
}

// parseSummary pulls the SUMMARY: section, falling back to the whole
// response so a cooperative but off-format model still yields a summary.
func parseSummary(resp string) string {
	if m := summaryRe.FindStringSubmatch(resp); m != nil {
		return strings.TrimSpace(m[1])
	}
	s := strings.TrimSpace(resp)
	if len(s) > 500 {
		s = s[:500]
	}
	return s
}
