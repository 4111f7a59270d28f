package analysis

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/bryanwahyu/cybersec-agent/internal/application"
	domain "github.com/bryanwahyu/cybersec-agent/internal/domain/analysis"
)

// Options bound every external call the pipeline makes.
type Options struct {
	AnomalyTimeout time.Duration // per anomaly-service call
	LLMTimeout     time.Duration // per language-model call
	SearchTimeout  time.Duration // per search-provider call
	OverallTimeout time.Duration // whole request deadline
	MaxSources     int           // cap on search sources kept
	AgentBudget    int           // max verifier tool calls per request
}

func (o Options) withDefaults() Options {
	if o.AnomalyTimeout <= 0 {
		o.AnomalyTimeout = 5 * time.Second
	}
	if o.LLMTimeout <= 0 {
		o.LLMTimeout = 60 * time.Second
	}
	if o.SearchTimeout <= 0 {
		o.SearchTimeout = 10 * time.Second
	}
	if o.OverallTimeout <= 0 {
		o.OverallTimeout = 3 * time.Minute
	}
	if o.MaxSources <= 0 {
		o.MaxSources = 5
	}
	if o.AgentBudget <= 0 {
		o.AgentBudget = 3
	}
	return o
}

// Service implements the analysis pipeline use-case. It is stateless
// apart from configuration and safe for concurrent requests: no stage
// writes shared state, so parallelism across requests needs no locking.
type Service struct {
	Anomaly domain.AnomalyDetector
	Clock   application.Clock
	Opts    Options

	extractor   *Extractor
	searcher    *Searcher
	synthesizer *Synthesizer
	verifier    *Verifier
}

func NewService(anomaly domain.AnomalyDetector, llm domain.LLM, providers []domain.SearchProvider, clock application.Clock, opts Options) *Service {
	opts = opts.withDefaults()
	if clock == nil {
		clock = application.SystemClock{}
	}
	extractor := &Extractor{LLM: llm, Timeout: opts.LLMTimeout}
	searcher := &Searcher{Providers: providers, MaxSources: opts.MaxSources, Timeout: opts.SearchTimeout}
	return &Service{
		Anomaly:     anomaly,
		Clock:       clock,
		Opts:        opts,
		extractor:   extractor,
		searcher:    searcher,
		synthesizer: &Synthesizer{LLM: llm, Timeout: opts.LLMTimeout},
		verifier:    &Verifier{LLM: llm, Searcher: searcher, Extractor: extractor, Budget: opts.AgentBudget},
	}
}

// Analyze runs the full pipeline:
// ANOMALY -> EXTRACT -> SEARCH -> SYNTHESIZE -> VERIFY.
// Only invalid input returns an error. Every stage past validation
// degrades instead of failing, so the caller always gets a report; if
// the overall deadline expires before verification completes, the
// synthesized draft is returned without an agent summary.
func (s *Service) Analyze(ctx context.Context, req domain.Request) (*domain.Report, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.Opts.OverallTimeout)
	defer cancel()

	id := uuid.New().String()

	// ANOMALY: nice-to-have context, absent when the service is down.
	var anomaly *domain.AnomalyResult
	if res := s.scoreAnomaly(ctx, req.LogText); res.OK() {
		anomaly = res.Value()
	} else {
		log.Printf("analysis id=%s stage=anomaly degraded: %s", id, res.Reason())
	}

	// EXTRACT: always yields a usable query, from the model or fallback.
	query, fromModel := s.extractor.Extract(ctx, req.LogText, anomaly)
	if !fromModel {
		log.Printf("analysis id=%s stage=extract degraded: using fallback query %q", id, query)
	}

	// SEARCH: skipped entirely when the caller disabled it.
	search := domain.SearchResult{Query: query, Sources: []domain.SearchSource{}}
	if req.UseSearch {
		if res := s.searcher.Search(ctx, query); res.OK() {
			search = res.Value()
		} else {
			log.Printf("analysis id=%s stage=search degraded: %s", id, res.Reason())
			search.Query = query
		}
	}

	// SYNTHESIZE: total, worst case a minimal INFO report.
	report := s.synthesizer.Synthesize(ctx, req.LogText, anomaly, search)
	report.ID = domain.ReportID(id)
	report.CreatedAt = s.Clock.Now()

	// VERIFY: bounded agent loop, dropped wholesale past the deadline.
	if ctx.Err() == nil {
		v := s.verifier.Verify(ctx, report, req.LogText)
		report.AgentSummary = v.Summary
		if len(v.Actions) > 0 {
			report.AgentActions = v.Actions
		}
		if v.Degraded != "" {
			log.Printf("analysis id=%s stage=verify degraded: %s", id, v.Degraded)
		}
	} else {
		log.Printf("analysis id=%s stage=verify skipped: %v", id, ctx.Err())
	}

	log.Printf("analysis id=%s done threat=%q severity=%s sources=%d agent_actions=%d",
		id, report.ThreatType, report.Severity, len(report.SearchSources), len(report.AgentActions))
	return report, nil
}

func (s *Service) scoreAnomaly(ctx context.Context, logText string) domain.StageResult[*domain.AnomalyResult] {
	ctx, cancel := context.WithTimeout(ctx, s.Opts.AnomalyTimeout)
	defer cancel()

	res, err := s.Anomaly.Detect(ctx, logText)
	if err != nil {
		return domain.Degraded[*domain.AnomalyResult](err.Error())
	}
	return domain.Ok(res)
}
