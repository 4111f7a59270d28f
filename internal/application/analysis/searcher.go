package analysis

import (
	"context"
	"log"
	"time"

	domain "github.com/bryanwahyu/cybersec-agent/internal/domain/analysis"
)

// Searcher fans a query out to the configured providers in priority
// order. A provider that errors or times out is skipped; a provider
// that answers, even with zero results, ends the search (zero results
// is a valid answer, not a reason to fall back). If every provider
// fails the result is empty but still carries the query, so callers can
// tell "nothing found" from "search never ran" by source count.
type Searcher struct {
	Providers  []domain.SearchProvider
	MaxSources int
	Timeout    time.Duration
}

func (s *Searcher) Search(ctx context.Context, query string) domain.StageResult[domain.SearchResult] {
	result := domain.SearchResult{Query: query, Sources: []domain.SearchSource{}}

	limit := s.MaxSources
	if limit <= 0 {
		limit = 5
	}

	var lastErr error
	for _, p := range s.Providers {
		sources, err := s.searchOne(ctx, p, query, limit)
		if err != nil {
			log.Printf("search provider=%s query=%q error: %v", p.Name(), query, err)
			lastErr = err
			continue
		}
		if len(sources) > limit {
			sources = sources[:limit]
		}
		result.Sources = append(result.Sources, sources...)
		return domain.Ok(result)
	}

	if lastErr != nil {
		return domain.Degraded[domain.SearchResult]("all search providers failed: " + lastErr.Error())
	}
	return domain.Degraded[domain.SearchResult]("no search providers configured")
}

func (s *Searcher) searchOne(ctx context.Context, p domain.SearchProvider, query string, limit int) ([]domain.SearchSource, error) {
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}
	return p.Search(ctx, query, limit)
}
