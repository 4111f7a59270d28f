package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	domain "github.com/bryanwahyu/cybersec-agent/internal/domain/analysis"
)

const duckDuckGoEndpoint = "https://api.duckduckgo.com/"

// DuckDuckGo is the key-less primary provider, backed by the Instant
// Answer API.
type DuckDuckGo struct {
	endpoint string
	http     *http.Client
}

func NewDuckDuckGo(timeout time.Duration) *DuckDuckGo {
	return newDuckDuckGo(duckDuckGoEndpoint, timeout)
}

func newDuckDuckGo(endpoint string, timeout time.Duration) *DuckDuckGo {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &DuckDuckGo{endpoint: endpoint, http: &http.Client{Timeout: timeout}}
}

func (d *DuckDuckGo) Name() string { return "duckduckgo" }

type ddgResponse struct {
	Heading       string     `json:"Heading"`
	Abstract      string     `json:"Abstract"`
	AbstractURL   string     `json:"AbstractURL"`
	RelatedTopics []ddgTopic `json:"RelatedTopics"`
}

type ddgTopic struct {
	Text     string `json:"Text"`
	FirstURL string `json:"FirstURL"`
}

// Search queries the Instant Answer API. The abstract, when present,
// ranks first, followed by related topics in API order.
func (d *DuckDuckGo) Search(ctx context.Context, query string, limit int) ([]domain.SearchSource, error) {
	u := fmt.Sprintf("%s?q=%s&format=json&no_html=1", d.endpoint, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := d.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("duckduckgo request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("duckduckgo returned status %d", resp.StatusCode)
	}

	var out ddgResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("duckduckgo returned invalid JSON: %w", err)
	}

	var sources []domain.SearchSource
	if out.Abstract != "" {
		title := out.Heading
		if title == "" {
			title = query
		}
		sources = append(sources, domain.SearchSource{
			Title:   title,
			URL:     out.AbstractURL,
			Snippet: out.Abstract,
		})
	}
	for _, t := range out.RelatedTopics {
		if t.Text == "" {
			continue
		}
		title := t.Text
		if len(title) > 100 {
			title = title[:100]
		}
		sources = append(sources, domain.SearchSource{
			Title:   title,
			URL:     t.FirstURL,
			Snippet: t.Text,
		})
		if limit > 0 && len(sources) >= limit {
			break
		}
	}
	if limit > 0 && len(sources) > limit {
		sources = sources[:limit]
	}
	return sources, nil
}
