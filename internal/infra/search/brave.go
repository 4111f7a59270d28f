package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	domain "github.com/bryanwahyu/cybersec-agent/internal/domain/analysis"
)

const braveEndpoint = "https://api.search.brave.com/res/v1/web/search"

// ErrNoAPIKey means the Brave provider was constructed without a key
// and cannot be used.
var ErrNoAPIKey = errors.New("brave search api key not configured")

// Brave is the key-gated fallback provider.
type Brave struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

func NewBrave(apiKey string, timeout time.Duration) *Brave {
	return newBrave(braveEndpoint, apiKey, timeout)
}

func newBrave(endpoint, apiKey string, timeout time.Duration) *Brave {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Brave{endpoint: endpoint, apiKey: apiKey, http: &http.Client{Timeout: timeout}}
}

func (b *Brave) Name() string { return "brave" }

type braveResponse struct {
	Web struct {
		Results []struct {
			Title       string `json:"title"`
			URL         string `json:"url"`
			Description string `json:"description"`
		} `json:"results"`
	} `json:"web"`
}

func (b *Brave) Search(ctx context.Context, query string, limit int) ([]domain.SearchSource, error) {
	if b.apiKey == "" {
		return nil, ErrNoAPIKey
	}
	if limit <= 0 {
		limit = 5
	}

	u := fmt.Sprintf("%s?q=%s&count=%d&safesearch=off&search_lang=en", b.endpoint, url.QueryEscape(query), limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", b.apiKey)

	resp, err := b.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("brave search request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("brave search returned status %d", resp.StatusCode)
	}

	var out braveResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("brave search returned invalid JSON: %w", err)
	}

	sources := make([]domain.SearchSource, 0, len(out.Web.Results))
	for _, r := range out.Web.Results {
		sources = append(sources, domain.SearchSource{
			Title:   r.Title,
			URL:     r.URL,
			Snippet: r.Description,
		})
		if len(sources) >= limit {
			break
		}
	}
	return sources, nil
}
