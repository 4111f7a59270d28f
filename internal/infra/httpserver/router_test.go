package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appanalysis "github.com/bryanwahyu/cybersec-agent/internal/application/analysis"
	domain "github.com/bryanwahyu/cybersec-agent/internal/domain/analysis"
	"github.com/bryanwahyu/cybersec-agent/internal/middleware"
)

type fakeAnomaly struct{}

func (fakeAnomaly) Detect(ctx context.Context, logText string) (*domain.AnomalyResult, error) {
	return &domain.AnomalyResult{Score: 10.46, Threshold: 11.5, Confidence: 90.9}, nil
}

type fakeLLM struct{}

func (fakeLLM) Complete(ctx context.Context, system, user string) (string, error) {
	switch {
	case strings.Contains(user, "Search keywords:"):
		return "ssh brute force mitigation", nil
	case strings.Contains(user, "Respond with ONLY a JSON object"):
		return `{
			"threat_type": "Brute Force Attack (SSH)",
			"severity": "MEDIUM",
			"confidence_score": 0.85,
			"explanation": "Repeated failed passwords from one address.",
			"iocs": ["203.0.113.42"],
			"recommended_actions": ["Block the source IP"]
		}`, nil
	case strings.Contains(user, "Verification is complete"):
		return "SUMMARY: The draft report is consistent with the evidence.", nil
	default:
		return "SUMMARY: The draft report is consistent with the evidence.", nil
	}
}

type fakeProvider struct {
	calls int
	err   error
}

func (p *fakeProvider) Name() string { return "duckduckgo" }

func (p *fakeProvider) Search(ctx context.Context, query string, limit int) ([]domain.SearchSource, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return []domain.SearchSource{{Title: "Advisory", URL: "https://example.org", Snippet: "Mitigations."}}, nil
}

func decodeJSON(rec *httptest.ResponseRecorder, v any) error {
	return json.NewDecoder(rec.Body).Decode(v)
}

func newTestHandler(t *testing.T, provider domain.SearchProvider) http.Handler {
	t.Helper()
	svc := appanalysis.NewService(fakeAnomaly{}, fakeLLM{}, []domain.SearchProvider{provider}, nil, appanalysis.Options{})
	checkers := map[string]middleware.HealthChecker{
		"anomaly": middleware.CheckerFunc(func(ctx context.Context) error { return nil }),
	}
	return NewRouter(svc, checkers, 100, 100)
}

func TestAnalyzeEndpoint(t *testing.T) {
	provider := &fakeProvider{}
	h := newTestHandler(t, provider)

	body := `{"log_text": "Failed password for admin from 203.0.113.42 port 22 ssh2"}`
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/analyze", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var report domain.Report
	require.NoError(t, decodeJSON(rec, &report))
	assert.NotEmpty(t, report.ID)
	assert.Equal(t, "Brute Force Attack (SSH)", report.ThreatType)
	assert.Equal(t, domain.SeverityMedium, report.Severity)
	require.NotNil(t, report.BertData)
	assert.NotEmpty(t, report.SearchSources, "use_search defaults to true")
	assert.Positive(t, provider.calls)
	assert.NotEmpty(t, report.AgentSummary)
}

func TestAnalyzeEndpoint_SearchDisabled(t *testing.T) {
	provider := &fakeProvider{}
	h := newTestHandler(t, provider)

	body := `{"log_text": "Failed password for admin", "use_search": false}`
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/analyze", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	var report domain.Report
	require.NoError(t, decodeJSON(rec, &report))
	assert.Empty(t, report.SearchSources)
}

func TestAnalyzeEndpoint_EmptyLog(t *testing.T) {
	h := newTestHandler(t, &fakeProvider{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/analyze", strings.NewReader(`{"log_text": "  "}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyzeEndpoint_MalformedBody(t *testing.T) {
	h := newTestHandler(t, &fakeProvider{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/analyze", strings.NewReader(`{not json`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyzeEndpoint_ProviderDownStill200(t *testing.T) {
	provider := &fakeProvider{err: errors.New("network unreachable")}
	h := newTestHandler(t, provider)

	body := `{"log_text": "Failed password for admin"}`
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/analyze", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	var report domain.Report
	require.NoError(t, decodeJSON(rec, &report))
	assert.NotEmpty(t, report.ThreatType)
	assert.Empty(t, report.SearchSources)
}

func TestHealthEndpoints(t *testing.T) {
	h := newTestHandler(t, &fakeProvider{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/livez", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
