package anomaly

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	domain "github.com/bryanwahyu/cybersec-agent/internal/domain/analysis"
)

const defaultThreshold = 10.5

// Client talks to the anomaly-detection service. One bounded call per
// request, no retries.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type detectRequest struct {
	LogText string `json:"log_text"`
}

type detectResponse struct {
	AnomalyScore float64  `json:"anomaly_score"`
	Threshold    *float64 `json:"threshold"`
	IsAnomaly    *bool    `json:"is_anomaly"`
}

// Detect scores one log text. The service may omit is_anomaly, in which
// case it is derived as score > threshold.
func (c *Client) Detect(ctx context.Context, logText string) (*domain.AnomalyResult, error) {
	body, err := json.Marshal(detectRequest{LogText: logText})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/detect-anomaly", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("anomaly service request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("anomaly service returned status %d", resp.StatusCode)
	}

	var out detectResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("anomaly service returned invalid JSON: %w", err)
	}

	threshold := defaultThreshold
	if out.Threshold != nil {
		threshold = *out.Threshold
	}
	isAnomaly := out.AnomalyScore > threshold
	if out.IsAnomaly != nil {
		isAnomaly = *out.IsAnomaly
	}
	confidence := 0.0
	if threshold > 0 {
		confidence = out.AnomalyScore / threshold * 100
		if confidence > 100 {
			confidence = 100
		}
	}

	return &domain.AnomalyResult{
		Score:      out.AnomalyScore,
		Threshold:  threshold,
		IsAnomaly:  isAnomaly,
		Confidence: confidence,
	}, nil
}

// Check pings the service health endpoint.
func (c *Client) Check(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("anomaly service health returned status %d", resp.StatusCode)
	}
	return nil
}
