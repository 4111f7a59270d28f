package analysis

import "context"

// AnomalyDetector port (interface to the anomaly-detection service)
type AnomalyDetector interface {
	Detect(ctx context.Context, logText string) (*AnomalyResult, error)
}

// LLM port (interface to the language-model service)
type LLM interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// SearchProvider port (interface to one threat-intelligence search backend)
type SearchProvider interface {
	Name() string
	Search(ctx context.Context, query string, limit int) ([]SearchSource, error)
}
