package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
llm:
  baseURL: http://llm:11434/v1
  model: llama3.2
anomaly:
  url: http://bert:7000
  timeoutSeconds: 3
search:
  primary: brave
  maxSources: 4
pipeline:
  agentBudget: 5
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "http://llm:11434/v1", cfg.LLM.BaseURL)
	assert.Equal(t, "http://bert:7000", cfg.Anomaly.URL)
	assert.Equal(t, 3*time.Second, cfg.AnomalyTimeout())
	assert.Equal(t, "brave", cfg.Search.Primary)
	assert.Equal(t, 4, cfg.Search.MaxSources)
	assert.Equal(t, 5, cfg.Pipeline.AgentBudget)

	// Unset knobs fall back to defaults.
	assert.Equal(t, 10*time.Second, cfg.SearchTimeout())
	assert.Equal(t, 180*time.Second, cfg.OverallTimeout())
	assert.Equal(t, 10, cfg.RateLimit.Capacity)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "duckduckgo", cfg.Search.Primary)
	assert.Equal(t, 3, cfg.Pipeline.AgentBudget)
	assert.Equal(t, "llama3.2", cfg.LLM.Model)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("BRAVE_API_KEY", "env-key")
	t.Setenv("ANOMALY_API_URL", "http://override:7000")

	cfg := Default()
	assert.Equal(t, "env-key", cfg.Search.BraveAPIKey)
	assert.Equal(t, "http://override:7000", cfg.Anomaly.URL)
}
