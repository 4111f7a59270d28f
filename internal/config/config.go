package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`

	LLM struct {
		BaseURL     string  `yaml:"baseURL"` // OpenAI-compatible endpoint, e.g. http://localhost:11434/v1
		APIKey      string  `yaml:"apiKey"`
		Model       string  `yaml:"model"`
		Temperature float32 `yaml:"temperature"`
	} `yaml:"llm"`

	Anomaly struct {
		URL            string `yaml:"url"`
		TimeoutSeconds int    `yaml:"timeoutSeconds"`
	} `yaml:"anomaly"`

	Search struct {
		Primary        string `yaml:"primary"` // duckduckgo (default) or brave
		BraveAPIKey    string `yaml:"braveAPIKey"`
		TimeoutSeconds int    `yaml:"timeoutSeconds"`
		MaxSources     int    `yaml:"maxSources"`
	} `yaml:"search"`

	Pipeline struct {
		OverallTimeoutSeconds int `yaml:"overallTimeoutSeconds"`
		LLMTimeoutSeconds     int `yaml:"llmTimeoutSeconds"`
		AgentBudget           int `yaml:"agentBudget"`
	} `yaml:"pipeline"`

	RateLimit struct {
		Capacity   int `yaml:"capacity"`
		RefillRate int `yaml:"refillRate"`
	} `yaml:"rateLimit"`
}

// Load reads config from a YAML file, then lets environment variables
// override the secrets so keys stay out of committed config.
func Load(path string) (*Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns a config without reading any file, for the CLI.
func Default() *Config {
	var cfg Config
	cfg.applyEnv()
	cfg.applyDefaults()
	return &cfg
}

func (c *Config) applyEnv() {
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		c.LLM.BaseURL = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("ANOMALY_API_URL"); v != "" {
		c.Anomaly.URL = v
	}
	if v := os.Getenv("BRAVE_API_KEY"); v != "" {
		c.Search.BraveAPIKey = v
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = "http://localhost:11434/v1"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "llama3.2"
	}
	if c.LLM.Temperature == 0 {
		c.LLM.Temperature = 0.7
	}
	if c.Anomaly.URL == "" {
		c.Anomaly.URL = "http://localhost:7000"
	}
	if c.Anomaly.TimeoutSeconds == 0 {
		c.Anomaly.TimeoutSeconds = 5
	}
	if c.Search.Primary == "" {
		c.Search.Primary = "duckduckgo"
	}
	if c.Search.TimeoutSeconds == 0 {
		c.Search.TimeoutSeconds = 10
	}
	if c.Search.MaxSources == 0 {
		c.Search.MaxSources = 5
	}
	if c.Pipeline.OverallTimeoutSeconds == 0 {
		c.Pipeline.OverallTimeoutSeconds = 180
	}
	if c.Pipeline.LLMTimeoutSeconds == 0 {
		c.Pipeline.LLMTimeoutSeconds = 60
	}
	if c.Pipeline.AgentBudget == 0 {
		c.Pipeline.AgentBudget = 3
	}
	if c.RateLimit.Capacity == 0 {
		c.RateLimit.Capacity = 10
	}
	if c.RateLimit.RefillRate == 0 {
		c.RateLimit.RefillRate = 1
	}
}

// Helpers to turn the second-granularity knobs into durations.

func (c *Config) AnomalyTimeout() time.Duration {
	return time.Duration(c.Anomaly.TimeoutSeconds) * time.Second
}

func (c *Config) SearchTimeout() time.Duration {
	return time.Duration(c.Search.TimeoutSeconds) * time.Second
}

func (c *Config) LLMTimeout() time.Duration {
	return time.Duration(c.Pipeline.LLMTimeoutSeconds) * time.Second
}

func (c *Config) OverallTimeout() time.Duration {
	return time.Duration(c.Pipeline.OverallTimeoutSeconds) * time.Second
}
