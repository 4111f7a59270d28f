package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/bryanwahyu/cybersec-agent/internal/application"
	appanalysis "github.com/bryanwahyu/cybersec-agent/internal/application/analysis"
	"github.com/bryanwahyu/cybersec-agent/internal/config"
	domain "github.com/bryanwahyu/cybersec-agent/internal/domain/analysis"
	aiclient "github.com/bryanwahyu/cybersec-agent/internal/infra/ai/openai"
	"github.com/bryanwahyu/cybersec-agent/internal/infra/anomaly"
	"github.com/bryanwahyu/cybersec-agent/internal/infra/search"
)

var (
	configPath   string
	noSearch     bool
	outputFormat string
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "cybersec-agent",
		Short:        "AI-assisted security log analysis",
		Long:         "cybersec-agent combines anomaly detection, threat-intelligence search\nand a language model into a single security log analysis pipeline.",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "Path to config file")
	rootCmd.AddCommand(newAnalyzeCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [LOG TEXT]",
		Short: "Analyze a security log entry",
		Long: `Analyze a raw security log entry and print a structured threat report.

Examples:
  # Analyze a log line directly
  cybersec-agent analyze "Failed password for admin from 203.0.113.42 port 55892 ssh2"

  # Pipe a log in from stdin
  cat auth.log | cybersec-agent analyze

  # Skip threat-intelligence search
  cybersec-agent analyze --no-search "unauthorized access attempt on port 22"`,
		Args: cobra.MaximumNArgs(1),
		RunE: runAnalyze,
	}
	cmd.Flags().BoolVar(&noSearch, "no-search", false, "Disable threat-intelligence search")
	cmd.Flags().StringVarP(&outputFormat, "output", "o", "human", "Output format (human, json)")
	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	logText, err := readLogText(args)
	if err != nil {
		return err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		cfg = config.Default()
	}

	svc := buildService(cfg)

	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond)
	s.Suffix = " Analyzing log..."
	s.Start()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.OverallTimeout())
	defer cancel()

	report, err := svc.Analyze(ctx, domain.Request{LogText: logText, UseSearch: !noSearch})
	s.Stop()
	if err != nil {
		return err
	}

	if outputFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	printReport(report)
	return nil
}

func readLogText(args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		return args[0], nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read log from stdin: %w", err)
	}
	return string(data), nil
}

func buildService(cfg *config.Config) *appanalysis.Service {
	llm := aiclient.NewClient(cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.Temperature)
	anomalyClient := anomaly.NewClient(cfg.Anomaly.URL, cfg.AnomalyTimeout())

	providers := []domain.SearchProvider{search.NewDuckDuckGo(cfg.SearchTimeout())}
	if cfg.Search.BraveAPIKey != "" {
		brave := search.NewBrave(cfg.Search.BraveAPIKey, cfg.SearchTimeout())
		if cfg.Search.Primary == "brave" {
			providers = []domain.SearchProvider{brave, providers[0]}
		} else {
			providers = append(providers, brave)
		}
	}

	return appanalysis.NewService(anomalyClient, llm, providers, application.SystemClock{}, appanalysis.Options{
		AnomalyTimeout: cfg.AnomalyTimeout(),
		LLMTimeout:     cfg.LLMTimeout(),
		SearchTimeout:  cfg.SearchTimeout(),
		OverallTimeout: cfg.OverallTimeout(),
		MaxSources:     cfg.Search.MaxSources,
		AgentBudget:    cfg.Pipeline.AgentBudget,
	})
}

func printReport(r *domain.Report) {
	bold := color.New(color.Bold)

	fmt.Println()
	bold.Println("ANALYSIS RESULTS")
	fmt.Println("========================================")
	fmt.Printf("Threat Type: %s\n", r.ThreatType)
	fmt.Printf("Severity:    %s\n", severityColor(r.Severity).Sprint(r.Severity))
	fmt.Printf("Confidence:  %.2f\n", r.ConfidenceScore)

	if r.BertData != nil {
		fmt.Printf("\nAnomaly score %.2f (threshold %.2f, anomaly=%v, confidence %.1f%%)\n",
			r.BertData.Score, r.BertData.Threshold, r.BertData.IsAnomaly, r.BertData.Confidence)
	}

	fmt.Printf("\nExplanation:\n%s\n", r.Explanation)

	if len(r.IndicatorsOfCompromise) > 0 {
		bold.Println("\nIndicators of Compromise:")
		for _, ioc := range r.IndicatorsOfCompromise {
			fmt.Printf("  - %s\n", ioc)
		}
	}
	if len(r.RecommendedActions) > 0 {
		bold.Println("\nRecommended Actions:")
		for i, a := range r.RecommendedActions {
			fmt.Printf("  %d. %s\n", i+1, a)
		}
	}
	if len(r.SearchSources) > 0 {
		bold.Printf("\nThreat Intelligence (%q):\n", r.SearchQuery)
		for _, src := range r.SearchSources {
			fmt.Printf("  - %s\n    %s\n", src.Title, src.URL)
		}
	}
	if r.AgentSummary != "" {
		bold.Println("\nExecutive Summary:")
		fmt.Printf("%s\n", r.AgentSummary)
	}
	if len(r.AgentActions) > 0 {
		bold.Printf("\nAgent made %d additional tool call(s):\n", len(r.AgentActions))
		for _, a := range r.AgentActions {
			fmt.Printf("  - %s(%s)\n", a.Tool, a.ToolInput)
		}
	}
}

func severityColor(s domain.Severity) *color.Color {
	switch s {
	case domain.SeverityCritical, domain.SeverityHigh:
		return color.New(color.FgRed, color.Bold)
	case domain.SeverityMedium:
		return color.New(color.FgYellow)
	case domain.SeverityLow:
		return color.New(color.FgCyan)
	default:
		return color.New(color.FgGreen)
	}
}
