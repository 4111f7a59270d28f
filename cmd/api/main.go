package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bryanwahyu/cybersec-agent/internal/application"
	appanalysis "github.com/bryanwahyu/cybersec-agent/internal/application/analysis"
	"github.com/bryanwahyu/cybersec-agent/internal/config"
	domain "github.com/bryanwahyu/cybersec-agent/internal/domain/analysis"
	aiclient "github.com/bryanwahyu/cybersec-agent/internal/infra/ai/openai"
	"github.com/bryanwahyu/cybersec-agent/internal/infra/anomaly"
	"github.com/bryanwahyu/cybersec-agent/internal/infra/httpserver"
	"github.com/bryanwahyu/cybersec-agent/internal/infra/search"
	"github.com/bryanwahyu/cybersec-agent/internal/middleware"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		log.Printf("config load error (%v), continuing with defaults", err)
		cfg = config.Default()
	}

	// external service clients
	llm := aiclient.NewClient(cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.Temperature)
	anomalyClient := anomaly.NewClient(cfg.Anomaly.URL, cfg.AnomalyTimeout())
	providers := buildProviders(cfg)

	svc := appanalysis.NewService(anomalyClient, llm, providers, application.SystemClock{}, appanalysis.Options{
		AnomalyTimeout: cfg.AnomalyTimeout(),
		LLMTimeout:     cfg.LLMTimeout(),
		SearchTimeout:  cfg.SearchTimeout(),
		OverallTimeout: cfg.OverallTimeout(),
		MaxSources:     cfg.Search.MaxSources,
		AgentBudget:    cfg.Pipeline.AgentBudget,
	})

	checkers := map[string]middleware.HealthChecker{
		"anomaly_service": middleware.CheckerFunc(anomalyClient.Check),
		"llm_service":     middleware.CheckerFunc(llm.Ping),
	}

	mux := chi.NewRouter()
	mux.Mount("/", httpserver.NewRouter(svc, checkers, cfg.RateLimit.Capacity, cfg.RateLimit.RefillRate))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:        addr,
		Handler:     mux,
		ReadTimeout: 15 * time.Second,
		// analyze requests legitimately run for minutes
		WriteTimeout: cfg.OverallTimeout() + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("server listening on %s (llm=%s search_primary=%s)", addr, cfg.LLM.Model, cfg.Search.Primary)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

// buildProviders assembles the search provider priority order: the
// key-less provider first, the key-gated one as fallback when a key is
// configured. Setting search.primary to "brave" swaps the order.
func buildProviders(cfg *config.Config) []domain.SearchProvider {
	ddg := search.NewDuckDuckGo(cfg.SearchTimeout())
	if cfg.Search.BraveAPIKey == "" {
		return []domain.SearchProvider{ddg}
	}
	brave := search.NewBrave(cfg.Search.BraveAPIKey, cfg.SearchTimeout())
	if cfg.Search.Primary == "brave" {
		return []domain.SearchProvider{brave, ddg}
	}
	return []domain.SearchProvider{ddg, brave}
}
