package httpserver

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	appanalysis "github.com/bryanwahyu/cybersec-agent/internal/application/analysis"
	domain "github.com/bryanwahyu/cybersec-agent/internal/domain/analysis"
	"github.com/bryanwahyu/cybersec-agent/internal/middleware"
)

type Router struct {
	svc *appanalysis.Service
}

// NewRouter mounts the analysis API. The HTTP layer is deliberately
// thin: decode, run the pipeline, encode. All degradation logic lives
// in the pipeline itself.
func NewRouter(svc *appanalysis.Service, checkers map[string]middleware.HealthChecker, rateCapacity, rateRefill int) http.Handler {
	r := &Router{svc: svc}
	mux := chi.NewRouter()

	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.MetricsMiddleware)
	mux.Use(middleware.RateLimitMiddleware(rateCapacity, rateRefill))

	mux.Get("/health", middleware.HealthHandler(checkers))
	mux.Get("/livez", middleware.LivenessHandler)
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Route("/v1", func(rt chi.Router) {
		rt.Post("/analyze", r.wrap(r.handleAnalyze))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			if domain.IsInputError(err) {
				middleware.IncrementAnalysesRejected()
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

// POST /v1/analyze
// Body: {"log_text": "...", "use_search": true}
// use_search defaults to true when omitted. Responds with the full
// report; external-service outages show up as degraded report fields,
// never as an error status.
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		LogText   string `json:"log_text"`
		UseSearch *bool  `json:"use_search"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return fmt.Errorf("%w: invalid request body", domain.ErrEmptyLog)
	}

	useSearch := true
	if body.UseSearch != nil {
		useSearch = *body.UseSearch
	}

	report, err := r.svc.Analyze(req.Context(), domain.Request{
		LogText:   middleware.SanitizeLogText(body.LogText),
		UseSearch: useSearch,
	})
	if err != nil {
		return err
	}
	middleware.IncrementAnalyses()

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(report)
}
