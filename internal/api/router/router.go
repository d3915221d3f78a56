package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/snapdiff/snapdiff/internal/api/handlers"
	"github.com/snapdiff/snapdiff/internal/api/middleware"
	"github.com/snapdiff/snapdiff/internal/config"
	"github.com/snapdiff/snapdiff/internal/pkg/logger"
	"github.com/snapdiff/snapdiff/internal/pkg/metrics"
)

type Handlers struct {
	Health     *handlers.HealthHandler
	Analysis   *handlers.AnalysisHandler
	Regression *handlers.RegressionHandler
	Suite      *handlers.SuiteHandler
}

func New(cfg *config.Config, log *logger.Logger, h *Handlers) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.Recovery(log))
	r.Use(middleware.DefaultCORS(cfg.Server.FrontendURL))
	r.Use(middleware.RateLimit(100, 200))
	r.Use(metrics.Middleware)

	// Operational endpoints
	r.Get("/swagger/*", httpSwagger.WrapHandler)
	r.Get("/healthz", h.Health.Healthz)
	r.Get("/readyz", h.Health.Readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	// Analysis
	r.Post("/api/v1/analysis/runs/{runId}", h.Analysis.Run)

	// Regressions
	r.Route("/api/v1/regressions", func(r chi.Router) {
		r.Get("/", h.Regression.List)
		r.Get("/stats", h.Regression.Stats)
		r.Get("/{id}", h.Regression.Get)
		r.Put("/{id}/review", h.Regression.Review)
	})

	// Suites
	r.Route("/api/v1/suites/{suiteId}", func(r chi.Router) {
		r.Get("/baseline", h.Suite.GetBaseline)
		r.Put("/baseline", h.Suite.SetBaseline)
		r.Delete("/baseline", h.Suite.ClearBaseline)

		r.Get("/settings", h.Suite.GetSettings)
		r.Put("/settings", h.Suite.UpdateSettings)

		r.Get("/ignore-regions", h.Suite.ListIgnoreRegions)
		r.Post("/ignore-regions", h.Suite.CreateIgnoreRegion)
		r.Delete("/ignore-regions/{id}", h.Suite.DeleteIgnoreRegion)

		r.Get("/trends", h.Suite.Trends)
	})

	return r
}
