package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/snapdiff/snapdiff/internal/api/handlers"
	"github.com/snapdiff/snapdiff/internal/api/router"
	"github.com/snapdiff/snapdiff/internal/config"
	"github.com/snapdiff/snapdiff/internal/pkg/logger"
	apivalidator "github.com/snapdiff/snapdiff/internal/pkg/validator"
	"github.com/snapdiff/snapdiff/internal/providers"
	"github.com/snapdiff/snapdiff/internal/repository/postgres"
	"github.com/snapdiff/snapdiff/internal/services"
	"github.com/snapdiff/snapdiff/internal/storage"
	"github.com/snapdiff/snapdiff/internal/worker"
	"github.com/snapdiff/snapdiff/migrations"
)

// @title SnapDiff API
// @version 1.0
// @description Visual regression detection: pixel comparison, review workflow, baselines and trends.
// @BasePath /api/v1
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	db, err := postgres.New(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := postgres.RunMigrations(db, migrations.GetFS()); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Info("Database migrations applied")

	// Repositories
	runRepo := postgres.NewRunRepository(db)
	baselineRepo := postgres.NewBaselineRepository(db)
	settingsRepo := postgres.NewSettingsRepository(db)
	regressionRepo := postgres.NewRegressionRepository(db)

	// Screenshot storage backends keyed by ref scheme
	httpFetcher := storage.NewHTTPFetcher(cfg.Comparison.FetchTimeout, cfg.Comparison.FetchRetries)
	backends := map[string]storage.Fetcher{
		"file":  storage.NewFileFetcher(),
		"http":  httpFetcher,
		"https": httpFetcher,
	}

	var artifacts storage.ArtifactStore = storage.NewFileArtifactStore(cfg.Artifacts.Dir)
	if cfg.Artifacts.GCSBucket != "" {
		gcsClient, err := storage.NewGCSClient(context.Background(), cfg.Artifacts.GCSCredentialsJSON)
		if err != nil {
			log.Fatalf("Failed to create GCS client: %v", err)
		}
		defer gcsClient.Close()
		backends["gs"] = storage.NewGCSFetcher(gcsClient)
		artifacts = storage.NewGCSArtifactStore(gcsClient, cfg.Artifacts.GCSBucket)
		log.With("bucket", cfg.Artifacts.GCSBucket).Info("Diff artifacts stored in GCS")
	}
	fetcher := storage.NewSchemeFetcher(backends)

	annotator := providers.NewOpenAIAnnotator(cfg.Annotation.OpenAIAPIKey)
	if annotator.Enabled() {
		log.Info("AI diff annotation enabled")
	}

	// Services
	analysisService := services.NewAnalysisService(
		runRepo, baselineRepo, settingsRepo, regressionRepo,
		fetcher, artifacts, annotator, cfg.Comparison, log,
	)
	regressionService := services.NewRegressionService(regressionRepo, log)
	baselineService := services.NewBaselineService(baselineRepo, runRepo, log)
	settingsService := services.NewSettingsService(settingsRepo, log)

	// Handlers
	val := apivalidator.New()
	h := &router.Handlers{
		Health:     handlers.NewHealthHandler(db, log),
		Analysis:   handlers.NewAnalysisHandler(analysisService, log),
		Regression: handlers.NewRegressionHandler(regressionService, log, val),
		Suite:      handlers.NewSuiteHandler(baselineService, settingsService, regressionService, log, val),
	}

	// Scheduled analysis sweep
	if cfg.Worker.Enabled {
		scheduler := worker.NewAnalysisScheduler(analysisService, runRepo, log)
		if err := scheduler.Start(cfg.Worker.Schedule); err != nil {
			log.Fatalf("Failed to start analysis scheduler: %v", err)
		}
		defer scheduler.Stop()
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.New(cfg, log, h),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.With("addr", srv.Addr).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.ErrorWithErr(err, "Graceful shutdown failed")
	}
	log.Info("Server stopped")
}
