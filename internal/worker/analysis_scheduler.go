// Package worker runs the scheduled analysis sweep: completed test runs that
// have not been analyzed yet are picked up and pushed through batch analysis
// without an explicit API call.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/snapdiff/snapdiff/internal/domain/run"
	"github.com/snapdiff/snapdiff/internal/pkg/logger"
	"github.com/snapdiff/snapdiff/internal/services"
)

// sweepBatchSize bounds how many runs one sweep picks up.
const sweepBatchSize = 20

// AnalysisScheduler periodically analyzes pending runs on a cron schedule.
type AnalysisScheduler struct {
	runner    services.AnalysisRunner
	runRepo   run.Repository
	logger    *logger.Logger
	scheduler *cron.Cron

	mu      sync.Mutex
	running bool
}

// NewAnalysisScheduler creates a new scheduler; Start must be called to
// begin sweeping.
func NewAnalysisScheduler(runner services.AnalysisRunner, runRepo run.Repository, log *logger.Logger) *AnalysisScheduler {
	return &AnalysisScheduler{
		runner:  runner,
		runRepo: runRepo,
		logger:  log,
	}
}

// Start validates the schedule and begins the sweep loop.
func (s *AnalysisScheduler) Start(schedule string) error {
	if _, err := cron.ParseStandard(schedule); err != nil {
		return fmt.Errorf("invalid cron schedule: %w", err)
	}

	s.scheduler = cron.New()
	if _, err := s.scheduler.AddFunc(schedule, s.sweep); err != nil {
		return fmt.Errorf("failed to schedule analysis sweep: %w", err)
	}
	s.scheduler.Start()

	s.logger.WithFields(map[string]interface{}{
		"schedule": schedule,
	}).Info("Analysis scheduler started")

	return nil
}

// Stop stops the sweep loop, waiting for a running sweep to finish.
func (s *AnalysisScheduler) Stop() {
	if s.scheduler != nil {
		ctx := s.scheduler.Stop()
		<-ctx.Done()
	}
	s.logger.Info("Analysis scheduler stopped")
}

// sweep analyzes every pending run. Overlapping sweeps are skipped rather
// than queued.
func (s *AnalysisScheduler) sweep() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.logger.Warn("Previous analysis sweep still running; skipping")
		return
	}
	s.running = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	runs, err := s.runRepo.ListPendingAnalysis(ctx, sweepBatchSize)
	if err != nil {
		s.logger.ErrorWithErr(err, "Failed to list runs pending analysis")
		return
	}
	if len(runs) == 0 {
		return
	}

	for _, tr := range runs {
		report, err := s.runner.RunRegressionAnalysis(ctx, tr.ID)
		if err != nil {
			s.logger.WithError(err).WithFields(map[string]interface{}{
				"test_run_id": tr.ID,
			}).Error("Scheduled analysis failed; continuing with next run")
			continue
		}

		if !report.Success {
			// Typically a missing baseline; leave the run for later and
			// let an operator set a baseline.
			s.logger.WithFields(map[string]interface{}{
				"test_run_id": tr.ID,
				"message":     report.Message,
			}).Warn("Scheduled analysis skipped run")
			continue
		}

		s.logger.WithFields(map[string]interface{}{
			"test_run_id": tr.ID,
			"comparisons": report.TotalComparisons,
			"significant": report.SignificantRegressions,
		}).Info("Scheduled analysis completed")
	}
}
