package services

import (
	"context"
	"fmt"

	"github.com/snapdiff/snapdiff/internal/domain/baseline"
	"github.com/snapdiff/snapdiff/internal/domain/run"
	"github.com/snapdiff/snapdiff/internal/pkg/errors"
	"github.com/snapdiff/snapdiff/internal/pkg/logger"
)

// BaselineService implements baseline.Service
type BaselineService struct {
	repo    baseline.Repository
	runRepo run.Repository
	logger  *logger.Logger
}

// NewBaselineService creates a new baseline service
func NewBaselineService(repo baseline.Repository, runRepo run.Repository, log *logger.Logger) baseline.Service {
	return &BaselineService{
		repo:    repo,
		runRepo: runRepo,
		logger:  log,
	}
}

// Get retrieves the suite's baseline
func (s *BaselineService) Get(ctx context.Context, suiteID int64) (*baseline.Baseline, error) {
	return s.repo.Get(ctx, suiteID)
}

// Set designates a run as the suite's baseline. The run must exist, belong
// to the suite and have captured at least one screenshot.
func (s *BaselineService) Set(ctx context.Context, suiteID, runID int64, notes string) error {
	tr, err := s.runRepo.GetByID(ctx, runID)
	if err != nil {
		return err
	}
	if tr.SuiteID != suiteID {
		return errors.BadRequest(fmt.Sprintf("run %d does not belong to suite %d", runID, suiteID))
	}

	shots, err := s.runRepo.ListScreenshots(ctx, runID)
	if err != nil {
		return err
	}
	if len(shots) == 0 {
		return errors.BadRequest(fmt.Sprintf("run %d has no screenshots", runID))
	}

	if err := s.repo.Set(ctx, suiteID, runID, notes); err != nil {
		s.logger.ErrorWithErr(err, "Failed to set baseline")
		return err
	}

	s.logger.WithFields(map[string]interface{}{
		"suite_id": suiteID,
		"run_id":   runID,
	}).Info("Baseline set")

	return nil
}

// Clear removes the suite's baseline designation
func (s *BaselineService) Clear(ctx context.Context, suiteID int64) error {
	if err := s.repo.Clear(ctx, suiteID); err != nil {
		s.logger.ErrorWithErr(err, "Failed to clear baseline")
		return err
	}

	s.logger.WithFields(map[string]interface{}{
		"suite_id": suiteID,
	}).Info("Baseline cleared")

	return nil
}
