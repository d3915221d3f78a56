package services

import (
	"context"
	"time"

	"github.com/snapdiff/snapdiff/internal/domain/regression"
	"github.com/snapdiff/snapdiff/internal/pkg/errors"
	"github.com/snapdiff/snapdiff/internal/pkg/logger"
)

// RegressionService implements regression.Service
type RegressionService struct {
	repo   regression.Repository
	logger *logger.Logger
}

// NewRegressionService creates a new regression service
func NewRegressionService(repo regression.Repository, log *logger.Logger) regression.Service {
	return &RegressionService{
		repo:   repo,
		logger: log,
	}
}

// GetByID retrieves a regression by ID
func (s *RegressionService) GetByID(ctx context.Context, id int64) (*regression.Regression, error) {
	return s.repo.GetByID(ctx, id)
}

// List retrieves the regressions of a test run with filters and pagination
func (s *RegressionService) List(ctx context.Context, testRunID int64, filter regression.Filter, limit, offset int) ([]*regression.Regression, int64, error) {
	return s.repo.ListWithPagination(ctx, testRunID, filter, limit, offset)
}

// Review applies a review action. An invalid target status is rejected
// before any write, leaving the record untouched.
func (s *RegressionService) Review(ctx context.Context, id int64, status, notes, reviewedBy string) error {
	if !regression.ValidReviewStatus(status) {
		return errors.InvalidStatus(status)
	}

	if err := s.repo.UpdateReview(ctx, id, status, notes, reviewedBy, time.Now()); err != nil {
		s.logger.ErrorWithErr(err, "Failed to update regression review")
		return err
	}

	s.logger.WithFields(map[string]interface{}{
		"regression_id": id,
		"status":        status,
		"reviewed_by":   reviewedBy,
	}).Info("Regression reviewed")

	return nil
}

// Stats summarizes a run's regressions
func (s *RegressionService) Stats(ctx context.Context, testRunID int64) (*regression.Stats, error) {
	return s.repo.Stats(ctx, testRunID)
}

// Trends returns the daily regression series of a suite over the window
func (s *RegressionService) Trends(ctx context.Context, suiteID int64, daysBack int) ([]*regression.TrendPoint, error) {
	if daysBack <= 0 {
		return nil, errors.BadRequest("daysBack must be positive")
	}

	since := time.Now().AddDate(0, 0, -daysBack)
	points, err := s.repo.Trends(ctx, suiteID, since)
	if err != nil {
		return nil, err
	}

	// A suite with no history is an empty series, not an error.
	if points == nil {
		points = []*regression.TrendPoint{}
	}
	return points, nil
}
