package services

import (
	"context"

	"github.com/snapdiff/snapdiff/internal/domain/settings"
	"github.com/snapdiff/snapdiff/internal/pkg/errors"
	"github.com/snapdiff/snapdiff/internal/pkg/logger"
)

// SettingsService implements settings.Service
type SettingsService struct {
	repo   settings.Repository
	logger *logger.Logger
}

// NewSettingsService creates a new settings service
func NewSettingsService(repo settings.Repository, log *logger.Logger) settings.Service {
	return &SettingsService{
		repo:   repo,
		logger: log,
	}
}

// GetSettings retrieves a suite's settings
func (s *SettingsService) GetSettings(ctx context.Context, suiteID int64) (*settings.SuiteSettings, error) {
	return s.repo.GetSettings(ctx, suiteID)
}

// UpdateSettings validates and stores a suite's settings
func (s *SettingsService) UpdateSettings(ctx context.Context, cfg *settings.SuiteSettings) error {
	if cfg.Threshold != nil && (*cfg.Threshold < 0 || *cfg.Threshold > 1) {
		return errors.ValidationError("threshold must be in [0,1]")
	}

	if err := s.repo.UpsertSettings(ctx, cfg); err != nil {
		s.logger.ErrorWithErr(err, "Failed to update suite settings")
		return err
	}

	s.logger.WithFields(map[string]interface{}{
		"suite_id": cfg.SuiteID,
	}).Info("Suite settings updated")

	return nil
}

// ListIgnoreRegions retrieves every ignore region of a suite
func (s *SettingsService) ListIgnoreRegions(ctx context.Context, suiteID int64) ([]*settings.IgnoreRegion, error) {
	return s.repo.ListAllIgnoreRegions(ctx, suiteID)
}

// AddIgnoreRegion validates and adds an ignore region
func (s *SettingsService) AddIgnoreRegion(ctx context.Context, r *settings.IgnoreRegion) (int64, error) {
	if r.Width <= 0 || r.Height <= 0 {
		return 0, errors.ValidationError("ignore region must have positive width and height")
	}

	id, err := s.repo.CreateIgnoreRegion(ctx, r)
	if err != nil {
		s.logger.ErrorWithErr(err, "Failed to create ignore region")
		return 0, err
	}

	s.logger.WithFields(map[string]interface{}{
		"suite_id":  r.SuiteID,
		"region_id": id,
	}).Info("Ignore region added")

	return id, nil
}

// RemoveIgnoreRegion removes an ignore region
func (s *SettingsService) RemoveIgnoreRegion(ctx context.Context, suiteID, id int64) error {
	if err := s.repo.DeleteIgnoreRegion(ctx, suiteID, id); err != nil {
		s.logger.ErrorWithErr(err, "Failed to delete ignore region")
		return err
	}

	return nil
}
