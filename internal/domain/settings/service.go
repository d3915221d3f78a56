package settings

import "context"

// Service defines the interface for suite comparison policy
type Service interface {
	// GetSettings retrieves a suite's settings with defaults applied
	GetSettings(ctx context.Context, suiteID int64) (*SuiteSettings, error)

	// UpdateSettings validates and stores a suite's settings
	UpdateSettings(ctx context.Context, s *SuiteSettings) error

	// ListIgnoreRegions retrieves every ignore region of a suite
	ListIgnoreRegions(ctx context.Context, suiteID int64) ([]*IgnoreRegion, error)

	// AddIgnoreRegion validates and adds an ignore region
	AddIgnoreRegion(ctx context.Context, r *IgnoreRegion) (int64, error)

	// RemoveIgnoreRegion removes an ignore region
	RemoveIgnoreRegion(ctx context.Context, suiteID, id int64) error
}
