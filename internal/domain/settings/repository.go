package settings

import "context"

// Repository defines the interface for suite settings data access
type Repository interface {
	// GetSettings retrieves a suite's settings; a suite without a row is
	// returned as the zero value so callers fall back to system defaults
	GetSettings(ctx context.Context, suiteID int64) (*SuiteSettings, error)

	// UpsertSettings creates or replaces a suite's settings
	UpsertSettings(ctx context.Context, s *SuiteSettings) error

	// ListIgnoreRegions retrieves the ignore regions applying to a
	// (test, viewport) key, including suite-wide wildcard rows
	ListIgnoreRegions(ctx context.Context, suiteID int64, testName, viewport string) ([]*IgnoreRegion, error)

	// ListAllIgnoreRegions retrieves every ignore region of a suite
	ListAllIgnoreRegions(ctx context.Context, suiteID int64) ([]*IgnoreRegion, error)

	// CreateIgnoreRegion adds an ignore region
	CreateIgnoreRegion(ctx context.Context, r *IgnoreRegion) (int64, error)

	// DeleteIgnoreRegion removes an ignore region
	DeleteIgnoreRegion(ctx context.Context, suiteID, id int64) error
}
