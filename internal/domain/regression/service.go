package regression

import "context"

// Service defines the interface for regression review and reporting
type Service interface {
	// GetByID retrieves a regression by ID
	GetByID(ctx context.Context, id int64) (*Regression, error)

	// List retrieves the regressions of a test run with filters and pagination
	List(ctx context.Context, testRunID int64, filter Filter, limit, offset int) ([]*Regression, int64, error)

	// Review applies a review action: validates the target status, then
	// atomically records status, notes, reviewer and review time
	Review(ctx context.Context, id int64, status, notes, reviewedBy string) error

	// Stats summarizes a run's regressions
	Stats(ctx context.Context, testRunID int64) (*Stats, error)

	// Trends returns the daily regression series of a suite over the last
	// daysBack days; a suite with no history yields an empty series
	Trends(ctx context.Context, suiteID int64, daysBack int) ([]*TrendPoint, error)
}
