package regression

import (
	"context"
	"time"
)

// Repository defines the interface for regression data access
type Repository interface {
	// Create inserts a new regression record
	Create(ctx context.Context, r *Regression) (int64, error)

	// Upsert inserts a regression or, when a record already exists for the
	// same (test_run_id, test_name, viewport, step_name), overwrites its
	// comparison fields while preserving the record identity
	Upsert(ctx context.Context, r *Regression) (int64, error)

	// GetByID retrieves a regression by ID
	GetByID(ctx context.Context, id int64) (*Regression, error)

	// List retrieves the regressions of a test run with filters
	List(ctx context.Context, testRunID int64, filter Filter) ([]*Regression, error)

	// ListWithPagination retrieves regressions with filters and pagination
	ListWithPagination(ctx context.Context, testRunID int64, filter Filter, limit, offset int) ([]*Regression, int64, error)

	// UpdateReview atomically sets status, reviewer, review time and notes
	UpdateReview(ctx context.Context, id int64, status, notes, reviewedBy string, reviewedAt time.Time) error

	// Stats counts a run's regressions in total, by significance and by status
	Stats(ctx context.Context, testRunID int64) (*Stats, error)

	// Trends returns the daily regression series of a suite since the given
	// time, ordered by date ascending, one point per day with a regression
	Trends(ctx context.Context, suiteID int64, since time.Time) ([]*TrendPoint, error)
}
