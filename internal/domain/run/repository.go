package run

import "context"

// Repository defines the interface for test-run data access. Runs and
// screenshots are written by the capture harness; analysis only reads them
// and advances the run status.
type Repository interface {
	// GetByID retrieves a test run by ID
	GetByID(ctx context.Context, id int64) (*TestRun, error)

	// ListScreenshots retrieves all screenshots of a run
	ListScreenshots(ctx context.Context, testRunID int64) ([]*Screenshot, error)

	// ListPendingAnalysis retrieves completed runs not yet analyzed, oldest
	// first
	ListPendingAnalysis(ctx context.Context, limit int) ([]*TestRun, error)

	// UpdateStatus updates a run's status
	UpdateStatus(ctx context.Context, id int64, status string) error
}
