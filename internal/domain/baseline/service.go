package baseline

import "context"

// Service defines the interface for baseline management
type Service interface {
	// Get retrieves the suite's baseline
	Get(ctx context.Context, suiteID int64) (*Baseline, error)

	// Set designates a run as the suite's baseline after validating that the
	// run exists, belongs to the suite and has captured screenshots
	Set(ctx context.Context, suiteID, runID int64, notes string) error

	// Clear removes the suite's baseline designation
	Clear(ctx context.Context, suiteID int64) error
}
