package baseline

import "context"

// Repository defines the interface for baseline data access
type Repository interface {
	// Get retrieves the suite's baseline; an unset baseline is returned as
	// the zero value, not an error
	Get(ctx context.Context, suiteID int64) (*Baseline, error)

	// Set designates runID as the suite's baseline, replacing any previous
	// designation atomically
	Set(ctx context.Context, suiteID, runID int64, notes string) error

	// Clear removes the suite's baseline designation
	Clear(ctx context.Context, suiteID int64) error
}
