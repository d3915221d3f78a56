package baseline

import "time"

// Baseline designates which test run is ground truth for a suite. A suite
// with no baseline is a valid state, represented by a nil BaselineRunID, not
// by an error.
type Baseline struct {
	SuiteID       int64      `json:"suite_id"`
	BaselineRunID *int64     `json:"baseline_run_id"`
	SetAt         *time.Time `json:"set_at,omitempty"`
	Notes         string     `json:"notes,omitempty"`
}

// IsSet reports whether the suite has a baseline run designated.
func (b *Baseline) IsSet() bool {
	return b != nil && b.BaselineRunID != nil
}
