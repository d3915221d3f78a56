package regression

import "time"

// Regression is a persisted comparison outcome for one (test, viewport, step)
// pair of a test run. Created by batch analysis, mutated only by review
// actions afterwards.
type Regression struct {
	ID                  int64      `json:"id"`
	TestRunID           int64      `json:"test_run_id"`
	BaselineRunID       *int64     `json:"baseline_run_id,omitempty"`
	TestName            string     `json:"test_name"`
	Viewport            string     `json:"viewport"`
	StepName            string     `json:"step_name,omitempty"`
	PixelsDifferent     int64      `json:"pixels_different"`
	PercentageDifferent float64    `json:"percentage_different"`
	Width               int        `json:"width"`
	Height              int        `json:"height"`
	Threshold           float64    `json:"threshold"`
	IsSignificant       bool       `json:"is_significant"`
	DiffRef             string     `json:"diff_ref,omitempty"`
	Annotation          string     `json:"annotation,omitempty"`
	Status              string     `json:"status"`
	ReviewedBy          string     `json:"reviewed_by,omitempty"`
	ReviewedAt          *time.Time `json:"reviewed_at,omitempty"`
	Notes               string     `json:"notes,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at,omitempty"`
}

// Review statuses. Pending is the system-set initial state; every other
// status is human-triggered and re-triggerable from any non-pending state.
const (
	StatusPending       = "pending"
	StatusApproved      = "approved"
	StatusBugReported   = "bug_reported"
	StatusInvestigating = "investigating"
	StatusFalsePositive = "false_positive"
)

// ValidReviewStatus reports whether status is a legal review target. Pending
// is excluded: it is assigned at creation and never re-entered.
func ValidReviewStatus(status string) bool {
	switch status {
	case StatusApproved, StatusBugReported, StatusInvestigating, StatusFalsePositive:
		return true
	}
	return false
}

// Filter contains regression filtering options
type Filter struct {
	Status        string
	IsSignificant *bool
}

// Stats summarizes the regressions of one test run
type Stats struct {
	Total       int            `json:"total"`
	Significant int            `json:"significant"`
	Pending     int            `json:"pending"`
	ByStatus    map[string]int `json:"by_status"`
}

// TrendPoint is one day of regression history for a suite
type TrendPoint struct {
	Date             string `json:"date"`
	RegressionCount  int    `json:"regression_count"`
	SignificantCount int    `json:"significant_count"`
}
