package client

import "time"

// HealthResponse is the liveness/readiness payload
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
}

// Regression represents a recorded visual regression
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
}

// RegressionPage is one page of regressions
type RegressionPage struct {
	Data       []Regression `json:"data"`
	Page       int          `json:"page"`
	PageSize   int          `json:"page_size"`
	TotalItems int64        `json:"total_items"`
	TotalPages int          `json:"total_pages"`
}

// RegressionStats is the per-run regression summary
type RegressionStats struct {
	Total       int            `json:"total"`
	Significant int            `json:"significant"`
	Pending     int            `json:"pending"`
	ByStatus    map[string]int `json:"by_status"`
}

// TrendPoint is one day of a suite's regression series
type TrendPoint struct {
	Date             string `json:"date"`
	RegressionCount  int    `json:"regression_count"`
	SignificantCount int    `json:"significant_count"`
}

// RegressionDetail is one comparison outcome inside a batch report
type RegressionDetail struct {
	RegressionID        int64   `json:"regression_id"`
	TestName            string  `json:"test_name"`
	Viewport            string  `json:"viewport"`
	StepName            string  `json:"step_name,omitempty"`
	PixelsDifferent     int64   `json:"pixels_different"`
	PercentageDifferent float64 `json:"percentage_different"`
	Width               int     `json:"width"`
	Height              int     `json:"height"`
	Threshold           float64 `json:"threshold"`
	IsSignificant       bool    `json:"is_significant"`
	DiffRef             string  `json:"diff_ref,omitempty"`
}

// RegressionReport is the outcome of a batch analysis
type RegressionReport struct {
	Success                bool               `json:"success"`
	TestRunID              int64              `json:"test_run_id"`
	BaselineRunID          int64              `json:"baseline_run_id,omitempty"`
	TotalComparisons       int                `json:"total_comparisons"`
	RegressionsFound       int                `json:"regressions_found"`
	SignificantRegressions int                `json:"significant_regressions"`
	AverageDifference      float64            `json:"average_difference"`
	SkippedTriples         int                `json:"skipped_triples"`
	FailedComparisons      int                `json:"failed_comparisons"`
	Message                string             `json:"message,omitempty"`
	Details                []RegressionDetail `json:"details"`
}

// Baseline is a suite's baseline designation
type Baseline struct {
	SuiteID       int64      `json:"suite_id"`
	BaselineRunID *int64     `json:"baseline_run_id"`
	SetAt         *time.Time `json:"set_at,omitempty"`
	Notes         string     `json:"notes,omitempty"`
}

// SuiteSettings is a suite's comparison policy
type SuiteSettings struct {
	SuiteID             int64    `json:"suite_id"`
	Threshold           *float64 `json:"threshold,omitempty"`
	EffectiveThreshold  float64  `json:"effective_threshold"`
	IncludeAntialiasing bool     `json:"include_antialiasing"`
}

// IgnoreRegion is a rectangle excluded from comparison
type IgnoreRegion struct {
	ID       int64  `json:"id"`
	TestName string `json:"test_name,omitempty"`
	Viewport string `json:"viewport,omitempty"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

// ListOptions contains generic pagination options
type ListOptions struct {
	Page     int
	PageSize int
}
