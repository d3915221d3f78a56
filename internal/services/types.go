package services

import (
	"context"

	"github.com/snapdiff/snapdiff/internal/domain/regression"
)

// RegressionDetail carries one comparison outcome of a batch, with the
// ledger record it produced.
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

// RegressionReport is the ephemeral summary of one batch analysis. It is
// returned to the caller, never persisted.
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

// AnalysisRunner runs batch regression analysis for a test run.
type AnalysisRunner interface {
	RunRegressionAnalysis(ctx context.Context, testRunID int64) (*RegressionReport, error)
}

// Annotator produces an optional reviewer note for a regression.
type Annotator interface {
	Enabled() bool
	Annotate(ctx context.Context, reg *regression.Regression) (string, error)
}
