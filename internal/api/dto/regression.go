package dto

import "time"

// RegressionDTO is the API representation of a regression record
type RegressionDTO struct {
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

// ReviewRequest is the payload for a review action
type ReviewRequest struct {
	Status     string `json:"status" validate:"required"`
	Notes      string `json:"notes,omitempty"`
	ReviewedBy string `json:"reviewed_by,omitempty"`
}
