package dto

import "time"

// BaselineDTO is the API representation of a suite baseline
type BaselineDTO struct {
	SuiteID       int64      `json:"suite_id"`
	BaselineRunID *int64     `json:"baseline_run_id"`
	SetAt         *time.Time `json:"set_at,omitempty"`
	Notes         string     `json:"notes,omitempty"`
}

// SetBaselineRequest is the payload for designating a baseline run
type SetBaselineRequest struct {
	RunID int64  `json:"run_id" validate:"required,gt=0"`
	Notes string `json:"notes,omitempty"`
}

// SuiteSettingsDTO is the API representation of suite comparison policy
type SuiteSettingsDTO struct {
	SuiteID             int64    `json:"suite_id"`
	Threshold           *float64 `json:"threshold,omitempty"`
	EffectiveThreshold  float64  `json:"effective_threshold"`
	IncludeAntialiasing bool     `json:"include_antialiasing"`
}

// UpdateSettingsRequest is the payload for updating suite settings
type UpdateSettingsRequest struct {
	Threshold           *float64 `json:"threshold,omitempty" validate:"omitempty,gte=0,lte=1"`
	IncludeAntialiasing bool     `json:"include_antialiasing"`
}

// IgnoreRegionDTO is the API representation of an ignore region
type IgnoreRegionDTO struct {
	ID       int64  `json:"id"`
	TestName string `json:"test_name,omitempty"`
	Viewport string `json:"viewport,omitempty"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

// CreateIgnoreRegionRequest is the payload for adding an ignore region
type CreateIgnoreRegionRequest struct {
	TestName string `json:"test_name,omitempty"`
	Viewport string `json:"viewport,omitempty"`
	X        int    `json:"x" validate:"gte=0"`
	Y        int    `json:"y" validate:"gte=0"`
	Width    int    `json:"width" validate:"required,gt=0"`
	Height   int    `json:"height" validate:"required,gt=0"`
}
