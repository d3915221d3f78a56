package client

import (
	"context"
	"fmt"
	"strconv"
)

// SuiteService handles suite baseline, settings and trend API calls
type SuiteService struct {
	client *Client
}

// SetBaselineRequest represents a request to designate a baseline run
type SetBaselineRequest struct {
	RunID int64  `json:"run_id"`
	Notes string `json:"notes,omitempty"`
}

// UpdateSettingsRequest represents a request to update suite settings
type UpdateSettingsRequest struct {
	Threshold           *float64 `json:"threshold,omitempty"`
	IncludeAntialiasing bool     `json:"include_antialiasing"`
}

// CreateIgnoreRegionRequest represents a request to add an ignore region
type CreateIgnoreRegionRequest struct {
	TestName string `json:"test_name,omitempty"`
	Viewport string `json:"viewport,omitempty"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

// GetBaseline retrieves the suite's baseline designation
func (s *SuiteService) GetBaseline(ctx context.Context, suiteID int64) (*Baseline, error) {
	path := fmt.Sprintf("/api/v1/suites/%d/baseline", suiteID)

	var b Baseline
	if err := s.client.doRequest(ctx, "GET", path, nil, &b); err != nil {
		return nil, err
	}

	return &b, nil
}

// SetBaseline designates a run as the suite's baseline
func (s *SuiteService) SetBaseline(ctx context.Context, suiteID, runID int64, notes string) error {
	path := fmt.Sprintf("/api/v1/suites/%d/baseline", suiteID)
	return s.client.doRequest(ctx, "PUT", path, SetBaselineRequest{RunID: runID, Notes: notes}, nil)
}

// ClearBaseline removes the suite's baseline designation
func (s *SuiteService) ClearBaseline(ctx context.Context, suiteID int64) error {
	path := fmt.Sprintf("/api/v1/suites/%d/baseline", suiteID)
	return s.client.doRequest(ctx, "DELETE", path, nil, nil)
}

// GetSettings retrieves the suite's comparison settings
func (s *SuiteService) GetSettings(ctx context.Context, suiteID int64) (*SuiteSettings, error) {
	path := fmt.Sprintf("/api/v1/suites/%d/settings", suiteID)

	var set SuiteSettings
	if err := s.client.doRequest(ctx, "GET", path, nil, &set); err != nil {
		return nil, err
	}

	return &set, nil
}

// UpdateSettings replaces the suite's comparison settings
func (s *SuiteService) UpdateSettings(ctx context.Context, suiteID int64, req UpdateSettingsRequest) error {
	path := fmt.Sprintf("/api/v1/suites/%d/settings", suiteID)
	return s.client.doRequest(ctx, "PUT", path, req, nil)
}

// ListIgnoreRegions retrieves every ignore region of a suite
func (s *SuiteService) ListIgnoreRegions(ctx context.Context, suiteID int64) ([]IgnoreRegion, error) {
	path := fmt.Sprintf("/api/v1/suites/%d/ignore-regions", suiteID)

	var regions []IgnoreRegion
	if err := s.client.doRequest(ctx, "GET", path, nil, &regions); err != nil {
		return nil, err
	}

	return regions, nil
}

// CreateIgnoreRegion adds an ignore region to a suite and returns its ID
func (s *SuiteService) CreateIgnoreRegion(ctx context.Context, suiteID int64, req CreateIgnoreRegionRequest) (int64, error) {
	path := fmt.Sprintf("/api/v1/suites/%d/ignore-regions", suiteID)

	var created struct {
		ID int64 `json:"id"`
	}
	if err := s.client.doRequest(ctx, "POST", path, req, &created); err != nil {
		return 0, err
	}

	return created.ID, nil
}

// DeleteIgnoreRegion removes an ignore region from a suite
func (s *SuiteService) DeleteIgnoreRegion(ctx context.Context, suiteID, regionID int64) error {
	path := fmt.Sprintf("/api/v1/suites/%d/ignore-regions/%d", suiteID, regionID)
	return s.client.doRequest(ctx, "DELETE", path, nil, nil)
}

// Trends retrieves the suite's daily regression series
func (s *SuiteService) Trends(ctx context.Context, suiteID int64, days int) ([]TrendPoint, error) {
	path := fmt.Sprintf("/api/v1/suites/%d/trends", suiteID)
	if days > 0 {
		path += "?days=" + strconv.Itoa(days)
	}

	var points []TrendPoint
	if err := s.client.doRequest(ctx, "GET", path, nil, &points); err != nil {
		return nil, err
	}

	return points, nil
}
