package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// RegressionService handles regression review API calls
type RegressionService struct {
	client *Client
}

// RegressionListOptions contains options for listing regressions
type RegressionListOptions struct {
	ListOptions
	Status      *string // pending, approved, bug_reported, investigating, false_positive
	Significant *bool
}

// ReviewRequest represents a review action on a regression
type ReviewRequest struct {
	Status     string `json:"status"`
	Notes      string `json:"notes,omitempty"`
	ReviewedBy string `json:"reviewed_by,omitempty"`
}

// List retrieves one page of a test run's regressions
func (s *RegressionService) List(ctx context.Context, testRunID int64, opts *RegressionListOptions) (*RegressionPage, error) {
	query := url.Values{}
	query.Set("test_run_id", strconv.FormatInt(testRunID, 10))

	if opts != nil {
		if opts.Page > 0 {
			query.Set("page", strconv.Itoa(opts.Page))
		}
		if opts.PageSize > 0 {
			query.Set("page_size", strconv.Itoa(opts.PageSize))
		}
		if opts.Status != nil {
			query.Set("status", *opts.Status)
		}
		if opts.Significant != nil {
			query.Set("significant", strconv.FormatBool(*opts.Significant))
		}
	}

	path := "/api/v1/regressions?" + query.Encode()

	var page RegressionPage
	if err := s.client.doRequest(ctx, "GET", path, nil, &page); err != nil {
		return nil, err
	}

	return &page, nil
}

// Get retrieves a single regression by ID
func (s *RegressionService) Get(ctx context.Context, id int64) (*Regression, error) {
	path := fmt.Sprintf("/api/v1/regressions/%d", id)

	var reg Regression
	if err := s.client.doRequest(ctx, "GET", path, nil, &reg); err != nil {
		return nil, err
	}

	return &reg, nil
}

// Review applies a review action to a regression
func (s *RegressionService) Review(ctx context.Context, id int64, req ReviewRequest) error {
	path := fmt.Sprintf("/api/v1/regressions/%d/review", id)
	return s.client.doRequest(ctx, "PUT", path, req, nil)
}

// Approve marks a regression as an accepted visual change
func (s *RegressionService) Approve(ctx context.Context, id int64, reviewedBy string) error {
	return s.Review(ctx, id, ReviewRequest{Status: "approved", ReviewedBy: reviewedBy})
}

// ReportBug marks a regression as a confirmed defect
func (s *RegressionService) ReportBug(ctx context.Context, id int64, notes, reviewedBy string) error {
	return s.Review(ctx, id, ReviewRequest{Status: "bug_reported", Notes: notes, ReviewedBy: reviewedBy})
}

// Stats retrieves the regression summary of a test run
func (s *RegressionService) Stats(ctx context.Context, testRunID int64) (*RegressionStats, error) {
	path := "/api/v1/regressions/stats?test_run_id=" + strconv.FormatInt(testRunID, 10)

	var stats RegressionStats
	if err := s.client.doRequest(ctx, "GET", path, nil, &stats); err != nil {
		return nil, err
	}

	return &stats, nil
}
