package client

import (
	"context"
	"fmt"
)

// AnalysisService handles regression analysis API calls
type AnalysisService struct {
	client *Client
}

// Run triggers batch regression analysis for a test run and returns the
// resulting report. A report with Success=false means the run's suite has
// no baseline; nothing was recorded.
func (s *AnalysisService) Run(ctx context.Context, testRunID int64) (*RegressionReport, error) {
	path := fmt.Sprintf("/api/v1/analysis/runs/%d", testRunID)

	var report RegressionReport
	if err := s.client.doRequest(ctx, "POST", path, nil, &report); err != nil {
		return nil, err
	}

	return &report, nil
}
