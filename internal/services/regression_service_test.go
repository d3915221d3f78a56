package services

import (
	"context"
	"testing"

	"github.com/snapdiff/snapdiff/internal/domain/regression"
	"github.com/snapdiff/snapdiff/internal/testutil"
)

func seedRegression(t *testing.T, repo *testutil.MockRegressionRepository, r *regression.Regression) int64 {
	t.Helper()
	if r.Status == "" {
		r.Status = regression.StatusPending
	}
	id, err := repo.Create(context.Background(), r)
	if err != nil {
		t.Fatalf("seed regression: %v", err)
	}
	return id
}

func TestRegressionService_Review(t *testing.T) {
	tests := []struct {
		name    string
		status  string
		wantErr bool
	}{
		{name: "approve", status: regression.StatusApproved},
		{name: "report bug", status: regression.StatusBugReported},
		{name: "investigate", status: regression.StatusInvestigating},
		{name: "false positive", status: regression.StatusFalsePositive},
		{name: "unknown status rejected", status: "looks_fine", wantErr: true},
		{name: "pending cannot be re-entered", status: regression.StatusPending, wantErr: true},
		{name: "empty status rejected", status: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := testutil.NewMockRegressionRepository()
			service := NewRegressionService(repo, testutil.NewTestLogger())

			id := seedRegression(t, repo, &regression.Regression{
				TestRunID: 1, TestName: "home", Viewport: "1280x720",
				PercentageDifferent: 2.5, IsSignificant: true,
			})

			err := service.Review(context.Background(), id, tt.status, "checked", "alice")
			if (err != nil) != tt.wantErr {
				t.Fatalf("Review() error = %v, wantErr %v", err, tt.wantErr)
			}

			got, _ := service.GetByID(context.Background(), id)
			if tt.wantErr {
				// Rejected before any write: the record is untouched.
				if got.Status != regression.StatusPending || got.ReviewedBy != "" || got.ReviewedAt != nil {
					t.Errorf("record mutated by rejected review: status=%q reviewedBy=%q", got.Status, got.ReviewedBy)
				}
				return
			}

			if got.Status != tt.status {
				t.Errorf("status = %q, want %q", got.Status, tt.status)
			}
			if got.ReviewedBy != "alice" || got.ReviewedAt == nil {
				t.Errorf("review attribution not recorded: reviewedBy=%q reviewedAt=%v", got.ReviewedBy, got.ReviewedAt)
			}
			if got.Notes != "checked" {
				t.Errorf("notes = %q, want %q", got.Notes, "checked")
			}
		})
	}
}

func TestRegressionService_ReviewReclassify(t *testing.T) {
	repo := testutil.NewMockRegressionRepository()
	service := NewRegressionService(repo, testutil.NewTestLogger())

	id := seedRegression(t, repo, &regression.Regression{
		TestRunID: 1, TestName: "home", Viewport: "1280x720",
	})

	// No review state is terminal; a reviewer may reclassify.
	if err := service.Review(context.Background(), id, regression.StatusBugReported, "", "alice"); err != nil {
		t.Fatalf("first review: %v", err)
	}
	if err := service.Review(context.Background(), id, regression.StatusFalsePositive, "flaky render", "bob"); err != nil {
		t.Fatalf("second review: %v", err)
	}

	got, _ := service.GetByID(context.Background(), id)
	if got.Status != regression.StatusFalsePositive {
		t.Errorf("status = %q, want false_positive", got.Status)
	}
	if got.ReviewedBy != "bob" {
		t.Errorf("reviewedBy = %q, want last writer", got.ReviewedBy)
	}
}

func TestRegressionService_Stats(t *testing.T) {
	repo := testutil.NewMockRegressionRepository()
	service := NewRegressionService(repo, testutil.NewTestLogger())

	seedRegression(t, repo, &regression.Regression{TestRunID: 1, TestName: "a", Viewport: "v", IsSignificant: true})
	seedRegression(t, repo, &regression.Regression{TestRunID: 1, TestName: "b", Viewport: "v", IsSignificant: true, Status: regression.StatusApproved})
	seedRegression(t, repo, &regression.Regression{TestRunID: 1, TestName: "c", Viewport: "v"})
	seedRegression(t, repo, &regression.Regression{TestRunID: 2, TestName: "a", Viewport: "v", IsSignificant: true})

	stats, err := service.Stats(context.Background(), 1)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}

	if stats.Total != 3 {
		t.Errorf("Total = %d, want 3", stats.Total)
	}
	if stats.Significant != 2 {
		t.Errorf("Significant = %d, want 2", stats.Significant)
	}
	if stats.Pending != 2 {
		t.Errorf("Pending = %d, want 2", stats.Pending)
	}
	if stats.ByStatus[regression.StatusPending] != 2 || stats.ByStatus[regression.StatusApproved] != 1 {
		t.Errorf("ByStatus = %v", stats.ByStatus)
	}
}

func TestRegressionService_List_Filters(t *testing.T) {
	repo := testutil.NewMockRegressionRepository()
	service := NewRegressionService(repo, testutil.NewTestLogger())

	seedRegression(t, repo, &regression.Regression{TestRunID: 1, TestName: "a", Viewport: "v", IsSignificant: true})
	seedRegression(t, repo, &regression.Regression{TestRunID: 1, TestName: "b", Viewport: "v"})
	seedRegression(t, repo, &regression.Regression{TestRunID: 1, TestName: "c", Viewport: "v", IsSignificant: true, Status: regression.StatusApproved})

	significant := true
	regs, total, err := service.List(context.Background(), 1, regression.Filter{IsSignificant: &significant}, 10, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if total != 2 || len(regs) != 2 {
		t.Fatalf("significant filter: total=%d len=%d, want 2", total, len(regs))
	}

	regs, total, err = service.List(context.Background(), 1, regression.Filter{Status: regression.StatusApproved}, 10, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if total != 1 || regs[0].TestName != "c" {
		t.Fatalf("status filter: total=%d, want 1 approved record", total)
	}
}

func TestRegressionService_Trends(t *testing.T) {
	repo := testutil.NewMockRegressionRepository()
	service := NewRegressionService(repo, testutil.NewTestLogger())
	repo.SuiteByRun[1] = 10

	// Empty history yields an empty series, not an error.
	points, err := service.Trends(context.Background(), 10, 30)
	if err != nil {
		t.Fatalf("Trends() error = %v", err)
	}
	if len(points) != 0 {
		t.Errorf("len(points) = %d for empty history, want 0", len(points))
	}

	seedRegression(t, repo, &regression.Regression{TestRunID: 1, TestName: "a", Viewport: "v", IsSignificant: true})
	seedRegression(t, repo, &regression.Regression{TestRunID: 1, TestName: "b", Viewport: "v"})

	points, err = service.Trends(context.Background(), 10, 30)
	if err != nil {
		t.Fatalf("Trends() error = %v", err)
	}
	if len(points) != 1 {
		t.Fatalf("len(points) = %d, want 1", len(points))
	}
	if points[0].RegressionCount != 2 || points[0].SignificantCount != 1 {
		t.Errorf("point = %+v, want 2 regressions, 1 significant", points[0])
	}

	if _, err := service.Trends(context.Background(), 10, 0); err == nil {
		t.Error("Trends() error = nil for non-positive window")
	}
}
