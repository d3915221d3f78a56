package services

import (
	"context"
	"testing"
	"time"

	"github.com/snapdiff/snapdiff/internal/domain/run"
	"github.com/snapdiff/snapdiff/internal/testutil"
)

func TestBaselineService_Set(t *testing.T) {
	runRepo := testutil.NewMockRunRepository()
	now := time.Now()
	runRepo.Runs[5] = &run.TestRun{ID: 5, SuiteID: 10, Status: run.StatusCompleted, StartedAt: now, CreatedAt: now}
	runRepo.Runs[6] = &run.TestRun{ID: 6, SuiteID: 10, Status: run.StatusCompleted, StartedAt: now, CreatedAt: now}
	runRepo.Runs[7] = &run.TestRun{ID: 7, SuiteID: 99, Status: run.StatusCompleted, StartedAt: now, CreatedAt: now}
	runRepo.Screenshots[5] = []*run.Screenshot{
		{TestRunID: 5, TestName: "home", Viewport: "1280x720", Ref: "file:///shots/home.png"},
	}
	// Run 6 has no screenshots.

	tests := []struct {
		name    string
		suiteID int64
		runID   int64
		wantErr bool
	}{
		{name: "valid run", suiteID: 10, runID: 5},
		{name: "run not found", suiteID: 10, runID: 42, wantErr: true},
		{name: "run belongs to another suite", suiteID: 10, runID: 7, wantErr: true},
		{name: "run without screenshots", suiteID: 10, runID: 6, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := testutil.NewMockBaselineRepository()
			service := NewBaselineService(repo, runRepo, testutil.NewTestLogger())

			err := service.Set(context.Background(), tt.suiteID, tt.runID, "release 1.4")
			if (err != nil) != tt.wantErr {
				t.Fatalf("Set() error = %v, wantErr %v", err, tt.wantErr)
			}

			got, _ := service.Get(context.Background(), tt.suiteID)
			if tt.wantErr {
				if got.IsSet() {
					t.Error("baseline was written despite validation failure")
				}
				return
			}
			if !got.IsSet() || *got.BaselineRunID != tt.runID {
				t.Errorf("baseline = %+v, want run %d", got, tt.runID)
			}
			if got.Notes != "release 1.4" {
				t.Errorf("notes = %q", got.Notes)
			}
			if got.SetAt == nil {
				t.Error("SetAt not recorded")
			}
		})
	}
}

func TestBaselineService_GetUnset(t *testing.T) {
	service := NewBaselineService(testutil.NewMockBaselineRepository(), testutil.NewMockRunRepository(), testutil.NewTestLogger())

	// An unset baseline is a first-class state, not an error.
	got, err := service.Get(context.Background(), 10)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.IsSet() {
		t.Error("IsSet() = true for a suite with no baseline")
	}
}

func TestBaselineService_Clear(t *testing.T) {
	runRepo := testutil.NewMockRunRepository()
	now := time.Now()
	runRepo.Runs[5] = &run.TestRun{ID: 5, SuiteID: 10, Status: run.StatusCompleted, StartedAt: now, CreatedAt: now}
	runRepo.Screenshots[5] = []*run.Screenshot{
		{TestRunID: 5, TestName: "home", Viewport: "1280x720", Ref: "file:///shots/home.png"},
	}

	repo := testutil.NewMockBaselineRepository()
	service := NewBaselineService(repo, runRepo, testutil.NewTestLogger())

	if err := service.Set(context.Background(), 10, 5, ""); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := service.Clear(context.Background(), 10); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}

	got, _ := service.Get(context.Background(), 10)
	if got.IsSet() {
		t.Error("baseline still set after Clear()")
	}
}
