package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/snapdiff/snapdiff/internal/domain/run"
	"github.com/snapdiff/snapdiff/internal/testutil"
)

func TestRunRepository_ListPendingAnalysis(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer testutil.CleanupDB(db)

	repo := NewRunRepository(db)
	ctx := context.Background()

	first := seedRun(t, db, 1, run.StatusCompleted)
	seedRun(t, db, 1, run.StatusRunning)
	seedRun(t, db, 1, run.StatusAnalyzed)
	second := seedRun(t, db, 2, run.StatusCompleted)

	runs, err := repo.ListPendingAnalysis(ctx, 10)
	if err != nil {
		t.Fatalf("ListPendingAnalysis() error = %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("ListPendingAnalysis() = %d runs, want 2", len(runs))
	}
	if runs[0].ID != first || runs[1].ID != second {
		t.Errorf("ListPendingAnalysis() order = [%d %d], want [%d %d]", runs[0].ID, runs[1].ID, first, second)
	}

	runs, err = repo.ListPendingAnalysis(ctx, 1)
	if err != nil {
		t.Fatalf("ListPendingAnalysis() error = %v", err)
	}
	if len(runs) != 1 || runs[0].ID != first {
		t.Errorf("ListPendingAnalysis(limit=1) = %v, want only run %d", runs, first)
	}
}

func TestRunRepository_UpdateStatus(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer testutil.CleanupDB(db)

	repo := NewRunRepository(db)
	ctx := context.Background()

	id := seedRun(t, db, 1, run.StatusCompleted)

	if err := repo.UpdateStatus(ctx, id, run.StatusAnalyzed); err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}

	tr, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if tr.Status != run.StatusAnalyzed {
		t.Errorf("Status = %q, want %q", tr.Status, run.StatusAnalyzed)
	}

	if err := repo.UpdateStatus(ctx, 999, run.StatusAnalyzed); err == nil {
		t.Error("UpdateStatus() on missing run expected error")
	}
}

func TestRunRepository_ListScreenshots(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer testutil.CleanupDB(db)

	repo := NewRunRepository(db)
	ctx := context.Background()

	id := seedRun(t, db, 1, run.StatusCompleted)
	now := time.Now().UTC().Format(time.RFC3339)

	shots := []struct{ test, viewport, step string }{
		{"b-test", "800x600", ""},
		{"a-test", "800x600", "step-2"},
		{"a-test", "800x600", "step-1"},
	}
	for _, s := range shots {
		_, err := db.Exec(
			`INSERT INTO screenshots (test_run_id, test_name, viewport, step_name, ref, captured_at) VALUES (?, ?, ?, ?, ?, ?)`,
			id, s.test, s.viewport, s.step, "file:///tmp/"+s.test+".png", now)
		if err != nil {
			t.Fatalf("Failed to seed screenshot: %v", err)
		}
	}

	got, err := repo.ListScreenshots(ctx, id)
	if err != nil {
		t.Fatalf("ListScreenshots() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("ListScreenshots() = %d shots, want 3", len(got))
	}
	if got[0].TestName != "a-test" || got[0].StepName != "step-1" {
		t.Errorf("first shot = %s/%s, want a-test/step-1 (ordered by key)", got[0].TestName, got[0].StepName)
	}
}
