package postgres

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/snapdiff/snapdiff/internal/domain/regression"
	"github.com/snapdiff/snapdiff/internal/testutil"
)

func seedRun(t *testing.T, db *sql.DB, suiteID int64, status string) int64 {
	t.Helper()
	now := time.Now().UTC().Format(time.RFC3339)
	result, err := db.Exec(
		`INSERT INTO test_runs (suite_id, name, status, started_at, created_at) VALUES (?, ?, ?, ?, ?)`,
		suiteID, "nightly", status, now, now)
	if err != nil {
		t.Fatalf("Failed to seed test run: %v", err)
	}
	id, _ := result.LastInsertId()
	return id
}

func TestRegressionRepository_Upsert(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer testutil.CleanupDB(db)

	repo := NewRegressionRepository(db)
	runID := seedRun(t, db, 1, "completed")
	ctx := context.Background()

	reg := &regression.Regression{
		TestRunID:           runID,
		TestName:            "checkout",
		Viewport:            "1920x1080",
		StepName:            "cart",
		PixelsDifferent:     100,
		PercentageDifferent: 1.0,
		Width:               100,
		Height:              100,
		Threshold:           0.005,
		IsSignificant:       true,
	}

	id, err := repo.Upsert(ctx, reg)
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if id == 0 {
		t.Fatal("Upsert() did not return an ID")
	}

	// Review the record, then upsert the same triple again.
	if err := repo.UpdateReview(ctx, id, regression.StatusApproved, "expected change", "alice", time.Now()); err != nil {
		t.Fatalf("UpdateReview() error = %v", err)
	}

	rerun := &regression.Regression{
		TestRunID:           runID,
		TestName:            "checkout",
		Viewport:            "1920x1080",
		StepName:            "cart",
		PixelsDifferent:     250,
		PercentageDifferent: 2.5,
		Width:               100,
		Height:              100,
		Threshold:           0.005,
		IsSignificant:       true,
	}

	id2, err := repo.Upsert(ctx, rerun)
	if err != nil {
		t.Fatalf("Upsert() rerun error = %v", err)
	}
	if id2 != id {
		t.Errorf("Upsert() rerun ID = %d, want %d (same record)", id2, id)
	}

	got, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.PixelsDifferent != 250 {
		t.Errorf("PixelsDifferent = %d, want 250 (comparison fields refreshed)", got.PixelsDifferent)
	}
	if got.Status != regression.StatusApproved {
		t.Errorf("Status = %q, want %q (review state preserved)", got.Status, regression.StatusApproved)
	}
	if got.ReviewedBy != "alice" {
		t.Errorf("ReviewedBy = %q, want %q", got.ReviewedBy, "alice")
	}
	if got.Notes != "expected change" {
		t.Errorf("Notes = %q, want %q", got.Notes, "expected change")
	}
}

func TestRegressionRepository_GetByID_NotFound(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer testutil.CleanupDB(db)

	repo := NewRegressionRepository(db)

	if _, err := repo.GetByID(context.Background(), 999); err == nil {
		t.Error("GetByID() expected error for missing regression")
	}
}

func TestRegressionRepository_ListWithPagination(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer testutil.CleanupDB(db)

	repo := NewRegressionRepository(db)
	runID := seedRun(t, db, 1, "completed")
	ctx := context.Background()

	seed := []struct {
		test        string
		significant bool
		status      string
	}{
		{"a-test", true, ""},
		{"b-test", false, ""},
		{"c-test", true, ""},
	}
	var ids []int64
	for _, s := range seed {
		id, err := repo.Upsert(ctx, &regression.Regression{
			TestRunID:     runID,
			TestName:      s.test,
			Viewport:      "800x600",
			IsSignificant: s.significant,
		})
		if err != nil {
			t.Fatalf("Upsert(%s) error = %v", s.test, err)
		}
		ids = append(ids, id)
	}
	if err := repo.UpdateReview(ctx, ids[0], regression.StatusApproved, "", "bob", time.Now()); err != nil {
		t.Fatalf("UpdateReview() error = %v", err)
	}

	significant := true
	tests := []struct {
		name      string
		filter    regression.Filter
		wantTotal int64
		wantFirst string
	}{
		{
			name:      "no filter",
			filter:    regression.Filter{},
			wantTotal: 3,
			wantFirst: "a-test",
		},
		{
			name:      "by status",
			filter:    regression.Filter{Status: regression.StatusApproved},
			wantTotal: 1,
			wantFirst: "a-test",
		},
		{
			name:      "by significance",
			filter:    regression.Filter{IsSignificant: &significant},
			wantTotal: 2,
			wantFirst: "a-test",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			regs, total, err := repo.ListWithPagination(ctx, runID, tt.filter, 10, 0)
			if err != nil {
				t.Fatalf("ListWithPagination() error = %v", err)
			}
			if total != tt.wantTotal {
				t.Errorf("total = %d, want %d", total, tt.wantTotal)
			}
			if len(regs) == 0 || regs[0].TestName != tt.wantFirst {
				t.Errorf("first result = %v, want %s", regs, tt.wantFirst)
			}
		})
	}

	// Pagination window.
	regs, total, err := repo.ListWithPagination(ctx, runID, regression.Filter{}, 2, 2)
	if err != nil {
		t.Fatalf("ListWithPagination() error = %v", err)
	}
	if total != 3 {
		t.Errorf("total = %d, want 3", total)
	}
	if len(regs) != 1 || regs[0].TestName != "c-test" {
		t.Errorf("page 2 = %d rows, want [c-test]", len(regs))
	}
}

func TestRegressionRepository_Stats(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer testutil.CleanupDB(db)

	repo := NewRegressionRepository(db)
	runID := seedRun(t, db, 1, "completed")
	ctx := context.Background()

	id1, _ := repo.Upsert(ctx, &regression.Regression{TestRunID: runID, TestName: "a", Viewport: "v", IsSignificant: true})
	repo.Upsert(ctx, &regression.Regression{TestRunID: runID, TestName: "b", Viewport: "v", IsSignificant: true})
	repo.Upsert(ctx, &regression.Regression{TestRunID: runID, TestName: "c", Viewport: "v"})
	repo.UpdateReview(ctx, id1, regression.StatusBugReported, "", "carol", time.Now())

	stats, err := repo.Stats(ctx, runID)
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
	if stats.ByStatus[regression.StatusPending] != 2 {
		t.Errorf("ByStatus[pending] = %d, want 2", stats.ByStatus[regression.StatusPending])
	}
	if stats.ByStatus[regression.StatusBugReported] != 1 {
		t.Errorf("ByStatus[bug_reported] = %d, want 1", stats.ByStatus[regression.StatusBugReported])
	}
}

func TestRegressionRepository_StoresUTCTimestamps(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer testutil.CleanupDB(db)

	repo := NewRegressionRepository(db)
	runID := seedRun(t, db, 1, "completed")
	ctx := context.Background()

	id, err := repo.Upsert(ctx, &regression.Regression{TestRunID: runID, TestName: "a", Viewport: "v"})
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	loc := time.FixedZone("IST", 5*3600+1800)
	if err := repo.UpdateReview(ctx, id, regression.StatusApproved, "", "dana", time.Now().In(loc)); err != nil {
		t.Fatalf("UpdateReview() error = %v", err)
	}

	// Trends orders created_at strings lexicographically; a local-offset
	// suffix would break that, so every stored timestamp must end in Z.
	var createdAt, reviewedAt string
	err = db.QueryRow(`SELECT created_at, reviewed_at FROM regressions WHERE id = ?`, id).Scan(&createdAt, &reviewedAt)
	if err != nil {
		t.Fatalf("Failed to read stored timestamps: %v", err)
	}
	if !strings.HasSuffix(createdAt, "Z") {
		t.Errorf("created_at = %q, want UTC (Z suffix)", createdAt)
	}
	if !strings.HasSuffix(reviewedAt, "Z") {
		t.Errorf("reviewed_at = %q, want UTC (Z suffix)", reviewedAt)
	}
}

func TestRegressionRepository_Trends(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer testutil.CleanupDB(db)

	repo := NewRegressionRepository(db)
	ctx := context.Background()

	runA := seedRun(t, db, 1, "analyzed")
	runB := seedRun(t, db, 1, "analyzed")
	runOther := seedRun(t, db, 2, "analyzed")

	// Seed with explicit dates so the series spans multiple days.
	rows := []struct {
		runID       int64
		test        string
		significant bool
		createdAt   string
	}{
		{runA, "a", true, "2026-08-20T10:00:00Z"},
		{runA, "b", false, "2026-08-20T10:05:00Z"},
		{runB, "a", true, "2026-08-22T09:00:00Z"},
		{runOther, "a", true, "2026-08-21T09:00:00Z"},
		{runA, "old", true, "2026-07-01T00:00:00Z"},
	}
	for _, r := range rows {
		_, err := db.Exec(
			`INSERT INTO regressions (test_run_id, test_name, viewport, step_name, is_significant, status, created_at)
			VALUES (?, ?, ?, '', ?, 'pending', ?)`,
			r.runID, r.test, "v", r.significant, r.createdAt)
		if err != nil {
			t.Fatalf("Failed to seed regression: %v", err)
		}
	}

	since, _ := time.Parse(time.RFC3339, "2026-08-01T00:00:00Z")
	points, err := repo.Trends(ctx, 1, since)
	if err != nil {
		t.Fatalf("Trends() error = %v", err)
	}

	if len(points) != 2 {
		t.Fatalf("Trends() returned %d points, want 2", len(points))
	}
	if points[0].Date != "2026-08-20" || points[0].RegressionCount != 2 || points[0].SignificantCount != 1 {
		t.Errorf("points[0] = %+v, want 2026-08-20 count=2 significant=1", points[0])
	}
	if points[1].Date != "2026-08-22" || points[1].RegressionCount != 1 || points[1].SignificantCount != 1 {
		t.Errorf("points[1] = %+v, want 2026-08-22 count=1 significant=1", points[1])
	}
}
