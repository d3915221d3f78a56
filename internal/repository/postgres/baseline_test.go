package postgres

import (
	"context"
	"testing"

	"github.com/snapdiff/snapdiff/internal/testutil"
)

func TestBaselineRepository_GetUnset(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer testutil.CleanupDB(db)

	repo := NewBaselineRepository(db)

	b, err := repo.Get(context.Background(), 7)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if b.SuiteID != 7 {
		t.Errorf("SuiteID = %d, want 7", b.SuiteID)
	}
	if b.IsSet() {
		t.Error("IsSet() = true for a suite without a baseline")
	}
}

func TestBaselineRepository_SetAndReplace(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer testutil.CleanupDB(db)

	repo := NewBaselineRepository(db)
	ctx := context.Background()

	runA := seedRun(t, db, 1, "completed")
	runB := seedRun(t, db, 1, "completed")

	if err := repo.Set(ctx, 1, runA, "first stable build"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	b, err := repo.Get(ctx, 1)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !b.IsSet() || *b.BaselineRunID != runA {
		t.Fatalf("Get() baseline = %+v, want run %d", b, runA)
	}
	if b.Notes != "first stable build" {
		t.Errorf("Notes = %q, want %q", b.Notes, "first stable build")
	}

	// Replacing keeps a single row per suite.
	if err := repo.Set(ctx, 1, runB, ""); err != nil {
		t.Fatalf("Set() replace error = %v", err)
	}

	b, err = repo.Get(ctx, 1)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if *b.BaselineRunID != runB {
		t.Errorf("BaselineRunID = %d, want %d", *b.BaselineRunID, runB)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM baselines WHERE suite_id = 1").Scan(&count); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != 1 {
		t.Errorf("baseline rows = %d, want 1", count)
	}
}

func TestBaselineRepository_Clear(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer testutil.CleanupDB(db)

	repo := NewBaselineRepository(db)
	ctx := context.Background()

	runID := seedRun(t, db, 1, "completed")
	if err := repo.Set(ctx, 1, runID, ""); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	if err := repo.Clear(ctx, 1); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}

	b, err := repo.Get(ctx, 1)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if b.IsSet() {
		t.Error("IsSet() = true after Clear()")
	}

	// Clearing an unset baseline is a no-op.
	if err := repo.Clear(ctx, 99); err != nil {
		t.Errorf("Clear() on unset suite error = %v", err)
	}
}
