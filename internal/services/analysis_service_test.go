package services

import (
	"context"
	"fmt"
	"image/color"
	"sort"
	"testing"
	"time"

	"github.com/snapdiff/snapdiff/internal/config"
	"github.com/snapdiff/snapdiff/internal/domain/regression"
	"github.com/snapdiff/snapdiff/internal/domain/run"
	"github.com/snapdiff/snapdiff/internal/domain/settings"
	"github.com/snapdiff/snapdiff/internal/testutil"
)

var (
	bgWhite = color.NRGBA{255, 255, 255, 255}
	fgRed   = color.NRGBA{255, 0, 0, 255}
)

type analysisFixture struct {
	runRepo        *testutil.MockRunRepository
	baselineRepo   *testutil.MockBaselineRepository
	settingsRepo   *testutil.MockSettingsRepository
	regressionRepo *testutil.MockRegressionRepository
	fetcher        *testutil.MemoryFetcher
	artifacts      *testutil.MemoryArtifactStore
	service        *AnalysisService
}

func newAnalysisFixture(t *testing.T, threshold float64) *analysisFixture {
	t.Helper()

	f := &analysisFixture{
		runRepo:        testutil.NewMockRunRepository(),
		baselineRepo:   testutil.NewMockBaselineRepository(),
		settingsRepo:   testutil.NewMockSettingsRepository(),
		regressionRepo: testutil.NewMockRegressionRepository(),
		fetcher:        testutil.NewMemoryFetcher(),
		artifacts:      testutil.NewMemoryArtifactStore(),
	}

	f.service = NewAnalysisService(
		f.runRepo, f.baselineRepo, f.settingsRepo, f.regressionRepo,
		f.fetcher, f.artifacts, nil,
		config.ComparisonConfig{
			DefaultThreshold:     threshold,
			ColorThreshold:       0.1,
			MaxConcurrentWorkers: 2,
		},
		testutil.NewTestLogger(),
	)

	return f
}

// addRun registers a run and its screenshots, one per triple, with blobs
// served from the in-memory fetcher.
func (f *analysisFixture) addRun(id, suiteID int64, status string, shots map[run.Triple][]byte) {
	now := time.Now()
	f.runRepo.Runs[id] = &run.TestRun{
		ID:        id,
		SuiteID:   suiteID,
		Status:    status,
		StartedAt: now,
		CreatedAt: now,
	}
	f.regressionRepo.SuiteByRun[id] = suiteID

	var triples []run.Triple
	for tr := range shots {
		triples = append(triples, tr)
	}
	sort.Slice(triples, func(i, j int) bool {
		a, b := triples[i], triples[j]
		if a.TestName != b.TestName {
			return a.TestName < b.TestName
		}
		return a.Viewport < b.Viewport
	})

	for _, tr := range triples {
		ref := fmt.Sprintf("mem://%s/%s/%s/run-%d", tr.TestName, tr.Viewport, tr.StepName, id)
		f.fetcher.Blobs[ref] = shots[tr]
		f.runRepo.Screenshots[id] = append(f.runRepo.Screenshots[id], &run.Screenshot{
			TestRunID:  id,
			TestName:   tr.TestName,
			Viewport:   tr.Viewport,
			StepName:   tr.StepName,
			Ref:        ref,
			CapturedAt: now,
		})
	}
}

func TestAnalysisService_NoBaseline(t *testing.T) {
	f := newAnalysisFixture(t, 0.05)
	f.addRun(1, 10, run.StatusCompleted, map[run.Triple][]byte{
		{TestName: "login", Viewport: "1280x720"}: testutil.SolidPNG(50, 50, bgWhite),
	})

	report, err := f.service.RunRegressionAnalysis(context.Background(), 1)
	if err != nil {
		t.Fatalf("RunRegressionAnalysis() error = %v", err)
	}

	if report.Success {
		t.Error("Success = true with no baseline, want false")
	}
	if report.Message == "" {
		t.Error("Message is empty; the no-baseline state must be explained")
	}
	if len(f.regressionRepo.Regressions) != 0 {
		t.Errorf("ledger has %d rows after no-baseline run, want 0", len(f.regressionRepo.Regressions))
	}
}

func TestAnalysisService_EndToEnd(t *testing.T) {
	f := newAnalysisFixture(t, 0.05)

	triple := run.Triple{TestName: "home", Viewport: "1280x720"}
	f.addRun(2, 10, run.StatusAnalyzed, map[run.Triple][]byte{
		triple: testutil.SolidPNG(100, 100, bgWhite),
	})
	f.addRun(1, 10, run.StatusCompleted, map[run.Triple][]byte{
		triple: testutil.PNGWithRect(100, 100, bgWhite, 5, 5, 10, 10, fgRed),
	})
	f.baselineRepo.Set(context.Background(), 10, 2, "known good")

	report, err := f.service.RunRegressionAnalysis(context.Background(), 1)
	if err != nil {
		t.Fatalf("RunRegressionAnalysis() error = %v", err)
	}

	if !report.Success {
		t.Fatalf("Success = false: %s", report.Message)
	}
	if report.TotalComparisons != 1 || report.RegressionsFound != 1 {
		t.Errorf("counts = (%d, %d), want (1, 1)", report.TotalComparisons, report.RegressionsFound)
	}
	if len(report.Details) != 1 {
		t.Fatalf("len(Details) = %d, want 1", len(report.Details))
	}

	d := report.Details[0]
	if d.PixelsDifferent != 100 {
		t.Errorf("PixelsDifferent = %d, want 100", d.PixelsDifferent)
	}
	if d.PercentageDifferent != 1.0 {
		t.Errorf("PercentageDifferent = %f, want 1.0", d.PercentageDifferent)
	}
	if d.IsSignificant {
		t.Error("IsSignificant = true at threshold 0.05, want false")
	}
	if report.SignificantRegressions != 0 {
		t.Errorf("SignificantRegressions = %d, want 0", report.SignificantRegressions)
	}
	if report.AverageDifference != 1.0 {
		t.Errorf("AverageDifference = %f, want 1.0", report.AverageDifference)
	}

	reg, err := f.regressionRepo.GetByID(context.Background(), d.RegressionID)
	if err != nil {
		t.Fatalf("regression %d not in ledger: %v", d.RegressionID, err)
	}
	if reg.Status != regression.StatusPending {
		t.Errorf("ledger status = %q, want pending", reg.Status)
	}
	if reg.DiffRef == "" {
		t.Error("ledger record has no diff artifact reference")
	}

	if f.runRepo.Runs[1].Status != run.StatusAnalyzed {
		t.Errorf("run status = %q, want analyzed", f.runRepo.Runs[1].Status)
	}

	// A lower suite threshold flips significance on the same pixels.
	low := 0.005
	f.settingsRepo.Settings[10] = &settings.SuiteSettings{SuiteID: 10, Threshold: &low}

	report, err = f.service.RunRegressionAnalysis(context.Background(), 1)
	if err != nil {
		t.Fatalf("RunRegressionAnalysis() rerun error = %v", err)
	}
	if report.SignificantRegressions != 1 {
		t.Errorf("SignificantRegressions = %d at threshold 0.005, want 1", report.SignificantRegressions)
	}
	if !report.Details[0].IsSignificant {
		t.Error("IsSignificant = false at threshold 0.005, want true")
	}

	// The rerun upserted, not duplicated.
	if len(f.regressionRepo.Regressions) != 1 {
		t.Errorf("ledger has %d rows after rerun, want 1", len(f.regressionRepo.Regressions))
	}
}

func TestAnalysisService_FailureIsolation(t *testing.T) {
	f := newAnalysisFixture(t, 0.05)

	good1 := run.Triple{TestName: "a_home", Viewport: "1280x720"}
	bad := run.Triple{TestName: "b_cart", Viewport: "1280x720"}
	good2 := run.Triple{TestName: "c_login", Viewport: "1280x720"}

	f.addRun(2, 10, run.StatusAnalyzed, map[run.Triple][]byte{
		good1: testutil.SolidPNG(40, 40, bgWhite),
		bad:   testutil.SolidPNG(40, 40, bgWhite),
		good2: testutil.SolidPNG(40, 40, bgWhite),
	})
	f.addRun(1, 10, run.StatusCompleted, map[run.Triple][]byte{
		good1: testutil.SolidPNG(40, 40, bgWhite),
		bad:   []byte("corrupt bytes, not a png"),
		good2: testutil.PNGWithRect(40, 40, bgWhite, 0, 0, 4, 4, fgRed),
	})
	f.baselineRepo.Set(context.Background(), 10, 2, "")

	report, err := f.service.RunRegressionAnalysis(context.Background(), 1)
	if err != nil {
		t.Fatalf("RunRegressionAnalysis() error = %v", err)
	}

	if !report.Success {
		t.Fatalf("Success = false: one bad pair must not abort the batch")
	}
	if report.FailedComparisons != 1 {
		t.Errorf("FailedComparisons = %d, want 1", report.FailedComparisons)
	}
	if report.RegressionsFound != 2 {
		t.Errorf("RegressionsFound = %d, want 2", report.RegressionsFound)
	}
	if report.TotalComparisons != 2 {
		t.Errorf("TotalComparisons = %d, want 2 (failed pair excluded)", report.TotalComparisons)
	}
	if len(f.regressionRepo.Regressions) != 2 {
		t.Errorf("ledger has %d rows, want 2", len(f.regressionRepo.Regressions))
	}

	// Details are sorted by test, viewport, step regardless of worker order.
	if report.Details[0].TestName != "a_home" || report.Details[1].TestName != "c_login" {
		t.Errorf("details out of order: %q, %q", report.Details[0].TestName, report.Details[1].TestName)
	}
}

func TestAnalysisService_SkipsUnmatchedTriples(t *testing.T) {
	f := newAnalysisFixture(t, 0.05)

	shared := run.Triple{TestName: "home", Viewport: "1280x720"}
	newOnly := run.Triple{TestName: "signup", Viewport: "1280x720"}

	f.addRun(2, 10, run.StatusAnalyzed, map[run.Triple][]byte{
		shared: testutil.SolidPNG(30, 30, bgWhite),
	})
	f.addRun(1, 10, run.StatusCompleted, map[run.Triple][]byte{
		shared:  testutil.SolidPNG(30, 30, bgWhite),
		newOnly: testutil.SolidPNG(30, 30, bgWhite),
	})
	f.baselineRepo.Set(context.Background(), 10, 2, "")

	report, err := f.service.RunRegressionAnalysis(context.Background(), 1)
	if err != nil {
		t.Fatalf("RunRegressionAnalysis() error = %v", err)
	}

	if report.SkippedTriples != 1 {
		t.Errorf("SkippedTriples = %d, want 1", report.SkippedTriples)
	}
	if report.TotalComparisons != 1 {
		t.Errorf("TotalComparisons = %d, want 1", report.TotalComparisons)
	}
}

func TestAnalysisService_IgnoreRegionsApplied(t *testing.T) {
	f := newAnalysisFixture(t, 0.05)

	triple := run.Triple{TestName: "home", Viewport: "1280x720"}
	f.addRun(2, 10, run.StatusAnalyzed, map[run.Triple][]byte{
		triple: testutil.SolidPNG(100, 100, bgWhite),
	})
	f.addRun(1, 10, run.StatusCompleted, map[run.Triple][]byte{
		triple: testutil.PNGWithRect(100, 100, bgWhite, 5, 5, 10, 10, fgRed),
	})
	f.baselineRepo.Set(context.Background(), 10, 2, "")
	f.settingsRepo.CreateIgnoreRegion(context.Background(), &settings.IgnoreRegion{
		SuiteID: 10, X: 5, Y: 5, Width: 10, Height: 10,
	})

	report, err := f.service.RunRegressionAnalysis(context.Background(), 1)
	if err != nil {
		t.Fatalf("RunRegressionAnalysis() error = %v", err)
	}

	if report.Details[0].PixelsDifferent != 0 {
		t.Errorf("PixelsDifferent = %d with full ignore region, want 0", report.Details[0].PixelsDifferent)
	}
}

func TestAnalysisService_RunNotFound(t *testing.T) {
	f := newAnalysisFixture(t, 0.05)

	if _, err := f.service.RunRegressionAnalysis(context.Background(), 99); err == nil {
		t.Fatal("RunRegressionAnalysis() error = nil for unknown run")
	}
}
