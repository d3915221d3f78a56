package services

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/snapdiff/snapdiff/internal/config"
	"github.com/snapdiff/snapdiff/internal/domain/baseline"
	"github.com/snapdiff/snapdiff/internal/domain/regression"
	"github.com/snapdiff/snapdiff/internal/domain/run"
	"github.com/snapdiff/snapdiff/internal/domain/settings"
	"github.com/snapdiff/snapdiff/internal/imaging"
	"github.com/snapdiff/snapdiff/internal/pkg/logger"
	"github.com/snapdiff/snapdiff/internal/pkg/metrics"
	"github.com/snapdiff/snapdiff/internal/storage"
)

// AnalysisService orchestrates batch regression analysis: it matches a run's
// screenshots against the suite baseline, compares each pair and records the
// outcomes in the regression ledger. One bad pair never aborts the batch.
type AnalysisService struct {
	runRepo        run.Repository
	baselineRepo   baseline.Repository
	settingsRepo   settings.Repository
	regressionRepo regression.Repository
	fetcher        storage.Fetcher
	artifacts      storage.ArtifactStore
	codec          imaging.Codec
	annotator      Annotator
	cfg            config.ComparisonConfig
	logger         *logger.Logger
}

// NewAnalysisService creates a new analysis service
func NewAnalysisService(
	runRepo run.Repository,
	baselineRepo baseline.Repository,
	settingsRepo settings.Repository,
	regressionRepo regression.Repository,
	fetcher storage.Fetcher,
	artifacts storage.ArtifactStore,
	annotator Annotator,
	cfg config.ComparisonConfig,
	log *logger.Logger,
) *AnalysisService {
	return &AnalysisService{
		runRepo:        runRepo,
		baselineRepo:   baselineRepo,
		settingsRepo:   settingsRepo,
		regressionRepo: regressionRepo,
		fetcher:        fetcher,
		artifacts:      artifacts,
		codec:          imaging.PNGCodec{},
		annotator:      annotator,
		cfg:            cfg,
		logger:         log,
	}
}

type screenshotPair struct {
	current  *run.Screenshot
	baseline *run.Screenshot
}

// RunRegressionAnalysis compares every matched (test, viewport, step) triple
// of the run against the suite baseline. A suite without a baseline yields
// success=false with a message and no ledger writes; that is an expected
// state, not an error.
func (s *AnalysisService) RunRegressionAnalysis(ctx context.Context, testRunID int64) (*RegressionReport, error) {
	start := time.Now()

	tr, err := s.runRepo.GetByID(ctx, testRunID)
	if err != nil {
		return nil, err
	}

	bl, err := s.baselineRepo.Get(ctx, tr.SuiteID)
	if err != nil {
		return nil, err
	}
	if !bl.IsSet() {
		metrics.RecordAnalysisRun("no_baseline", time.Since(start))
		return &RegressionReport{
			Success:   false,
			TestRunID: testRunID,
			Message:   fmt.Sprintf("suite %d has no baseline; set one before running analysis", tr.SuiteID),
			Details:   []RegressionDetail{},
		}, nil
	}
	baselineRunID := *bl.BaselineRunID

	currentShots, err := s.runRepo.ListScreenshots(ctx, testRunID)
	if err != nil {
		return nil, err
	}
	baselineShots, err := s.runRepo.ListScreenshots(ctx, baselineRunID)
	if err != nil {
		return nil, err
	}

	baselineByTriple := make(map[run.Triple]*run.Screenshot, len(baselineShots))
	for _, shot := range baselineShots {
		baselineByTriple[shot.Key()] = shot
	}

	var pairs []screenshotPair
	skipped := 0
	for _, shot := range currentShots {
		base, ok := baselineByTriple[shot.Key()]
		if !ok {
			// Triple absent from the baseline run: counted, not failed.
			skipped++
			continue
		}
		pairs = append(pairs, screenshotPair{current: shot, baseline: base})
	}

	suiteSettings, err := s.settingsRepo.GetSettings(ctx, tr.SuiteID)
	if err != nil {
		return nil, err
	}
	threshold := s.cfg.DefaultThreshold
	if suiteSettings.Threshold != nil {
		threshold = *suiteSettings.Threshold
	}

	report := &RegressionReport{
		Success:        true,
		TestRunID:      testRunID,
		BaselineRunID:  baselineRunID,
		SkippedTriples: skipped,
		Details:        []RegressionDetail{},
	}

	var mu sync.Mutex
	workers := s.cfg.MaxConcurrentWorkers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, pair := range pairs {
		pair := pair
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				// Cancellation ends the batch; rows already written stay.
				return err
			}

			detail, err := s.comparePair(gctx, tr, baselineRunID, pair, threshold, suiteSettings)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.FailedComparisons++
				s.logger.WithError(err).WithFields(map[string]interface{}{
					"test_run_id": testRunID,
					"test_name":   pair.current.TestName,
					"viewport":    pair.current.Viewport,
					"step_name":   pair.current.StepName,
				}).Error("Comparison failed; continuing batch")
				return nil
			}
			report.Details = append(report.Details, *detail)
			return nil
		})
	}

	cancelled := false
	if err := g.Wait(); err != nil {
		cancelled = true
	}

	// Deterministic report order regardless of worker scheduling.
	sort.Slice(report.Details, func(i, j int) bool {
		a, b := report.Details[i], report.Details[j]
		if a.TestName != b.TestName {
			return a.TestName < b.TestName
		}
		if a.Viewport != b.Viewport {
			return a.Viewport < b.Viewport
		}
		return a.StepName < b.StepName
	})

	// Failed pairs are isolated, not counted as comparisons.
	report.TotalComparisons = len(report.Details)
	report.RegressionsFound = len(report.Details)
	var sum float64
	for _, d := range report.Details {
		sum += d.PercentageDifferent
		if d.IsSignificant {
			report.SignificantRegressions++
		}
	}
	if len(report.Details) > 0 {
		report.AverageDifference = sum / float64(len(report.Details))
	}

	switch {
	case cancelled:
		report.Message = "analysis cancelled; results recorded so far are valid"
		metrics.RecordAnalysisRun("cancelled", time.Since(start))
	default:
		metrics.RecordAnalysisRun("success", time.Since(start))
		metrics.SetSignificantRegressions(float64(report.SignificantRegressions))
		if tr.Status == run.StatusCompleted {
			if err := s.runRepo.UpdateStatus(ctx, testRunID, run.StatusAnalyzed); err != nil {
				s.logger.WithError(err).Warn("Failed to mark run analyzed")
			}
		}
	}

	s.logger.WithFields(map[string]interface{}{
		"test_run_id":  testRunID,
		"baseline_run": baselineRunID,
		"comparisons":  report.TotalComparisons,
		"significant":  report.SignificantRegressions,
		"skipped":      report.SkippedTriples,
		"failed":       report.FailedComparisons,
		"duration":     time.Since(start).String(),
	}).Info("Regression analysis finished")

	return report, nil
}

func (s *AnalysisService) comparePair(ctx context.Context, tr *run.TestRun, baselineRunID int64, pair screenshotPair, threshold float64, suiteSettings *settings.SuiteSettings) (*RegressionDetail, error) {
	compareStart := time.Now()

	baselineData, err := s.fetcher.Fetch(ctx, pair.baseline.Ref)
	if err != nil {
		metrics.RecordFetch("error")
		return nil, err
	}
	metrics.RecordFetch("ok")

	currentData, err := s.fetcher.Fetch(ctx, pair.current.Ref)
	if err != nil {
		metrics.RecordFetch("error")
		return nil, err
	}
	metrics.RecordFetch("ok")

	baselineImg, err := s.codec.Decode(baselineData)
	if err != nil {
		return nil, err
	}
	currentImg, err := s.codec.Decode(currentData)
	if err != nil {
		return nil, err
	}

	regions, err := s.settingsRepo.ListIgnoreRegions(ctx, tr.SuiteID, pair.current.TestName, pair.current.Viewport)
	if err != nil {
		return nil, err
	}
	ignore := make([]imaging.Region, 0, len(regions))
	for _, r := range regions {
		ignore = append(ignore, imaging.Region{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height})
	}

	result, err := imaging.Compare(baselineImg, currentImg, imaging.Options{
		Threshold:           threshold,
		IncludeAntialiasing: suiteSettings.IncludeAntialiasing,
		IgnoreRegions:       ignore,
		ColorThreshold:      s.cfg.ColorThreshold,
	})
	if err != nil {
		metrics.RecordComparison("error", time.Since(compareStart))
		return nil, err
	}
	outcome := "clean"
	if result.IsSignificant {
		outcome = "significant"
	}
	metrics.RecordComparison(outcome, time.Since(compareStart))

	diffRef, err := s.storeDiff(ctx, tr.ID, pair.current, result)
	if err != nil {
		// The comparison stands even when the artifact write fails.
		s.logger.WithError(err).Warn("Failed to store diff artifact")
		diffRef = ""
	}

	reg := &regression.Regression{
		TestRunID:           tr.ID,
		BaselineRunID:       &baselineRunID,
		TestName:            pair.current.TestName,
		Viewport:            pair.current.Viewport,
		StepName:            pair.current.StepName,
		PixelsDifferent:     int64(result.PixelsDifferent),
		PercentageDifferent: result.PercentageDifferent,
		Width:               result.Width,
		Height:              result.Height,
		Threshold:           threshold,
		IsSignificant:       result.IsSignificant,
		DiffRef:             diffRef,
		Status:              regression.StatusPending,
	}

	if result.IsSignificant && s.annotator != nil && s.annotator.Enabled() {
		if note, err := s.annotator.Annotate(ctx, reg); err != nil {
			s.logger.WithError(err).Warn("Failed to annotate regression")
		} else {
			reg.Annotation = note
		}
	}

	id, err := s.regressionRepo.Upsert(ctx, reg)
	if err != nil {
		return nil, err
	}

	return &RegressionDetail{
		RegressionID:        id,
		TestName:            pair.current.TestName,
		Viewport:            pair.current.Viewport,
		StepName:            pair.current.StepName,
		PixelsDifferent:     reg.PixelsDifferent,
		PercentageDifferent: reg.PercentageDifferent,
		Width:               reg.Width,
		Height:              reg.Height,
		Threshold:           threshold,
		IsSignificant:       reg.IsSignificant,
		DiffRef:             diffRef,
	}, nil
}

func (s *AnalysisService) storeDiff(ctx context.Context, runID int64, shot *run.Screenshot, result *imaging.Result) (string, error) {
	data, err := s.codec.Encode(result.DiffImage)
	if err != nil {
		return "", err
	}

	name := fmt.Sprintf("diffs/run-%d/%s.png", runID,
		sanitizeName(shot.TestName+"-"+shot.Viewport+"-"+shot.StepName))
	return s.artifacts.Put(ctx, name, data)
}

func sanitizeName(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, strings.TrimSuffix(s, "-"))
}
