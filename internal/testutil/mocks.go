package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/snapdiff/snapdiff/internal/domain/baseline"
	"github.com/snapdiff/snapdiff/internal/domain/regression"
	"github.com/snapdiff/snapdiff/internal/domain/run"
	"github.com/snapdiff/snapdiff/internal/domain/settings"
	"github.com/snapdiff/snapdiff/internal/pkg/errors"
)

// MockRunRepository is a mock implementation of run.Repository
type MockRunRepository struct {
	Runs        map[int64]*run.TestRun
	Screenshots map[int64][]*run.Screenshot
	GetError    error
}

func NewMockRunRepository() *MockRunRepository {
	return &MockRunRepository{
		Runs:        make(map[int64]*run.TestRun),
		Screenshots: make(map[int64][]*run.Screenshot),
	}
}

func (m *MockRunRepository) GetByID(ctx context.Context, id int64) (*run.TestRun, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	tr, ok := m.Runs[id]
	if !ok {
		return nil, errors.NotFound("Test run")
	}
	return tr, nil
}

func (m *MockRunRepository) ListScreenshots(ctx context.Context, testRunID int64) ([]*run.Screenshot, error) {
	return m.Screenshots[testRunID], nil
}

func (m *MockRunRepository) ListPendingAnalysis(ctx context.Context, limit int) ([]*run.TestRun, error) {
	var runs []*run.TestRun
	for _, tr := range m.Runs {
		if tr.Status == run.StatusCompleted {
			runs = append(runs, tr)
		}
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].ID < runs[j].ID })
	if len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

func (m *MockRunRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	tr, ok := m.Runs[id]
	if !ok {
		return errors.NotFound("Test run")
	}
	tr.Status = status
	return nil
}

// MockBaselineRepository is a mock implementation of baseline.Repository
type MockBaselineRepository struct {
	Baselines map[int64]*baseline.Baseline
}

func NewMockBaselineRepository() *MockBaselineRepository {
	return &MockBaselineRepository{
		Baselines: make(map[int64]*baseline.Baseline),
	}
}

func (m *MockBaselineRepository) Get(ctx context.Context, suiteID int64) (*baseline.Baseline, error) {
	if b, ok := m.Baselines[suiteID]; ok {
		return b, nil
	}
	return &baseline.Baseline{SuiteID: suiteID}, nil
}

func (m *MockBaselineRepository) Set(ctx context.Context, suiteID, runID int64, notes string) error {
	now := time.Now()
	m.Baselines[suiteID] = &baseline.Baseline{
		SuiteID:       suiteID,
		BaselineRunID: &runID,
		SetAt:         &now,
		Notes:         notes,
	}
	return nil
}

func (m *MockBaselineRepository) Clear(ctx context.Context, suiteID int64) error {
	delete(m.Baselines, suiteID)
	return nil
}

// MockSettingsRepository is a mock implementation of settings.Repository
type MockSettingsRepository struct {
	Settings map[int64]*settings.SuiteSettings
	Regions  []*settings.IgnoreRegion
	NextID   int64
}

func NewMockSettingsRepository() *MockSettingsRepository {
	return &MockSettingsRepository{
		Settings: make(map[int64]*settings.SuiteSettings),
		NextID:   1,
	}
}

func (m *MockSettingsRepository) GetSettings(ctx context.Context, suiteID int64) (*settings.SuiteSettings, error) {
	if s, ok := m.Settings[suiteID]; ok {
		return s, nil
	}
	return &settings.SuiteSettings{SuiteID: suiteID}, nil
}

func (m *MockSettingsRepository) UpsertSettings(ctx context.Context, s *settings.SuiteSettings) error {
	m.Settings[s.SuiteID] = s
	return nil
}

func (m *MockSettingsRepository) ListIgnoreRegions(ctx context.Context, suiteID int64, testName, viewport string) ([]*settings.IgnoreRegion, error) {
	var out []*settings.IgnoreRegion
	for _, r := range m.Regions {
		if r.SuiteID != suiteID {
			continue
		}
		if r.TestName != "" && r.TestName != testName {
			continue
		}
		if r.Viewport != "" && r.Viewport != viewport {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (m *MockSettingsRepository) ListAllIgnoreRegions(ctx context.Context, suiteID int64) ([]*settings.IgnoreRegion, error) {
	var out []*settings.IgnoreRegion
	for _, r := range m.Regions {
		if r.SuiteID == suiteID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *MockSettingsRepository) CreateIgnoreRegion(ctx context.Context, r *settings.IgnoreRegion) (int64, error) {
	r.ID = m.NextID
	m.NextID++
	r.CreatedAt = time.Now()
	m.Regions = append(m.Regions, r)
	return r.ID, nil
}

func (m *MockSettingsRepository) DeleteIgnoreRegion(ctx context.Context, suiteID, id int64) error {
	for i, r := range m.Regions {
		if r.SuiteID == suiteID && r.ID == id {
			m.Regions = append(m.Regions[:i], m.Regions[i+1:]...)
			return nil
		}
	}
	return errors.NotFound("Ignore region")
}

// MockRegressionRepository is a mock implementation of regression.Repository.
// It is safe for concurrent use because batch analysis upserts from parallel
// workers.
type MockRegressionRepository struct {
	mu          sync.Mutex
	Regressions map[int64]*regression.Regression
	byKey       map[string]int64
	NextID      int64
	UpsertError error
	SuiteByRun  map[int64]int64
}

func NewMockRegressionRepository() *MockRegressionRepository {
	return &MockRegressionRepository{
		Regressions: make(map[int64]*regression.Regression),
		byKey:       make(map[string]int64),
		NextID:      1,
		SuiteByRun:  make(map[int64]int64),
	}
}

func regressionKey(r *regression.Regression) string {
	return fmt.Sprintf("%d|%s|%s|%s", r.TestRunID, r.TestName, r.Viewport, r.StepName)
}

func (m *MockRegressionRepository) Create(ctx context.Context, r *regression.Regression) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	clone := *r
	clone.ID = m.NextID
	clone.CreatedAt = time.Now()
	m.NextID++
	m.Regressions[clone.ID] = &clone
	m.byKey[regressionKey(&clone)] = clone.ID
	return clone.ID, nil
}

func (m *MockRegressionRepository) Upsert(ctx context.Context, r *regression.Regression) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.UpsertError != nil {
		return 0, m.UpsertError
	}

	key := regressionKey(r)
	if id, ok := m.byKey[key]; ok {
		existing := m.Regressions[id]
		existing.BaselineRunID = r.BaselineRunID
		existing.PixelsDifferent = r.PixelsDifferent
		existing.PercentageDifferent = r.PercentageDifferent
		existing.Width = r.Width
		existing.Height = r.Height
		existing.Threshold = r.Threshold
		existing.IsSignificant = r.IsSignificant
		existing.DiffRef = r.DiffRef
		existing.Annotation = r.Annotation
		existing.UpdatedAt = time.Now()
		r.ID = id
		return id, nil
	}

	clone := *r
	clone.ID = m.NextID
	clone.CreatedAt = time.Now()
	m.NextID++
	m.Regressions[clone.ID] = &clone
	m.byKey[key] = clone.ID
	r.ID = clone.ID
	return clone.ID, nil
}

func (m *MockRegressionRepository) GetByID(ctx context.Context, id int64) (*regression.Regression, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.Regressions[id]
	if !ok {
		return nil, errors.NotFound("Regression")
	}
	clone := *r
	return &clone, nil
}

func (m *MockRegressionRepository) List(ctx context.Context, testRunID int64, filter regression.Filter) ([]*regression.Regression, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.filtered(testRunID, filter), nil
}

func (m *MockRegressionRepository) ListWithPagination(ctx context.Context, testRunID int64, filter regression.Filter, limit, offset int) ([]*regression.Regression, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	all := m.filtered(testRunID, filter)
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *MockRegressionRepository) filtered(testRunID int64, filter regression.Filter) []*regression.Regression {
	var out []*regression.Regression
	for _, r := range m.Regressions {
		if r.TestRunID != testRunID {
			continue
		}
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		if filter.IsSignificant != nil && r.IsSignificant != *filter.IsSignificant {
			continue
		}
		clone := *r
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.TestName != b.TestName {
			return a.TestName < b.TestName
		}
		if a.Viewport != b.Viewport {
			return a.Viewport < b.Viewport
		}
		return a.StepName < b.StepName
	})
	return out
}

func (m *MockRegressionRepository) UpdateReview(ctx context.Context, id int64, status, notes, reviewedBy string, reviewedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.Regressions[id]
	if !ok {
		return errors.NotFound("Regression")
	}
	r.Status = status
	r.Notes = notes
	r.ReviewedBy = reviewedBy
	r.ReviewedAt = &reviewedAt
	r.UpdatedAt = reviewedAt
	return nil
}

func (m *MockRegressionRepository) Stats(ctx context.Context, testRunID int64) (*regression.Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := &regression.Stats{ByStatus: make(map[string]int)}
	for _, r := range m.Regressions {
		if r.TestRunID != testRunID {
			continue
		}
		stats.Total++
		if r.IsSignificant {
			stats.Significant++
		}
		if r.Status == regression.StatusPending {
			stats.Pending++
		}
		stats.ByStatus[r.Status]++
	}
	return stats, nil
}

func (m *MockRegressionRepository) Trends(ctx context.Context, suiteID int64, since time.Time) ([]*regression.TrendPoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	byDay := make(map[string]*regression.TrendPoint)
	for _, r := range m.Regressions {
		if m.SuiteByRun[r.TestRunID] != suiteID || r.CreatedAt.Before(since) {
			continue
		}
		day := r.CreatedAt.Format("2006-01-02")
		p, ok := byDay[day]
		if !ok {
			p = &regression.TrendPoint{Date: day}
			byDay[day] = p
		}
		p.RegressionCount++
		if r.IsSignificant {
			p.SignificantCount++
		}
	}

	var points []*regression.TrendPoint
	for _, p := range byDay {
		points = append(points, p)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })
	return points, nil
}

// MemoryFetcher serves screenshot bytes from a map keyed by reference.
type MemoryFetcher struct {
	Blobs  map[string][]byte
	Errors map[string]error
}

func NewMemoryFetcher() *MemoryFetcher {
	return &MemoryFetcher{
		Blobs:  make(map[string][]byte),
		Errors: make(map[string]error),
	}
}

func (f *MemoryFetcher) Fetch(ctx context.Context, ref string) ([]byte, error) {
	if err, ok := f.Errors[ref]; ok {
		return nil, err
	}
	data, ok := f.Blobs[ref]
	if !ok {
		return nil, errors.FetchFailure(ref, fmt.Errorf("no blob registered"))
	}
	return data, nil
}

// MemoryArtifactStore collects written artifacts in memory.
type MemoryArtifactStore struct {
	mu        sync.Mutex
	Artifacts map[string][]byte
	PutError  error
}

func NewMemoryArtifactStore() *MemoryArtifactStore {
	return &MemoryArtifactStore{Artifacts: make(map[string][]byte)}
}

func (s *MemoryArtifactStore) Put(ctx context.Context, name string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.PutError != nil {
		return "", s.PutError
	}
	s.Artifacts[name] = data
	return "mem://" + name, nil
}
