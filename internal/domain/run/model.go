package run

import "time"

// TestRun is one execution of a test suite, recorded by the capture harness.
type TestRun struct {
	ID          int64      `json:"id"`
	SuiteID     int64      `json:"suite_id"`
	Name        string     `json:"name"`
	Status      string     `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Run statuses
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusAnalyzed  = "analyzed"
	StatusFailed    = "failed"
)

// Screenshot is one captured image of a run, addressed by a storage
// reference (file://, http(s):// or gs://).
type Screenshot struct {
	ID         int64     `json:"id"`
	TestRunID  int64     `json:"test_run_id"`
	TestName   string    `json:"test_name"`
	Viewport   string    `json:"viewport"`
	StepName   string    `json:"step_name,omitempty"`
	Ref        string    `json:"ref"`
	CapturedAt time.Time `json:"captured_at"`
}

// Triple is the key used to match current screenshots to baseline
// screenshots.
type Triple struct {
	TestName string
	Viewport string
	StepName string
}

// Key returns the screenshot's matching triple.
func (s *Screenshot) Key() Triple {
	return Triple{TestName: s.TestName, Viewport: s.Viewport, StepName: s.StepName}
}
