package settings

import "time"

// DefaultThreshold is the system-wide significance threshold applied when a
// suite has no explicit setting.
const DefaultThreshold = 0.10

// SuiteSettings holds per-suite comparison policy. Threshold is nil when the
// suite relies on the system default.
type SuiteSettings struct {
	SuiteID             int64     `json:"suite_id"`
	Threshold           *float64  `json:"threshold,omitempty"`
	IncludeAntialiasing bool      `json:"include_antialiasing"`
	UpdatedAt           time.Time `json:"updated_at,omitempty"`
}

// EffectiveThreshold resolves the suite's threshold against the system
// default.
func (s *SuiteSettings) EffectiveThreshold() float64 {
	if s != nil && s.Threshold != nil {
		return *s.Threshold
	}
	return DefaultThreshold
}

// IgnoreRegion is a rectangle excluded from diff scoring, scoped to a suite
// and keyed by (test, viewport). An empty TestName or Viewport acts as a
// wildcard for that dimension.
type IgnoreRegion struct {
	ID        int64     `json:"id"`
	SuiteID   int64     `json:"suite_id"`
	TestName  string    `json:"test_name,omitempty"`
	Viewport  string    `json:"viewport,omitempty"`
	X         int       `json:"x"`
	Y         int       `json:"y"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	CreatedAt time.Time `json:"created_at"`
}
