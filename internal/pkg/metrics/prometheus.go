package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "snapdiff",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "snapdiff",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "snapdiff",
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Number of HTTP requests currently being served",
		},
	)

	// Comparison metrics
	comparisonsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "snapdiff",
			Subsystem: "compare",
			Name:      "comparisons_total",
			Help:      "Total number of pixel comparisons",
		},
		[]string{"outcome"},
	)

	comparisonDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "snapdiff",
			Subsystem: "compare",
			Name:      "duration_seconds",
			Help:      "Duration of a single pixel comparison in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
	)

	// Batch analysis metrics
	analysisRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "snapdiff",
			Subsystem: "analysis",
			Name:      "runs_total",
			Help:      "Total number of batch analysis runs",
		},
		[]string{"status"},
	)

	analysisDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "snapdiff",
			Subsystem: "analysis",
			Name:      "duration_seconds",
			Help:      "Duration of a batch analysis run in seconds",
			Buckets:   []float64{.1, .5, 1, 5, 10, 30, 60, 120, 300},
		},
	)

	significantRegressions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "snapdiff",
			Subsystem: "analysis",
			Name:      "significant_regressions_last_run",
			Help:      "Significant regressions found by the most recent batch",
		},
	)

	// Screenshot fetch metrics
	fetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "snapdiff",
			Subsystem: "storage",
			Name:      "fetch_total",
			Help:      "Total number of screenshot fetches",
		},
		[]string{"status"},
	)
)

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware returns a middleware that records Prometheus metrics
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start).Seconds()

		// Get route pattern from chi
		routePattern := chi.RouteContext(r.Context()).RoutePattern()
		if routePattern == "" {
			routePattern = "unknown"
		}

		status := strconv.Itoa(wrapped.statusCode)

		httpRequestsTotal.WithLabelValues(r.Method, routePattern, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, routePattern, status).Observe(duration)
	})
}

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordComparison records a single pixel comparison outcome and duration
func RecordComparison(outcome string, duration time.Duration) {
	comparisonsTotal.WithLabelValues(outcome).Inc()
	comparisonDuration.Observe(duration.Seconds())
}

// RecordAnalysisRun records a batch analysis run
func RecordAnalysisRun(status string, duration time.Duration) {
	analysisRunsTotal.WithLabelValues(status).Inc()
	analysisDuration.Observe(duration.Seconds())
}

// SetSignificantRegressions sets the gauge for the most recent batch
func SetSignificantRegressions(count float64) {
	significantRegressions.Set(count)
}

// RecordFetch records a screenshot fetch outcome
func RecordFetch(status string) {
	fetchTotal.WithLabelValues(status).Inc()
}
