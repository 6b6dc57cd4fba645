// Package metrics provides Prometheus metrics for the dockergen server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dockergen_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dockergen_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Generation metrics
	generationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dockergen_generations_total",
			Help: "Total build file generations by provider and outcome",
		},
		[]string{"provider", "status"},
	)

	generationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dockergen_generation_duration_seconds",
			Help:    "Provider call duration in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 120},
		},
		[]string{"provider"},
	)

	// Structure metrics
	importsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dockergen_imports_total",
			Help: "Total structure imports by outcome",
		},
		[]string{"status"},
	)

	importedNodes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dockergen_imported_nodes",
			Help:    "Number of nodes produced by a successful import",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	treeMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dockergen_tree_mutations_total",
			Help: "Total structure mutations by operation",
		},
		[]string{"op"},
	)

	sessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dockergen_sessions_active",
			Help: "Number of live editing sessions",
		},
	)

	sessionEvictionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dockergen_session_evictions_total",
			Help: "Sessions dropped because the session cap was reached",
		},
	)
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordHTTPRequest records an HTTP request metric.
func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordGeneration records one provider call.
func RecordGeneration(provider string, success bool, duration time.Duration) {
	generationsTotal.WithLabelValues(provider, statusLabel(success)).Inc()
	generationDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// RecordImport records an import attempt and, on success, its size.
func RecordImport(nodes int, success bool) {
	importsTotal.WithLabelValues(statusLabel(success)).Inc()
	if success {
		importedNodes.Observe(float64(nodes))
	}
}

// RecordTreeMutation records a structure edit (insert, delete, replace, reset, undo, redo).
func RecordTreeMutation(op string) {
	treeMutationsTotal.WithLabelValues(op).Inc()
}

// RecordSessionEviction counts a session dropped to stay under the cap.
func RecordSessionEviction() {
	sessionEvictionsTotal.Inc()
}

// SetSessionsActive sets the live session gauge.
func SetSessionsActive(n int) {
	sessionsActive.Set(float64(n))
}

func statusLabel(success bool) string {
	if success {
		return "success"
	}
	return "error"
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Middleware returns HTTP middleware that records request metrics.
// Requests are labelled by their matched route pattern to keep label
// cardinality bounded.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		path := r.Pattern
		if path == "" {
			path = "unmatched"
		}
		RecordHTTPRequest(r.Method, path, rw.statusCode, time.Since(start))
	})
}
