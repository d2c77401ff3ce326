package metrics

import (
	"regexp"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RequestDuration tracks dashboard request duration in seconds by method, path, status.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// RequestTotal counts dashboard requests by method, path, status.
	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// APICallDuration tracks calls to the attendance API by operation.
	APICallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "attendance_api_call_duration_seconds",
			Help:    "Attendance API call duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// APICallsTotal counts calls to the attendance API by operation and outcome
	// (ok, unauthorized, invalid_credentials, api_error, network_error).
	APICallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "attendance_api_calls_total",
			Help: "Total number of attendance API calls by outcome",
		},
		[]string{"operation", "outcome"},
	)

	// StaleReloadsTotal counts log reloads whose result was dropped because a newer reload was dispatched.
	StaleReloadsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dashboard_stale_reloads_total",
			Help: "Log reloads discarded because a newer reload superseded them",
		},
	)
)

var (
	// Numeric ids, uuids and 24-hex Mongo object ids.
	idPathSegment = regexp.MustCompile(`/([0-9]+|[0-9a-fA-F]{24}|[0-9a-fA-F]{8}-[0-9a-fA-F-]{27})(/|$)`)
	initOnce      sync.Once
)

func init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestDuration, RequestTotal, APICallDuration, APICallsTotal, StaleReloadsTotal)
	})
}

// NormalizePath reduces cardinality by replacing id path segments with {id}.
// E.g. /logs/65a1f0c2e4b0a1b2c3d4e5f6/delete -> /logs/{id}/delete.
func NormalizePath(path string) string {
	return idPathSegment.ReplaceAllString(path, "/{id}$2")
}

// RecordRequest records duration and count for a dashboard request.
func RecordRequest(method, path string, statusCode int, durationSeconds float64) {
	path = NormalizePath(path)
	status := strconv.Itoa(statusCode)
	RequestDuration.WithLabelValues(method, path, status).Observe(durationSeconds)
	RequestTotal.WithLabelValues(method, path, status).Inc()
}

// RecordAPICall records one outgoing attendance API call.
func RecordAPICall(operation, outcome string, durationSeconds float64) {
	APICallDuration.WithLabelValues(operation).Observe(durationSeconds)
	APICallsTotal.WithLabelValues(operation, outcome).Inc()
}

func IncStaleReloads() {
	StaleReloadsTotal.Inc()
}
