package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	apperrors "github.com/R3E-Network/tasktracker/internal/errors"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "tasktracker",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tasktracker",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tasktracker",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12), // 0.5ms to ~1s
		},
		[]string{"method", "path"},
	)

	operations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tasktracker",
			Subsystem: "core",
			Name:      "operations_total",
			Help:      "Core operations by name and outcome.",
		},
		[]string{"operation", "outcome"},
	)

	usersStored = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "tasktracker",
			Subsystem: "store",
			Name:      "users",
			Help:      "Number of users held in the user store.",
		},
	)

	tasksStored = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "tasktracker",
			Subsystem: "store",
			Name:      "tasks",
			Help:      "Number of tasks held in the task store.",
		},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		operations,
		usersStored,
		tasksStored,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// IncrementInFlight marks the start of an HTTP request.
func IncrementInFlight() { httpInFlight.Inc() }

// DecrementInFlight marks the end of an HTTP request.
func DecrementInFlight() { httpInFlight.Dec() }

// RecordHTTPRequest records a completed request against its route template.
func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if path == "" {
		path = "unmatched"
	}
	httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordOperation counts a core operation, labelling it with the error kind
// it failed with, or "ok".
func RecordOperation(operation string, err error) {
	operations.WithLabelValues(operation, Outcome(err)).Inc()
}

// Outcome converts an operation result into a metric label.
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	switch apperrors.KindOf(err) {
	case apperrors.KindUserNotFound:
		return "user_not_found"
	case apperrors.KindTaskNotFound:
		return "task_not_found"
	case apperrors.KindInvalidInput:
		return "invalid_input"
	default:
		return "error"
	}
}

// SetUserCount publishes the number of stored users.
func SetUserCount(n int) { usersStored.Set(float64(n)) }

// SetTaskCount publishes the number of stored tasks.
func SetTaskCount(n int) { tasksStored.Set(float64(n)) }
