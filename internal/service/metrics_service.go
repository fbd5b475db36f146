package service

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation. A nil *MetricsService is a valid no-op.
type MetricsService struct {
	registry            *prometheus.Registry
	handler             http.Handler
	requestDuration     *prometheus.HistogramVec
	requestTotal        *prometheus.CounterVec
	dbQueryDuration     *prometheus.HistogramVec
	complaintsSubmitted prometheus.Counter
	complaintsRejected  prometheus.Counter
	statusUpdates       *prometheus.CounterVec
	loginFailures       *prometheus.CounterVec
	bootstrapRuns       *prometheus.CounterVec
}

// NewMetricsService registers the application collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	dbQueryDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Duration of database queries",
		Buckets: prometheus.DefBuckets,
	}, []string{"query"})

	complaintsSubmitted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "complaints_submitted_total",
		Help: "Complaints accepted from verified students",
	})

	complaintsRejected := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "complaints_rejected_total",
		Help: "Complaints rejected because no verified student matched",
	})

	statusUpdates := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "complaint_status_updates_total",
		Help: "Complaint status changes made by admins",
	}, []string{"status"})

	loginFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "login_failures_total",
		Help: "Failed login attempts by scope",
	}, []string{"scope"})

	bootstrapRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schema_bootstrap_runs_total",
		Help: "Schema bootstrap attempts by result",
	}, []string{"result"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, dbQueryDuration, complaintsSubmitted, complaintsRejected, statusUpdates, loginFailures, bootstrapRuns, goroutines)

	return &MetricsService{
		registry:            registry,
		handler:             promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:     requestDuration,
		requestTotal:        requestTotal,
		dbQueryDuration:     dbQueryDuration,
		complaintsSubmitted: complaintsSubmitted,
		complaintsRejected:  complaintsRejected,
		statusUpdates:       statusUpdates,
		loginFailures:       loginFailures,
		bootstrapRuns:       bootstrapRuns,
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// ObserveDBQuery records database query timing.
func (m *MetricsService) ObserveDBQuery(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(label).Observe(duration.Seconds())
}

// ComplaintSubmitted counts an accepted complaint.
func (m *MetricsService) ComplaintSubmitted() {
	if m == nil {
		return
	}
	m.complaintsSubmitted.Inc()
}

// ComplaintRejected counts a complaint refused for an unverified student.
func (m *MetricsService) ComplaintRejected() {
	if m == nil {
		return
	}
	m.complaintsRejected.Inc()
}

// StatusUpdated counts a status change to status.
func (m *MetricsService) StatusUpdated(status string) {
	if m == nil {
		return
	}
	m.statusUpdates.WithLabelValues(status).Inc()
}

// LoginFailed counts a failed login for scope ("user" or "admin").
func (m *MetricsService) LoginFailed(scope string) {
	if m == nil {
		return
	}
	m.loginFailures.WithLabelValues(scope).Inc()
}

// BootstrapRun counts a schema bootstrap attempt.
func (m *MetricsService) BootstrapRun(ok bool) {
	if m == nil {
		return
	}
	result := "success"
	if !ok {
		result = "failure"
	}
	m.bootstrapRuns.WithLabelValues(result).Inc()
}
