package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation of the gateway.
type MetricsService struct {
	registry         *prometheus.Registry
	handler          http.Handler
	requestDuration  *prometheus.HistogramVec
	requestTotal     *prometheus.CounterVec
	backendDuration  *prometheus.HistogramVec
	dashboardRefresh *prometheus.CounterVec
	sessionsEnded    *prometheus.CounterVec
	auditDropped     prometheus.Counter
	workspaces       prometheus.Gauge

	requestCount uint64
	backendCount uint64
}

// MetricsSnapshot is a lightweight summary for the health endpoint.
type MetricsSnapshot struct {
	RequestsTotal uint64 `json:"requests_total"`
	BackendCalls  uint64 `json:"backend_calls"`
	Goroutines    int    `json:"goroutines"`
}

// NewMetricsService registers the gateway collectors.
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

	backendDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "backend_request_duration_seconds",
		Help:    "Duration of calls to the KaraScolaire API",
		Buckets: prometheus.DefBuckets,
	}, []string{"resource", "status_class"})

	dashboardRefresh := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_refresh_total",
		Help: "Dashboard aggregation cycles by role and outcome",
	}, []string{"role", "outcome"})

	sessionsEnded := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sessions_ended_total",
		Help: "Sessions that left the authenticated state, by reason",
	}, []string{"reason"})

	auditDropped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "audit_entries_dropped_total",
		Help: "Audit entries that could not be queued",
	})

	workspaces := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "workspaces_active",
		Help: "Per-session workspaces held in memory",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, backendDuration, dashboardRefresh, sessionsEnded, auditDropped, workspaces, goroutines)

	return &MetricsService{
		registry:         registry,
		handler:          promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:  requestDuration,
		requestTotal:     requestTotal,
		backendDuration:  backendDuration,
		dashboardRefresh: dashboardRefresh,
		sessionsEnded:    sessionsEnded,
		auditDropped:     auditDropped,
		workspaces:       workspaces,
	}
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

// Registry exposes the collector registry.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
}

// ObserveBackendCall records one call to the remote API. Status 0 is a transport failure.
func (m *MetricsService) ObserveBackendCall(resource string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.backendDuration.WithLabelValues(resource, statusClass(status)).Observe(duration.Seconds())
	atomic.AddUint64(&m.backendCount, 1)
}

// RecordDashboardRefresh counts one aggregation cycle.
func (m *MetricsService) RecordDashboardRefresh(role string, ok bool) {
	if m == nil {
		return
	}
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	m.dashboardRefresh.WithLabelValues(role, outcome).Inc()
}

// RecordSessionEnded counts a session leaving the authenticated state.
func (m *MetricsService) RecordSessionEnded(reason string) {
	if m == nil {
		return
	}
	m.sessionsEnded.WithLabelValues(reason).Inc()
}

// RecordAuditDropped counts an audit entry lost to a full or stopped queue.
func (m *MetricsService) RecordAuditDropped() {
	if m == nil {
		return
	}
	m.auditDropped.Inc()
}

// SetWorkspaces reports the number of live workspaces.
func (m *MetricsService) SetWorkspaces(n int) {
	if m == nil {
		return
	}
	m.workspaces.Set(float64(n))
}

// Snapshot returns aggregated counters.
func (m *MetricsService) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	return MetricsSnapshot{
		RequestsTotal: atomic.LoadUint64(&m.requestCount),
		BackendCalls:  atomic.LoadUint64(&m.backendCount),
		Goroutines:    runtime.NumGoroutine(),
	}
}

func statusClass(status int) string {
	if status <= 0 {
		return "transport_error"
	}
	return fmt.Sprintf("%dxx", status/100)
}
