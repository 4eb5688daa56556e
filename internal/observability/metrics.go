package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	httpRequestsTotal     *prometheus.CounterVec
	httpLatencySeconds    *prometheus.HistogramVec
	httpErrorsTotal       *prometheus.CounterVec
	auditLoggedTotal      *prometheus.CounterVec
	auditSuppressedTotal  *prometheus.CounterVec
	imageRejectedTotal    *prometheus.CounterVec
	projectSubmitsTotal   *prometheus.CounterVec
	projectModeratesTotal *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "folio_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "folio_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "folio_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		auditLoggedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "folio_audit_entries_total",
			Help: "Audit entries written, by action kind.",
		}, []string{"action"})

		auditSuppressedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "folio_audit_suppressed_total",
			Help: "Audit entries dropped by the dedupe window, by action kind.",
		}, []string{"action"})

		imageRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "folio_image_rejected_total",
			Help: "Project images rejected before or during relay, by cause.",
		}, []string{"cause"})

		projectSubmitsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "folio_project_submissions_total",
			Help: "Projects submitted, by category.",
		}, []string{"category"})

		projectModeratesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "folio_project_moderations_total",
			Help: "Moderation decisions, by resulting status.",
		}, []string{"status"})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			httpErrorsTotal,
			auditLoggedTotal,
			auditSuppressedTotal,
			imageRejectedTotal,
			projectSubmitsTotal,
			projectModeratesTotal,
		)
	})
}

// HTTPRequests exposes the counter for API requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for API requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the counter for API error responses.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// AuditLogged exposes the counter for persisted audit entries.
func AuditLogged() *prometheus.CounterVec {
	RegisterMetrics()
	return auditLoggedTotal
}

// AuditSuppressed exposes the counter for dedupe-suppressed audit entries.
func AuditSuppressed() *prometheus.CounterVec {
	RegisterMetrics()
	return auditSuppressedTotal
}

// ImageRejected exposes the counter for rejected project images.
func ImageRejected() *prometheus.CounterVec {
	RegisterMetrics()
	return imageRejectedTotal
}

// ProjectSubmissions exposes the counter for submitted projects.
func ProjectSubmissions() *prometheus.CounterVec {
	RegisterMetrics()
	return projectSubmitsTotal
}

// ProjectModerations exposes the counter for moderation decisions.
func ProjectModerations() *prometheus.CounterVec {
	RegisterMetrics()
	return projectModeratesTotal
}
