package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce           sync.Once
	httpRequestsTotal      *prometheus.CounterVec
	httpLatencySeconds     *prometheus.HistogramVec
	httpErrorsTotal        *prometheus.CounterVec
	projectTransitionTotal *prometheus.CounterVec
	projectsByStatus       *prometheus.GaugeVec
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "projecthub_http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "projecthub_http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "projecthub_http_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		projectTransitionTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "projecthub_project_transitions_total",
			Help: "Project lifecycle transitions attempted, by outcome.",
		}, []string{"transition", "outcome"})

		projectsByStatus = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "projecthub_projects",
			Help: "Live projects by status as of the last overview aggregation.",
		}, []string{"status"})

		prometheus.MustRegister(httpRequestsTotal, httpLatencySeconds, httpErrorsTotal, projectTransitionTotal, projectsByStatus)
	})
}

// HTTPRequests exposes the request counter.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the error response counter.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// ProjectTransitions exposes the lifecycle transition counter.
func ProjectTransitions() *prometheus.CounterVec {
	RegisterMetrics()
	return projectTransitionTotal
}

// ProjectsByStatus exposes the gauge refreshed by the admin overview.
func ProjectsByStatus() *prometheus.GaugeVec {
	RegisterMetrics()
	return projectsByStatus
}
