package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		httpRequestsTotal,
		httpRequestDuration,
		rateLimitRejectionsTotal,
		csrfRejectionsTotal,
	)
}

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Counts HTTP requests by method, path and status code.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by method and path.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	rateLimitRejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_rejections_total",
			Help: "Requests rejected by the fixed-window rate limiter.",
		},
		[]string{"scope"},
	)

	csrfRejectionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "csrf_rejections_total",
			Help: "Submissions rejected for a missing or invalid CSRF token.",
		},
	)
)

func ObserveHTTPRequest(method, path, status string, seconds float64) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(seconds)
}

func IncRateLimitRejected(scope string) {
	rateLimitRejectionsTotal.WithLabelValues(scope).Inc()
}

func IncCSRFRejected() {
	csrfRejectionsTotal.Inc()
}
