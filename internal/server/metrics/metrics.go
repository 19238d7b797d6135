// Package metrics exposes Prometheus collectors for the API: request
// counts and latency, throttle decisions and verification outcomes.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/dmitrijs2005/cms/internal/server/throttle"
)

var (
	// HTTPRequestsTotal counts requests by method, route pattern and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cms_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration tracks request latency by method and route pattern.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cms_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// ThrottleDecisionsTotal counts charged rate-limit checks per scope.
	ThrottleDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cms_throttle_decisions_total",
			Help: "Total number of rate limit decisions",
		},
		[]string{"scope", "decision"},
	)

	// VerificationOutcomesTotal counts email verification attempts by result.
	VerificationOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cms_verification_outcomes_total",
			Help: "Total number of email verification attempts by outcome",
		},
		[]string{"result"},
	)
)

// RecordRequest records one served HTTP request.
func RecordRequest(method, route string, status int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// ObserveThrottle is a throttle.Observer feeding ThrottleDecisionsTotal.
func ObserveThrottle(scope throttle.Scope, allowed bool) {
	decision := "deny"
	if allowed {
		decision = "allow"
	}
	ThrottleDecisionsTotal.WithLabelValues(string(scope), decision).Inc()
}

// RecordVerification records the outcome of a verification attempt.
func RecordVerification(result string) {
	VerificationOutcomesTotal.WithLabelValues(result).Inc()
}
