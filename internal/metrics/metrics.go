// Package metrics defines the Prometheus collectors exported on /metrics.
// Collectors register with the default registry at package init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "geomark"

// HTTPRequestsTotal counts handled requests.
// Labels: method, route (the gin route template), status.
var HTTPRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests handled.",
	},
	[]string{"method", "route", "status"},
)

// HTTPRequestDuration measures request latency per route.
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP request handling.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route"},
)

// AuthFailuresTotal counts rejected logins and tokens.
// Label reason: unknown_email, wrong_password, token_expired, token_bad_signature,
// token_malformed or token_invalid.
var AuthFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_failures_total",
		Help:      "Total number of rejected credentials and tokens.",
	},
	[]string{"reason"},
)

// MarkerOperationsTotal counts successful marker mutations by op.
var MarkerOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "marker_operations_total",
		Help:      "Total number of successful marker mutations.",
	},
	[]string{"op"},
)

// BackupsTotal counts snapshot uploads by result (ok, error).
var BackupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backups_total",
		Help:      "Total number of marker snapshot uploads.",
	},
	[]string{"result"},
)
