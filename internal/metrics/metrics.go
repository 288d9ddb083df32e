package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "secretboard_http_requests_total",
			Help: "Total number of HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "secretboard_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	TrackingIDsIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "secretboard_tracking_ids_issued_total",
			Help: "Total number of tracking identifiers issued or reissued",
		},
	)

	OneTimeTokens = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "secretboard_onetime_tokens_total",
			Help: "One-time token lifecycle events (issued, accepted, rejected)",
		},
		[]string{"result"},
	)

	PostsDeleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "secretboard_posts_deleted_total",
			Help: "Delete attempts by outcome (deleted, denied, missing)",
		},
		[]string{"result"},
	)
)
