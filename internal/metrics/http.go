package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTPRequestDuration tracks API latencies by route pattern.
var HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "animcover_http_request_duration_seconds",
	Help:    "HTTP request latencies in seconds",
	Buckets: prometheus.DefBuckets,
}, []string{"method", "route", "status"})
