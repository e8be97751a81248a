package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ExtractTotal counts animated cover extraction outcomes.
	// result: success, failure, cancelled, not_applicable, setup_failed
	ExtractTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "animcover_extract_total",
		Help: "Total animated cover extraction attempts by outcome",
	}, []string{"result"})

	// ExtractDuration tracks wall time of extractions that reached the encoder.
	ExtractDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "animcover_extract_duration_seconds",
		Help:    "Duration of animated cover extractions including gate wait",
		Buckets: prometheus.ExponentialBuckets(0.25, 2.0, 10), // 250ms to ~2m
	}, []string{"result"})

	// LibraryRegisterTotal counts library registrations by outcome.
	LibraryRegisterTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "animcover_library_register_total",
		Help: "Total library item registrations by outcome",
	}, []string{"result"})
)

// IncExtract records an extraction outcome.
func IncExtract(result string) {
	ExtractTotal.WithLabelValues(result).Inc()
}

// ObserveExtract records the duration of a supervised extraction.
func ObserveExtract(result string, seconds float64) {
	ExtractDuration.WithLabelValues(result).Observe(seconds)
}
