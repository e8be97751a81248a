package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EncoderRunning is the number of encoder processes currently registered.
	EncoderRunning = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "animcover_encoder_running",
		Help: "Encoder processes currently tracked by the supervisor",
	})

	// EncoderStartTotal counts encoder start attempts.
	EncoderStartTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "animcover_encoder_start_total",
		Help: "Total number of encoder process starts",
	}, []string{"result"})

	// EncoderExitTotal counts encoder exits.
	// reason: exit0, exit_nonzero, killed, unknown
	EncoderExitTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "animcover_encoder_exit_total",
		Help: "Total number of encoder process exits",
	}, []string{"reason"})

	// GateWait tracks how long callers wait for an encoder slot.
	GateWait = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "animcover_encoder_gate_wait_seconds",
		Help:    "Time spent waiting for an encoder concurrency slot",
		Buckets: prometheus.ExponentialBuckets(0.001, 4.0, 10), // 1ms to ~4m
	})

	procTerminateTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "animcover_proc_terminate_total",
		Help: "Process group termination signals by outcome",
	}, []string{"signal", "result"})
)

// IncProcTerminate records a termination signal attempt against a process group.
func IncProcTerminate(signal, result string) {
	procTerminateTotal.WithLabelValues(signal, result).Inc()
}

// IncEncoderExit records an encoder exit reason.
func IncEncoderExit(reason string) {
	EncoderExitTotal.WithLabelValues(reason).Inc()
}
