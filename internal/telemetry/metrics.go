package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// AttemptsTotal counts finished connection attempts per adapter
	AttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wbrute",
			Name:      "attempts_total",
			Help:      "Total number of candidate connection attempts",
		},
		[]string{"adapter", "result"},
	)

	// AttacksTotal counts attacks by terminal outcome
	AttacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wbrute",
			Name:      "attacks_total",
			Help:      "Total number of attacks by outcome",
		},
		[]string{"outcome"},
	)

	// WorkerFailures counts workers terminated by a fatal adapter error
	WorkerFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wbrute",
			Name:      "worker_failures_total",
			Help:      "Total number of workers stopped by a fatal adapter error",
		},
		[]string{"adapter"},
	)

	// ActiveWorkers is the number of attempt workers currently running
	ActiveWorkers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "wbrute",
			Name:      "active_workers",
			Help:      "Number of attempt workers currently running",
		},
	)

	// CandidatesLoaded counts candidates read by the candidate loaders
	CandidatesLoaded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wbrute",
			Name:      "candidates_loaded_total",
			Help:      "Total number of candidates loaded",
		},
		[]string{"source"},
	)

	// Ensure metrics are only registered once
	once sync.Once
)

// Attempt results used as the "result" label of AttemptsTotal.
const (
	ResultConnected = "connected"
	ResultFailed    = "failed"
	ResultError     = "error"
	ResultAborted   = "aborted"
)

// InitMetrics registers all metrics with the global Prometheus registry
// This function is idempotent and can be called multiple times safely
func InitMetrics() {
	once.Do(func() {
		prometheus.DefaultRegisterer.Register(AttemptsTotal)
		prometheus.DefaultRegisterer.Register(AttacksTotal)
		prometheus.DefaultRegisterer.Register(WorkerFailures)
		prometheus.DefaultRegisterer.Register(ActiveWorkers)
		prometheus.DefaultRegisterer.Register(CandidatesLoaded)
	})
}
