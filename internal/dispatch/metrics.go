package dispatch

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	backendRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "creditrisk",
			Subsystem: "dispatch",
			Name:      "backend_requests_total",
			Help:      "Backend calls by outcome",
		},
		[]string{"backend", "status"},
	)

	backendDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "creditrisk",
			Subsystem: "dispatch",
			Name:      "backend_duration_seconds",
			Help:      "Generation time per backend call in seconds",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 120},
		},
		[]string{"backend"},
	)

	dispatchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "creditrisk",
			Subsystem: "dispatch",
			Name:      "duration_seconds",
			Help:      "Wall-clock time of a fan-out in seconds",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 120},
		},
	)

	dispatchInflight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "creditrisk",
			Subsystem: "dispatch",
			Name:      "inflight",
			Help:      "Fan-outs currently running",
		},
	)
)

func init() {
	prometheus.MustRegister(backendRequestsTotal, backendDuration, dispatchDuration, dispatchInflight)
}
