package manager

import "github.com/prometheus/client_golang/prometheus"

var (
	backendReady = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "creditrisk_backend_ready",
			Help: "1 when the backend is loaded and accepting requests.",
		},
		[]string{"backend"},
	)
	backendLoadSeconds = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "creditrisk_backend_load_seconds",
			Help: "Time spent loading the backend's model.",
		},
		[]string{"backend"},
	)
)

func init() {
	prometheus.MustRegister(backendReady, backendLoadSeconds)
}
