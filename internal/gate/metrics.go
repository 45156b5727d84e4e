package gate

import "github.com/prometheus/client_golang/prometheus"

var (
	gateActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "textlife_gate_active",
		Help: "Number of currently admitted operations.",
	})

	gateWaiting = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "textlife_gate_waiting",
		Help: "Number of callers blocked waiting for an admission slot.",
	})
)

func init() {
	prometheus.MustRegister(gateActive)
	prometheus.MustRegister(gateWaiting)
}
