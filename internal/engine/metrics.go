package engine

import "github.com/prometheus/client_golang/prometheus"

var (
	stepsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "textlife_steps_total",
		Help: "Total number of completed full-grid generation steps.",
	})

	cellsGeneratedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "textlife_cells_generated_total",
		Help: "Total number of cells successfully regenerated.",
	})

	cellsFailedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "textlife_cells_failed_total",
		Help: "Total number of cell generations that failed.",
	})

	cellsInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "textlife_cells_in_flight",
		Help: "Number of cells currently awaiting or executing an external call.",
	})
)

func init() {
	prometheus.MustRegister(stepsTotal)
	prometheus.MustRegister(cellsGeneratedTotal)
	prometheus.MustRegister(cellsFailedTotal)
	prometheus.MustRegister(cellsInFlight)
}
