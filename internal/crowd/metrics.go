package crowd

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	densityUpdates = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crowd_density_updates_total",
		Help: "Density updates applied, by resulting density level",
	}, []string{"density_level"})

	alertsRaised = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crowd_alerts_raised_total",
		Help: "Crowd alerts raised on level transitions",
	})

	simulationRuns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crowd_simulation_runs_total",
		Help: "Synthetic crowd simulation passes completed",
	})
)
