package sim

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	scheduleRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "resource_sim",
		Subsystem: "scheduler",
		Name:      "runs_total",
		Help:      "Completed scheduling runs by policy.",
	}, []string{"policy"})

	scheduleDispatchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "resource_sim",
		Subsystem: "scheduler",
		Name:      "dispatches_total",
		Help:      "CPU dispatch decisions by policy.",
	}, []string{"policy"})
)
