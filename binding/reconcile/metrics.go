package reconcile

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	reconcileOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aquastark_reconcile_outcomes",
			Help: "Number of finished reconciliations by final state.",
		},
		[]string{"entrypoint", "state"},
	)
	reconcileAttempts = prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name: "aquastark_reconcile_attempts",
			Help: "Number of read model queries per reconciliation.",
		},
		[]string{"entrypoint"},
	)
	reconcileDuration = prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name: "aquastark_reconcile_duration",
			Help: "Time until a reconciliation converged or exhausted (seconds).",
		},
		[]string{"entrypoint", "state"},
	)

	reconcileCollectors = []prometheus.Collector{
		reconcileOutcomes,
		reconcileAttempts,
		reconcileDuration,
	}

	metricsOnce sync.Once
)

func initMetrics() {
	metricsOnce.Do(func() {
		prometheus.MustRegister(reconcileCollectors...)
	})
}
