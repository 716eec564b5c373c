package dispatch

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	dispatchLatency = prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name: "aquastark_dispatch_latency",
			Help: "World dispatch latency (seconds).",
		},
		[]string{"channel", "entrypoint"},
	)
	dispatchSuccesses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aquastark_dispatch_successes",
			Help: "Number of successful world dispatches.",
		},
		[]string{"channel", "entrypoint"},
	)
	dispatchFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aquastark_dispatch_failures",
			Help: "Number of world dispatches rejected by the transport.",
		},
		[]string{"channel", "entrypoint"},
	)
	dispatchUnauthorized = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "aquastark_dispatch_unauthorized",
			Help: "Number of mutations attempted without a signer.",
		},
	)

	dispatchCollectors = []prometheus.Collector{
		dispatchLatency,
		dispatchSuccesses,
		dispatchFailures,
		dispatchUnauthorized,
	}

	metricsOnce sync.Once
)

// initMetrics registers the metrics collectors.
func initMetrics() {
	metricsOnce.Do(func() {
		prometheus.MustRegister(dispatchCollectors...)
	})
}
