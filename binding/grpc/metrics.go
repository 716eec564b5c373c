package grpc

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	grpcClientCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aquastark_grpc_client_calls",
			Help: "Number of world gateway calls.",
		},
		[]string{"call"},
	)
	grpcClientLatency = prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name: "aquastark_grpc_client_latency",
			Help: "World gateway call latency (seconds).",
		},
		[]string{"call"},
	)
	grpcClientFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aquastark_grpc_client_failures",
			Help: "Number of failed world gateway calls.",
		},
		[]string{"call"},
	)

	grpcCollectors = []prometheus.Collector{
		grpcClientCalls,
		grpcClientLatency,
		grpcClientFailures,
	}

	metricsOnce sync.Once
)

func initMetrics() {
	metricsOnce.Do(func() {
		prometheus.MustRegister(grpcCollectors...)
	})
}
