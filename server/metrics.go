package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// requestsTotal counts finished worker requests by kind and outcome.
	// Outcome is the terminal reason for bounded runs, "ok" for tables and
	// "error" for failed or cancelled runs.
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lcsall_requests_total",
		Help: "Finished worker requests by kind and outcome",
	}, []string{"kind", "outcome"})

	// requestDuration tracks request latency from submit to terminal message.
	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lcsall_request_duration_seconds",
		Help:    "Worker request duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14), // 0.5ms to ~4s
	}, []string{"kind"})

	inflight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "lcsall_inflight_requests",
		Help: "Worker requests currently running",
	})

	// batchTotal counts batch submissions by status code class.
	batchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lcsall_batch_requests_total",
		Help: "Batch submissions by result",
	}, []string{"result"})

	wsConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "lcsall_ws_connections",
		Help: "Open websocket connections",
	})
)
