// Package observability provides Prometheus metrics and HTTP middleware
// for monitoring the concierge service.
package observability

import "github.com/prometheus/client_golang/prometheus"

// EngineBuckets defines histogram buckets suited for reasoning-engine
// latencies, ranging from 100ms to 120s.
var EngineBuckets = []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120}

var (
	// RequestsTotal counts HTTP requests by method and status class.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "concierge_requests_total",
			Help: "Total requests",
		},
		[]string{"method", "status"},
	)

	// RequestDuration records HTTP request duration in seconds by method.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "concierge_request_duration_seconds",
			Help:    "Request duration",
			Buckets: EngineBuckets,
		},
		[]string{"method"},
	)

	// EngineRequestsTotal counts calls to the reasoning engine.
	EngineRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "concierge_engine_requests_total",
			Help: "Reasoning engine requests",
		},
		[]string{"provider", "model", "status"},
	)

	// EngineLatency records reasoning-engine latency in seconds.
	EngineLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "concierge_engine_latency_seconds",
			Help:    "Reasoning engine latency",
			Buckets: EngineBuckets,
		},
		[]string{"provider", "model"},
	)

	// EngineTokensTotal counts tokens by direction (input/output).
	EngineTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "concierge_engine_tokens_total",
			Help: "Token count",
		},
		[]string{"provider", "model", "direction"},
	)

	// ToolExecutionsTotal counts tool executions by name and outcome kind.
	ToolExecutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "concierge_tool_executions_total",
			Help: "Tool executions",
		},
		[]string{"tool", "outcome"},
	)

	// PersistFailuresTotal counts best-effort writes that were dropped.
	PersistFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "concierge_persist_failures_total",
			Help: "Dropped best-effort writes",
		},
		[]string{"kind"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		EngineRequestsTotal,
		EngineLatency,
		EngineTokensTotal,
		ToolExecutionsTotal,
		PersistFailuresTotal,
	)
}
