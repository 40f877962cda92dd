// Package observability provides Prometheus metrics for the planner core.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects the planner's operational metrics: broadcast fan-out,
// assistant tool execution, and LLM usage.
type Metrics struct {
	// BroadcastDeliveries counts messages delivered to subscribers.
	// Labels: type (broadcast message type)
	BroadcastDeliveries *prometheus.CounterVec

	// BroadcastFailures counts subscriber sends that failed and caused
	// the subscriber to be dropped.
	BroadcastFailures prometheus.Counter

	// Subscribers is a gauge of currently registered subscribers.
	Subscribers prometheus.Gauge

	// ToolExecutions counts assistant tool invocations.
	// Labels: tool, status (success|error)
	ToolExecutions *prometheus.CounterVec

	// LLMRequests counts chat completions by provider and status.
	// Labels: provider, status (success|error)
	LLMRequests *prometheus.CounterVec
}

// NewMetrics creates and registers all planner metrics with the given
// registerer. Call once at startup; pass prometheus.DefaultRegisterer for
// the /metrics endpoint.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		BroadcastDeliveries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "planner_broadcast_deliveries_total",
				Help: "Total broadcast messages delivered to subscribers",
			},
			[]string{"type"},
		),
		BroadcastFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "planner_broadcast_failures_total",
				Help: "Total subscriber sends that failed and dropped the subscriber",
			},
		),
		Subscribers: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "planner_broadcast_subscribers",
				Help: "Currently registered broadcast subscribers",
			},
		),
		ToolExecutions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "planner_tool_executions_total",
				Help: "Total assistant tool invocations",
			},
			[]string{"tool", "status"},
		),
		LLMRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "planner_llm_requests_total",
				Help: "Total LLM completion requests",
			},
			[]string{"provider", "status"},
		),
	}
}
