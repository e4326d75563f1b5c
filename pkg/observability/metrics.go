// Package observability provides Prometheus metrics for panel calls and
// HTTP middleware for the commands that serve them.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/rhuss/opexcore/pkg/api"
)

// PanelBuckets defines histogram buckets for panel API latencies,
// ranging from 10ms to 30s.
var PanelBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}

var (
	// PanelRequestsTotal counts backend calls by backend, operation and outcome.
	PanelRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "opexcore_panel_requests_total",
			Help: "Panel API requests",
		},
		[]string{"backend", "op", "outcome"},
	)

	// PanelRequestDuration records backend call latency in seconds.
	PanelRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "opexcore_panel_request_duration_seconds",
			Help:    "Panel API request duration",
			Buckets: PanelBuckets,
		},
		[]string{"backend", "op"},
	)

	// PanelRetriesTotal counts retried read attempts.
	PanelRetriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "opexcore_panel_retries_total",
			Help: "Retried panel API reads",
		},
		[]string{"backend", "op"},
	)

	// PanelInFlight tracks calls awaiting a backend response.
	PanelInFlight = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "opexcore_panel_requests_in_flight",
			Help: "Panel API requests in flight",
		},
		[]string{"backend"},
	)

	// RequestsTotal counts requests served by opexcore commands.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "opexcore_http_requests_total",
			Help: "Served HTTP requests",
		},
		[]string{"method", "status"},
	)

	// RequestDuration records served request duration in seconds.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "opexcore_http_request_duration_seconds",
			Help:    "Served HTTP request duration",
			Buckets: PanelBuckets,
		},
		[]string{"method"},
	)

	// ToolCallsTotal counts MCP tool invocations by tool and outcome.
	ToolCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "opexcore_tool_calls_total",
			Help: "MCP tool calls",
		},
		[]string{"tool", "outcome"},
	)

	// AuthRejectedTotal counts requests rejected by the auth middleware.
	AuthRejectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "opexcore_auth_rejected_total",
			Help: "Requests rejected by authentication or rate limiting",
		},
		[]string{"reason"},
	)
)

func init() {
	prometheus.MustRegister(
		PanelRequestsTotal,
		PanelRequestDuration,
		PanelRetriesTotal,
		PanelInFlight,
		RequestsTotal,
		RequestDuration,
		ToolCallsTotal,
		AuthRejectedTotal,
	)
}

// Outcome returns the metric label for a call result: "ok" or the error type.
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if apiErr, ok := api.AsAPIError(err); ok {
		return string(apiErr.Type)
	}
	return "error"
}

// ObserveCall records one completed backend call.
func ObserveCall(backend api.Kind, op string, err error, d time.Duration) {
	PanelRequestsTotal.WithLabelValues(string(backend), op, Outcome(err)).Inc()
	PanelRequestDuration.WithLabelValues(string(backend), op).Observe(d.Seconds())
}
