// Package observability provides metrics and tracing for the MCP server.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics records protocol-level events. The engine and the SSE transport
// report through this interface so serving code never depends on a
// concrete metrics backend.
type Metrics interface {
	// RecordRequest records one handled JSON-RPC request
	RecordRequest(method, status string, duration time.Duration)

	// RecordToolCall records one tool invocation
	RecordToolCall(tool, status string, duration time.Duration)

	// RecordSessionOpened / RecordSessionClosed track live SSE sessions
	RecordSessionOpened()
	RecordSessionClosed()
}

// Request/tool call status labels
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// NopMetrics returns a Metrics that records nothing.
func NopMetrics() Metrics {
	return nopMetrics{}
}

type nopMetrics struct{}

func (nopMetrics) RecordRequest(string, string, time.Duration)  {}
func (nopMetrics) RecordToolCall(string, string, time.Duration) {}
func (nopMetrics) RecordSessionOpened()                         {}
func (nopMetrics) RecordSessionClosed()                         {}

// MetricsConfig configures the Prometheus metrics provider
type MetricsConfig struct {
	// Namespace is the Prometheus namespace (default: mcp)
	Namespace string

	// Registry to register collectors on; a fresh registry is created
	// when nil
	Registry *prometheus.Registry

	// HistogramBuckets overrides the latency buckets
	HistogramBuckets []float64

	// ConstLabels are added to every metric
	ConstLabels prometheus.Labels
}

// PrometheusMetrics implements Metrics using Prometheus collectors.
type PrometheusMetrics struct {
	registry *prometheus.Registry

	requestTotal     *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	toolCallTotal    *prometheus.CounterVec
	toolCallDuration *prometheus.HistogramVec
	activeSessions   prometheus.Gauge
}

// NewPrometheusMetrics creates and registers the server's collectors.
func NewPrometheusMetrics(config MetricsConfig) (*PrometheusMetrics, error) {
	if config.Namespace == "" {
		config.Namespace = "mcp"
	}
	if config.Registry == nil {
		config.Registry = prometheus.NewRegistry()
	}
	if config.HistogramBuckets == nil {
		config.HistogramBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	}

	m := &PrometheusMetrics{
		registry: config.Registry,
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "requests_total",
			Help:        "Total JSON-RPC requests handled, by method and status.",
			ConstLabels: config.ConstLabels,
		}, []string{"method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Name:        "request_duration_seconds",
			Help:        "JSON-RPC request handling latency, by method.",
			Buckets:     config.HistogramBuckets,
			ConstLabels: config.ConstLabels,
		}, []string{"method"}),
		toolCallTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "tool_calls_total",
			Help:        "Total tool invocations, by tool and status.",
			ConstLabels: config.ConstLabels,
		}, []string{"tool", "status"}),
		toolCallDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Name:        "tool_call_duration_seconds",
			Help:        "Tool invocation latency, by tool.",
			Buckets:     config.HistogramBuckets,
			ConstLabels: config.ConstLabels,
		}, []string{"tool"}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Name:        "active_sessions",
			Help:        "Currently connected SSE sessions.",
			ConstLabels: config.ConstLabels,
		}),
	}

	collectors := []prometheus.Collector{
		m.requestTotal,
		m.requestDuration,
		m.toolCallTotal,
		m.toolCallDuration,
		m.activeSessions,
	}
	for _, c := range collectors {
		if err := config.Registry.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// RecordRequest records one handled JSON-RPC request
func (m *PrometheusMetrics) RecordRequest(method, status string, duration time.Duration) {
	m.requestTotal.WithLabelValues(method, status).Inc()
	m.requestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordToolCall records one tool invocation
func (m *PrometheusMetrics) RecordToolCall(tool, status string, duration time.Duration) {
	m.toolCallTotal.WithLabelValues(tool, status).Inc()
	m.toolCallDuration.WithLabelValues(tool).Observe(duration.Seconds())
}

// RecordSessionOpened increments the live session gauge
func (m *PrometheusMetrics) RecordSessionOpened() {
	m.activeSessions.Inc()
}

// RecordSessionClosed decrements the live session gauge
func (m *PrometheusMetrics) RecordSessionClosed() {
	m.activeSessions.Dec()
}

// Handler exposes the registry for scraping, typically mounted on /metrics.
func (m *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
