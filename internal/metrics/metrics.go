// Package metrics provides the centralized Prometheus metrics registry for the API.
package metrics

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tradepilot"

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// HTTP metrics
var (
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by route and status",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests in seconds",
		Buckets:   []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
	}, []string{"method", "route"})

	ActiveChatStreams = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "chart_chat_streams_active",
		Help:      "Number of chart chat streams currently being relayed",
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(HTTPRequestsTotal)
		registry.MustRegister(HTTPRequestDuration)
		registry.MustRegister(ActiveChatStreams)

		registry.MustRegister(PipelineRunsTotal)
		registry.MustRegister(PipelineDuration)
		registry.MustRegister(ParseFailuresTotal)
		registry.MustRegister(FallbackResultsTotal)
		registry.MustRegister(SlugConflictsTotal)
		registry.MustRegister(BotStatusTransitionsTotal)
		registry.MustRegister(BlogPostsPublishedTotal)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	return InitRegistry()
}

// Handler returns the Prometheus HTTP handler. It also exposes collectors
// registered on the default registry by client packages.
func Handler() http.Handler {
	return promhttp.HandlerFor(prometheus.Gatherers{GetRegistry(), prometheus.DefaultGatherer}, promhttp.HandlerOpts{})
}

// RecordHTTPRequest records a served HTTP request.
func RecordHTTPRequest(method, route string, status int, durationSeconds float64) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(durationSeconds)
}

// ChatStreamStarted increments the active chat stream gauge.
func ChatStreamStarted() {
	ActiveChatStreams.Inc()
}

// ChatStreamEnded decrements the active chat stream gauge.
func ChatStreamEnded() {
	ActiveChatStreams.Dec()
}
