package llm

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// GatewayRequestsTotal tracks gateway calls by operation and result
	GatewayRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_gateway_requests_total",
			Help: "Total number of AI gateway requests",
		},
		[]string{"operation", "result"}, // result: success, rate_limited, upstream_error, network_error
	)

	// GatewayLatency tracks time to a complete reply, or to response headers for streams
	GatewayLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_gateway_latency_seconds",
			Help:    "AI gateway request latency in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 40, 90},
		},
		[]string{"operation"},
	)

	// GatewayTokensTotal tracks token usage reported by the gateway
	GatewayTokensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_gateway_tokens_total",
			Help: "Total number of tokens reported by the AI gateway",
		},
		[]string{"kind"}, // prompt, completion
	)
)
