// Package logger provides AI gateway and scraper logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// GatewayLogger provides dedicated logging for calls to external AI and scraping services.
type GatewayLogger struct {
	*logrus.Entry
}

// NewGatewayLogger creates a new gateway logger for the named upstream.
func NewGatewayLogger(baseLogger *logrus.Logger, upstream string) *GatewayLogger {
	return &GatewayLogger{
		Entry: baseLogger.WithFields(logrus.Fields{
			"component": "ai_gateway",
			"upstream":  upstream,
		}),
	}
}

// LogRequest logs a completed upstream request.
func (gl *GatewayLogger) LogRequest(operation, model string, streaming bool, latency time.Duration) {
	gl.WithFields(logrus.Fields{
		"operation":  operation,
		"model":      model,
		"streaming":  streaming,
		"latency_ms": latency.Milliseconds(),
	}).Info("Upstream request completed")
}

// LogUpstreamError logs a non-2xx upstream answer. The body is truncated.
func (gl *GatewayLogger) LogUpstreamError(operation string, statusCode int, body string) {
	gl.WithFields(logrus.Fields{
		"operation":   operation,
		"status_code": statusCode,
		"body":        TruncatePayload(body),
	}).Error("Upstream returned an error")
}

// LogRateLimited logs a 429 answer from upstream.
func (gl *GatewayLogger) LogRateLimited(operation string) {
	gl.WithField("operation", operation).Warn("Upstream rate limit exceeded")
}

// LogCacheHit logs a cache hit for an upstream resource.
func (gl *GatewayLogger) LogCacheHit(key string) {
	gl.WithField("cache_key", key).Debug("Cache hit")
}
