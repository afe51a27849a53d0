package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const maxErrorBodyBytes = 4096

// Stream opens a streaming completion and returns the gateway's raw
// event-stream body. The caller owns the body and must close it.
func (c *Client) Stream(ctx context.Context, req CompletionRequest) (io.ReadCloser, error) {
	op := operationName(req)

	chatReq := c.buildRequest(req, true)
	payload, err := json.Marshal(chatReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal stream request: %w", err)
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build stream request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	start := time.Now()
	resp, err := c.http.Do(ctx, httpReq)
	GatewayLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		GatewayRequestsTotal.WithLabelValues(op, "network_error").Inc()
		c.logger.WithError(err).WithField("operation", op).Error("AI gateway stream request failed")
		return nil, fmt.Errorf("ai gateway stream request failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		resp.Body.Close()
		return nil, c.statusError(op, resp.StatusCode, string(body))
	}

	GatewayRequestsTotal.WithLabelValues(op, "success").Inc()
	c.logger.LogRequest(op, chatReq.Model, true, time.Since(start))

	return resp.Body, nil
}
