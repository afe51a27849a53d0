package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tradepilot/tradepilot/internal/metrics"
	"github.com/tradepilot/tradepilot/internal/models"
	"github.com/tradepilot/tradepilot/internal/service"
)

const streamChunkSize = 4096

// PredictChart answers with a structured analysis or relays a chat stream.
func (h *Handler) PredictChart(c *gin.Context) {
	var req models.ChartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := service.ValidateChartRequest(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.IsStructured() {
		analysis, err := h.chart.Analyze(c.Request.Context(), &req)
		if err != nil {
			chartError(c, err)
			return
		}
		c.JSON(http.StatusOK, analysis)
		return
	}

	body, err := h.chart.Chat(c.Request.Context(), &req)
	if err != nil {
		chartError(c, err)
		return
	}
	defer body.Close()

	metrics.ChatStreamStarted()
	defer metrics.ChatStreamEnded()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	if err := relayStream(c, body); err != nil {
		_ = c.Error(err)
		h.logger.WithError(err).WithField("component", "http").Warn("Chart chat stream ended early")
	}
}

// relayStream copies upstream event-stream bytes to the client as they
// arrive, stopping when the client goes away.
func relayStream(c *gin.Context, body io.Reader) error {
	ctx := c.Request.Context()
	buf := make([]byte, streamChunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, readErr := body.Read(buf)
		if n > 0 {
			if _, err := c.Writer.Write(buf[:n]); err != nil {
				return err
			}
			c.Writer.Flush()
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return nil
			}
			return readErr
		}
	}
}

func chartError(c *gin.Context, err error) {
	_ = c.Error(err)
	if service.IsRateLimited(err) {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": rateLimitMessage})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to analyse chart"})
}
