package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tradepilot/tradepilot/internal/llm"
	"github.com/tradepilot/tradepilot/internal/logger"
	"github.com/tradepilot/tradepilot/internal/metrics"
	"github.com/tradepilot/tradepilot/internal/models"
	"github.com/tradepilot/tradepilot/internal/parser"
)

const parseFailureReason = "Failed to parse analysis"

// ChartPredictor reads chart images, either as one structured read-out or as a chat stream
type ChartPredictor struct {
	gateway Gateway
	logger  *logger.PipelineLogger
	now     func() time.Time
}

// NewChartPredictor creates a new chart predictor
func NewChartPredictor(gateway Gateway, log *logrus.Logger) *ChartPredictor {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &ChartPredictor{
		gateway: gateway,
		logger:  logger.NewPipelineLogger(log),
		now:     time.Now,
	}
}

// ValidateChartRequest requires a non-empty conversation. Any mode other than
// structured is served as chat; roles are forwarded as given.
func ValidateChartRequest(req *models.ChartRequest) error {
	if req.Mode == "" {
		req.Mode = models.ChartModeChat
	}
	if len(req.Messages) == 0 {
		return fmt.Errorf("%w: messages are required", ErrInvalidChartRequest)
	}
	return nil
}

// Analyze returns the structured read-out. Unparseable replies come back as a
// degraded analysis, not an error.
func (c *ChartPredictor) Analyze(ctx context.Context, req *models.ChartRequest) (*models.ChartAnalysis, error) {
	start := c.now()
	outcome := metrics.OutcomeFailed
	defer func() {
		metrics.RecordPipelineRun(metrics.PipelineChart, outcome, c.now().Sub(start).Seconds())
	}()

	reply, err := c.gateway.Complete(ctx, llm.CompletionRequest{
		Operation:   "chart_structured",
		System:      chartStructuredSystemPrompt,
		Messages:    chartMessages(req.Messages),
		ImageBase64: req.ImageBase64,
	})
	if err != nil {
		c.logger.LogStepFailed(metrics.PipelineChart, "analyze", err, nil)
		if IsRateLimited(err) {
			outcome = metrics.OutcomeRateLimited
		}
		return nil, err
	}

	var analysis models.ChartAnalysis
	if err := parser.DecodeStripped(reply, &analysis); err != nil {
		metrics.RecordParseFailure(metrics.PipelineChart)
		c.logger.LogParseFailure(metrics.PipelineChart, err, reply)
		outcome = metrics.OutcomeDegraded
		return models.DegradedChartAnalysis(reply, parseFailureReason), nil
	}

	outcome = metrics.OutcomeSuccess
	c.logger.LogRunCompleted(metrics.PipelineChart, outcome, c.now().Sub(start), logrus.Fields{"mode": models.ChartModeStructured})
	return &analysis, nil
}

// Chat opens a conversational stream. The caller copies and closes the body.
func (c *ChartPredictor) Chat(ctx context.Context, req *models.ChartRequest) (io.ReadCloser, error) {
	start := c.now()
	body, err := c.gateway.Stream(ctx, llm.CompletionRequest{
		Operation:   "chart_chat",
		System:      chartChatSystemPrompt,
		Messages:    chartMessages(req.Messages),
		ImageBase64: req.ImageBase64,
	})
	if err != nil {
		outcome := metrics.OutcomeFailed
		if IsRateLimited(err) {
			outcome = metrics.OutcomeRateLimited
		}
		metrics.RecordPipelineRun(metrics.PipelineChart, outcome, c.now().Sub(start).Seconds())
		c.logger.LogStepFailed(metrics.PipelineChart, "chat", err, nil)
		return nil, err
	}

	metrics.RecordPipelineRun(metrics.PipelineChart, metrics.OutcomeSuccess, c.now().Sub(start).Seconds())
	return body, nil
}

// chartMessages copies the conversation, adding a default question when
// there is no user turn to carry the image.
func chartMessages(in []models.ChatMessage) []models.ChatMessage {
	out := make([]models.ChatMessage, 0, len(in)+1)
	hasUser := false
	for _, m := range in {
		if m.Role == "user" {
			hasUser = true
		}
		out = append(out, models.ChatMessage{Role: m.Role, Content: strings.TrimSpace(m.Content)})
	}
	if !hasUser {
		out = append(out, models.ChatMessage{Role: "user", Content: defaultChartQuestion})
	}
	return out
}
