package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"

	"github.com/tradepilot/tradepilot/internal/config"
	"github.com/tradepilot/tradepilot/internal/httpclient"
	"github.com/tradepilot/tradepilot/internal/logger"
	"github.com/tradepilot/tradepilot/internal/models"
)

const dataURLPrefix = "data:image/png;base64,"

// CompletionRequest is one chat-completion call against the gateway.
type CompletionRequest struct {
	// Operation labels the call in logs and metrics (strategy, blog, chart_structured, chart_chat).
	Operation   string
	System      string
	Messages    []models.ChatMessage
	ImageBase64 string
}

// Client talks to an OpenAI-compatible chat-completions gateway.
type Client struct {
	api     *openai.Client
	http    *httpclient.RateLimitedClient
	cfg     config.AIGatewayConfig
	logger  *logger.GatewayLogger
	timeout time.Duration
}

// New creates a gateway client. It refuses to build without a key or endpoint.
func New(cfg config.AIGatewayConfig, log *logrus.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, ErrMissingBaseURL
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	gl := logger.NewGatewayLogger(log, "ai_gateway")

	httpCfg := httpclient.DefaultConfig()
	// streams stay open far longer than any one-shot call; one-shot calls get a context deadline instead
	httpCfg.Timeout = 0
	httpCfg.MaxRetries = cfg.RetryAttempts
	// every answered completion is billed, so only unanswered requests are retried
	httpCfg.CheckRetry = httpclient.ConnectionRetryPolicy
	httpCfg.RateLimit = 0
	transport := httpclient.New(httpCfg, gl.Entry)

	apiCfg := openai.DefaultConfig(cfg.APIKey)
	apiCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	apiCfg.HTTPClient = doer{transport}

	return &Client{
		api:     openai.NewClientWithConfig(apiCfg),
		http:    transport,
		cfg:     cfg,
		logger:  gl,
		timeout: cfg.RequestTimeout(),
	}, nil
}

// Complete performs a non-streaming call and returns the first choice's content.
func (c *Client) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	op := operationName(req)
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	chatReq := c.buildRequest(req, false)

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, chatReq)
	GatewayLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		return "", c.mapError(op, err)
	}

	GatewayTokensTotal.WithLabelValues("prompt").Add(float64(resp.Usage.PromptTokens))
	GatewayTokensTotal.WithLabelValues("completion").Add(float64(resp.Usage.CompletionTokens))

	if len(resp.Choices) == 0 {
		GatewayRequestsTotal.WithLabelValues(op, "empty").Inc()
		return "", ErrEmptyResponse
	}

	GatewayRequestsTotal.WithLabelValues(op, "success").Inc()
	c.logger.LogRequest(op, chatReq.Model, false, time.Since(start))

	return resp.Choices[0].Message.Content, nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	return c.http.Close()
}

func (c *Client) buildRequest(req CompletionRequest, stream bool) openai.ChatCompletionRequest {
	model := c.cfg.Model
	if req.ImageBase64 != "" && c.cfg.VisionModel != "" {
		model = c.cfg.VisionModel
	}

	return openai.ChatCompletionRequest{
		Model:       model,
		Messages:    buildMessages(req),
		Temperature: c.cfg.Temperature,
		Stream:      stream,
	}
}

// buildMessages prepends the system prompt and attaches the image to the newest user message.
func buildMessages(req CompletionRequest) []openai.ChatCompletionMessage {
	msgs := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}

	imageAt := -1
	if req.ImageBase64 != "" {
		for i := len(req.Messages) - 1; i >= 0; i-- {
			if req.Messages[i].Role == openai.ChatMessageRoleUser {
				imageAt = i
				break
			}
		}
	}

	for i, m := range req.Messages {
		if i != imageAt {
			msgs = append(msgs, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
			continue
		}
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role: m.Role,
			MultiContent: []openai.ChatMessagePart{
				{Type: openai.ChatMessagePartTypeText, Text: m.Content},
				{
					Type: openai.ChatMessagePartTypeImageURL,
					ImageURL: &openai.ChatMessageImageURL{
						URL:    ImageDataURL(req.ImageBase64),
						Detail: openai.ImageURLDetailAuto,
					},
				},
			},
		})
	}

	// no user turn to carry the image: send it on its own
	if req.ImageBase64 != "" && imageAt < 0 {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{
					Type:     openai.ChatMessagePartTypeImageURL,
					ImageURL: &openai.ChatMessageImageURL{URL: ImageDataURL(req.ImageBase64), Detail: openai.ImageURLDetailAuto},
				},
			},
		})
	}

	return msgs
}

// ImageDataURL turns raw base64 image data into a data URL. Values that
// already are data URLs pass through.
func ImageDataURL(b64 string) string {
	if strings.HasPrefix(b64, "data:") {
		return b64
	}
	return dataURLPrefix + b64
}

func (c *Client) mapError(op string, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return c.statusError(op, apiErr.HTTPStatusCode, apiErr.Message)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		body := ""
		if reqErr.Err != nil {
			body = reqErr.Err.Error()
		}
		return c.statusError(op, reqErr.HTTPStatusCode, body)
	}

	GatewayRequestsTotal.WithLabelValues(op, "network_error").Inc()
	c.logger.WithError(err).WithField("operation", op).Error("AI gateway request failed")
	return fmt.Errorf("ai gateway request failed: %w", err)
}

func (c *Client) statusError(op string, status int, body string) error {
	if status == http.StatusTooManyRequests {
		GatewayRequestsTotal.WithLabelValues(op, "rate_limited").Inc()
		c.logger.LogRateLimited(op)
		return ErrRateLimited
	}

	GatewayRequestsTotal.WithLabelValues(op, "upstream_error").Inc()
	c.logger.LogUpstreamError(op, status, body)
	return &UpstreamError{StatusCode: status, Body: logger.TruncatePayload(body)}
}

func operationName(req CompletionRequest) string {
	if req.Operation == "" {
		return "completion"
	}
	return req.Operation
}

// doer lets go-openai share the rate-limited, retrying transport.
type doer struct {
	c *httpclient.RateLimitedClient
}

func (d doer) Do(req *http.Request) (*http.Response, error) {
	return d.c.Do(req.Context(), req)
}
