package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/tradepilot/tradepilot/internal/models"
	"github.com/tradepilot/tradepilot/internal/repository"
	"github.com/tradepilot/tradepilot/internal/service"
)

const (
	rateLimitMessage = "Rate limit exceeded. Please try again later."

	defaultPostLimit = 20
	maxPostLimit     = 100
)

// Handler serves the API routes.
type Handler struct {
	strategy  StrategyService
	blog      BlogService
	chart     ChartService
	bots      repository.BotRepository
	backtests repository.BacktestResultRepository
	posts     repository.BlogPostRepository
	logger    *logrus.Logger
}

// ProcessStrategyRequest is the body of POST /api/strategies/process.
type ProcessStrategyRequest struct {
	Strategy *models.StrategyInput `json:"strategy" binding:"required"`
	UserID   string                `json:"userId" binding:"required"`
}

// GenerateBlogRequest is the optional body of POST /api/blog/generate.
type GenerateBlogRequest struct {
	Topic string `json:"topic"`
}

// ProcessStrategy runs the strategy pipeline.
func (h *Handler) ProcessStrategy(c *gin.Context) {
	var req ProcessStrategyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "strategy and userId are required"})
		return
	}

	result, err := h.strategy.Process(c.Request.Context(), req.Strategy, req.UserID)
	if err != nil {
		h.strategyError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"botId":           result.BotID,
		"analysis":        result.Analysis,
		"indicators":      result.Indicators,
		"backtestSummary": result.BacktestSummary,
	})
}

func (h *Handler) strategyError(c *gin.Context, err error) {
	_ = c.Error(err)

	if errors.Is(err, models.ErrStrategyIncomplete) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	body := gin.H{}
	var pe *service.PipelineError
	if errors.As(err, &pe) {
		body["botId"] = pe.BotID
	}

	if service.IsRateLimited(err) {
		body["error"] = rateLimitMessage
		c.JSON(http.StatusTooManyRequests, body)
		return
	}
	body["error"] = "Failed to process strategy"
	c.JSON(http.StatusInternalServerError, body)
}

// GenerateBlogPost runs the blog pipeline once.
func (h *Handler) GenerateBlogPost(c *gin.Context) {
	var req GenerateBlogRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
		return
	}

	post, err := h.blog.Generate(c.Request.Context(), req.Topic)
	if err != nil {
		_ = c.Error(err)
		if service.IsRateLimited(err) {
			c.JSON(http.StatusTooManyRequests, gin.H{"success": false, "error": rateLimitMessage})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to generate blog post"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "post": post})
}

// GetBot returns a strategy bot by ID.
func (h *Handler) GetBot(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	bot, err := h.bots.GetByID(c.Request.Context(), id)
	if err != nil {
		h.lookupError(c, err, "bot")
		return
	}
	c.JSON(http.StatusOK, bot)
}

// GetBotBacktest returns the latest backtest of a bot.
func (h *Handler) GetBotBacktest(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	result, err := h.backtests.GetLatestByBotID(c.Request.Context(), id)
	if err != nil {
		h.lookupError(c, err, "backtest")
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetBacktest returns a backtest result by ID.
func (h *Handler) GetBacktest(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	result, err := h.backtests.GetByID(c.Request.Context(), id)
	if err != nil {
		h.lookupError(c, err, "backtest")
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListBlogPosts returns published posts, newest first.
func (h *Handler) ListBlogPosts(c *gin.Context) {
	limit := defaultPostLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, maxPostLimit)
	}

	posts, err := h.posts.ListPublished(c.Request.Context(), limit)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list blog posts"})
		return
	}
	if posts == nil {
		posts = []*models.BlogPost{}
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

// GetBlogPost returns a published post by slug.
func (h *Handler) GetBlogPost(c *gin.Context) {
	post, err := h.posts.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.lookupError(c, err, "blog post")
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *Handler) lookupError(c *gin.Context, err error, what string) {
	if errors.Is(err, models.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": what + " not found"})
		return
	}
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load " + what})
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": models.ErrInvalidID.Error()})
		return uuid.Nil, false
	}
	return id, true
}
