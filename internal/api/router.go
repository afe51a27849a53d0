// Package api exposes the TradePilot pipelines and read endpoints over HTTP.
package api

import (
	"context"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/tradepilot/tradepilot/internal/metrics"
	"github.com/tradepilot/tradepilot/internal/models"
	"github.com/tradepilot/tradepilot/internal/repository"
	"github.com/tradepilot/tradepilot/internal/service"
)

// ChatStreamPath is the route that relays chart chat streams.
const ChatStreamPath = "/api/chart/predict"

// StrategyService processes submitted strategies.
type StrategyService interface {
	Process(ctx context.Context, input *models.StrategyInput, userID string) (*service.StrategyResult, error)
}

// BlogService generates and publishes blog posts.
type BlogService interface {
	Generate(ctx context.Context, topic string) (*models.BlogPost, error)
}

// ChartService analyses chart screenshots.
type ChartService interface {
	Analyze(ctx context.Context, req *models.ChartRequest) (*models.ChartAnalysis, error)
	Chat(ctx context.Context, req *models.ChartRequest) (io.ReadCloser, error)
}

// Dependencies holds everything the router needs to serve requests.
type Dependencies struct {
	Strategy StrategyService
	Blog     BlogService
	Chart    ChartService

	Bots      repository.BotRepository
	Backtests repository.BacktestResultRepository
	Posts     repository.BlogPostRepository

	Logger *logrus.Logger
	// MetricsPath exposes Prometheus metrics when set.
	MetricsPath string
}

// NewRouter builds the gin engine with middleware and all routes registered.
func NewRouter(deps Dependencies) *gin.Engine {
	if deps.Logger == nil {
		deps.Logger = logrus.StandardLogger()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(deps.Logger))
	router.Use(CORS())
	router.Use(Metrics())

	h := &Handler{
		strategy:  deps.Strategy,
		blog:      deps.Blog,
		chart:     deps.Chart,
		bots:      deps.Bots,
		backtests: deps.Backtests,
		posts:     deps.Posts,
		logger:    deps.Logger,
	}

	api := router.Group("/api")
	{
		api.POST("/strategies/process", h.ProcessStrategy)
		api.POST("/blog/generate", h.GenerateBlogPost)
		api.POST("/chart/predict", h.PredictChart)

		api.GET("/bots/:id", h.GetBot)
		api.GET("/bots/:id/backtest", h.GetBotBacktest)
		api.GET("/backtests/:id", h.GetBacktest)
		api.GET("/blog/posts", h.ListBlogPosts)
		api.GET("/blog/posts/:slug", h.GetBlogPost)
	}

	if deps.MetricsPath != "" {
		router.GET(deps.MetricsPath, gin.WrapH(metrics.Handler()))
	}

	return router
}
