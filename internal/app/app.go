// Package app wires configuration, storage and the pipelines for the binaries.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/tradepilot/tradepilot/internal/config"
	"github.com/tradepilot/tradepilot/internal/database"
	"github.com/tradepilot/tradepilot/internal/llm"
	"github.com/tradepilot/tradepilot/internal/logger"
	"github.com/tradepilot/tradepilot/internal/metrics"
	"github.com/tradepilot/tradepilot/internal/repository"
	"github.com/tradepilot/tradepilot/internal/scraper"
	"github.com/tradepilot/tradepilot/internal/service"
)

// Build information, set via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
)

// LoadConfig reads the config file and environment, overlays AWS secrets when
// AWS_SECRETS_ENABLED=true, and validates the result.
func LoadConfig(ctx context.Context, path string) (*config.Config, error) {
	cfg, err := config.LoadWithDefaults(path)
	if err != nil {
		return nil, err
	}

	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			return nil, errors.New("AWS_REGION and AWS_SECRET_NAME must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(ctx, cfg, region, secretName); err != nil {
			return nil, fmt.Errorf("failed to load secrets: %w", err)
		}
	}

	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := config.ValidateEnvironment(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Options control optional start-up behaviour.
type Options struct {
	Migrate bool
}

// App holds the constructed dependencies.
type App struct {
	Config *config.Config
	Logger *logrus.Logger
	DB     *database.DB
	Repos  *repository.Repositories

	Gateway *llm.Client
	Scraper *scraper.Client

	Strategy *service.StrategyProcessor
	Blog     *service.BlogGenerator
	Chart    *service.ChartPredictor
}

// New builds every dependency. Clients refuse to start without their API keys,
// so misconfiguration fails here before any external call.
func New(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	log := logger.NewLogger(cfg.App.LogLevel, cfg.App.Environment)
	metrics.InitRegistry()

	gateway, err := llm.New(cfg.AIGateway, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create AI gateway client: %w", err)
	}

	scrapeClient, err := scraper.NewClient(cfg.Scraper, log)
	if err != nil {
		_ = gateway.Close()
		return nil, fmt.Errorf("failed to create scraper client: %w", err)
	}

	db, err := database.Initialize(ctx, cfg, opts.Migrate, log)
	if err != nil {
		_ = gateway.Close()
		_ = scrapeClient.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	log.Info("Database connection established")

	repos, err := repository.NewRepositories(db)
	if err != nil {
		db.Close()
		_ = gateway.Close()
		_ = scrapeClient.Close()
		return nil, err
	}

	cached := scraper.NewCachedScraper(scrapeClient, cfg.Scraper.CacheTTL(), log)

	return &App{
		Config:   cfg,
		Logger:   log,
		DB:       db,
		Repos:    repos,
		Gateway:  gateway,
		Scraper:  scrapeClient,
		Strategy: service.NewStrategyProcessor(gateway, repos.Bot, repos.Backtest, cfg.Strategy, log),
		Blog:     service.NewBlogGenerator(cached, gateway, repos.BlogPost, cfg.Blog, log),
		Chart:    service.NewChartPredictor(gateway, log),
	}, nil
}

// Close releases connections.
func (a *App) Close() {
	if err := a.Gateway.Close(); err != nil {
		a.Logger.WithError(err).Warn("Failed to close AI gateway client")
	}
	if err := a.Scraper.Close(); err != nil {
		a.Logger.WithError(err).Warn("Failed to close scraper client")
	}
	a.DB.Close()
}
