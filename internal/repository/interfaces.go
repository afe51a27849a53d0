package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/tradepilot/tradepilot/internal/models"
)

// BotRepository defines the interface for strategy bot data access
type BotRepository interface {
	Create(ctx context.Context, bot *models.StrategyBot) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.StrategyBot, error)
	MarkReady(ctx context.Context, id uuid.UUID, gen *models.BotGeneration) error
	MarkError(ctx context.Context, id uuid.UUID, message string) error
}

// BacktestResultRepository defines the interface for backtest result data access
type BacktestResultRepository interface {
	Create(ctx context.Context, result *models.BacktestResult) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.BacktestResult, error)
	GetLatestByBotID(ctx context.Context, botID uuid.UUID) (*models.BacktestResult, error)
}

// BlogPostRepository defines the interface for blog post data access
type BlogPostRepository interface {
	Create(ctx context.Context, post *models.BlogPost) error
	GetBySlug(ctx context.Context, slug string) (*models.BlogPost, error)
	ListPublished(ctx context.Context, limit int) ([]*models.BlogPost, error)
}
