package service

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/tradepilot/tradepilot/internal/llm"
	"github.com/tradepilot/tradepilot/internal/models"
	"github.com/tradepilot/tradepilot/internal/scraper"
)

// MockGateway mocks the AI gateway
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Complete(ctx context.Context, req llm.CompletionRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *MockGateway) Stream(ctx context.Context, req llm.CompletionRequest) (io.ReadCloser, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

// MockBotRepository mocks bot persistence
type MockBotRepository struct {
	mock.Mock
}

func (m *MockBotRepository) Create(ctx context.Context, bot *models.StrategyBot) error {
	args := m.Called(ctx, bot)
	if bot.ID == uuid.Nil {
		bot.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *MockBotRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.StrategyBot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StrategyBot), args.Error(1)
}

func (m *MockBotRepository) MarkReady(ctx context.Context, id uuid.UUID, gen *models.BotGeneration) error {
	args := m.Called(ctx, id, gen)
	return args.Error(0)
}

func (m *MockBotRepository) MarkError(ctx context.Context, id uuid.UUID, message string) error {
	args := m.Called(ctx, id, message)
	return args.Error(0)
}

// MockBacktestRepository mocks backtest persistence
type MockBacktestRepository struct {
	mock.Mock
}

func (m *MockBacktestRepository) Create(ctx context.Context, result *models.BacktestResult) error {
	args := m.Called(ctx, result)
	return args.Error(0)
}

func (m *MockBacktestRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.BacktestResult, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BacktestResult), args.Error(1)
}

func (m *MockBacktestRepository) GetLatestByBotID(ctx context.Context, botID uuid.UUID) (*models.BacktestResult, error) {
	args := m.Called(ctx, botID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BacktestResult), args.Error(1)
}

// MockBlogPostRepository mocks blog post persistence
type MockBlogPostRepository struct {
	mock.Mock
}

func (m *MockBlogPostRepository) Create(ctx context.Context, post *models.BlogPost) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockBlogPostRepository) GetBySlug(ctx context.Context, slug string) (*models.BlogPost, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BlogPost), args.Error(1)
}

func (m *MockBlogPostRepository) ListPublished(ctx context.Context, limit int) ([]*models.BlogPost, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]*models.BlogPost), args.Error(1)
}

// MockScraper mocks the scraping service
type MockScraper struct {
	mock.Mock
}

func (m *MockScraper) Scrape(ctx context.Context, url string) (*scraper.Page, error) {
	args := m.Called(ctx, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*scraper.Page), args.Error(1)
}
