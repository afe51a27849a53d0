package api

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/tradepilot/tradepilot/internal/models"
	"github.com/tradepilot/tradepilot/internal/service"
)

type MockStrategyService struct {
	mock.Mock
}

func (m *MockStrategyService) Process(ctx context.Context, input *models.StrategyInput, userID string) (*service.StrategyResult, error) {
	args := m.Called(ctx, input, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.StrategyResult), args.Error(1)
}

type MockBlogService struct {
	mock.Mock
}

func (m *MockBlogService) Generate(ctx context.Context, topic string) (*models.BlogPost, error) {
	args := m.Called(ctx, topic)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BlogPost), args.Error(1)
}

type MockChartService struct {
	mock.Mock
}

func (m *MockChartService) Analyze(ctx context.Context, req *models.ChartRequest) (*models.ChartAnalysis, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ChartAnalysis), args.Error(1)
}

func (m *MockChartService) Chat(ctx context.Context, req *models.ChartRequest) (io.ReadCloser, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

type MockBotRepository struct {
	mock.Mock
}

func (m *MockBotRepository) Create(ctx context.Context, bot *models.StrategyBot) error {
	return m.Called(ctx, bot).Error(0)
}

func (m *MockBotRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.StrategyBot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StrategyBot), args.Error(1)
}

func (m *MockBotRepository) MarkReady(ctx context.Context, id uuid.UUID, gen *models.BotGeneration) error {
	return m.Called(ctx, id, gen).Error(0)
}

func (m *MockBotRepository) MarkError(ctx context.Context, id uuid.UUID, message string) error {
	return m.Called(ctx, id, message).Error(0)
}

type MockBacktestRepository struct {
	mock.Mock
}

func (m *MockBacktestRepository) Create(ctx context.Context, result *models.BacktestResult) error {
	return m.Called(ctx, result).Error(0)
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

type MockBlogPostRepository struct {
	mock.Mock
}

func (m *MockBlogPostRepository) Create(ctx context.Context, post *models.BlogPost) error {
	return m.Called(ctx, post).Error(0)
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
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BlogPost), args.Error(1)
}
