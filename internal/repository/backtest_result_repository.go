package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tradepilot/tradepilot/internal/database"
	"github.com/tradepilot/tradepilot/internal/models"
)

const backtestColumns = `id, bot_id, user_id, symbol, timeframe, start_date, end_date,
	initial_capital, final_capital, total_trades, winning_trades, losing_trades,
	win_rate, profit_loss, profit_loss_percent, max_drawdown, sharpe_ratio,
	trades, equity_curve, created_at`

// PostgresBacktestResultRepository implements BacktestResultRepository for PostgreSQL
type PostgresBacktestResultRepository struct {
	pool database.Pool
}

// NewPostgresBacktestResultRepository creates a new backtest result repository
func NewPostgresBacktestResultRepository(pool database.Pool) BacktestResultRepository {
	return &PostgresBacktestResultRepository{pool: pool}
}

// Create inserts a backtest result
func (r *PostgresBacktestResultRepository) Create(ctx context.Context, result *models.BacktestResult) error {
	if result.ID == uuid.Nil {
		result.ID = uuid.New()
	}

	trades, err := marshalJSON(result.Trades, "[]")
	if err != nil {
		return fmt.Errorf("failed to encode trades: %w", err)
	}
	equity, err := marshalJSON(result.EquityCurve, "[]")
	if err != nil {
		return fmt.Errorf("failed to encode equity curve: %w", err)
	}

	query := `
		INSERT INTO backtest_results (
			id, bot_id, user_id, symbol, timeframe, start_date, end_date,
			initial_capital, final_capital, total_trades, winning_trades, losing_trades,
			win_rate, profit_loss, profit_loss_percent, max_drawdown, sharpe_ratio,
			trades, equity_curve
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
		RETURNING created_at
	`

	err = r.pool.QueryRow(ctx, query,
		result.ID, result.BotID, result.UserID, result.Symbol, result.Timeframe, result.StartDate, result.EndDate,
		result.InitialCapital, result.FinalCapital, result.TotalTrades, result.WinningTrades, result.LosingTrades,
		result.WinRate, result.ProfitLoss, result.ProfitLossPercent, result.MaxDrawdown, result.SharpeRatio,
		trades, equity,
	).Scan(&result.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save backtest result: %w", err)
	}
	return nil
}

// GetByID retrieves a backtest result by ID
func (r *PostgresBacktestResultRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.BacktestResult, error) {
	query := `SELECT ` + backtestColumns + ` FROM backtest_results WHERE id = $1`
	return r.getOne(ctx, query, id)
}

// GetLatestByBotID retrieves the newest backtest result for a bot
func (r *PostgresBacktestResultRepository) GetLatestByBotID(ctx context.Context, botID uuid.UUID) (*models.BacktestResult, error) {
	query := `SELECT ` + backtestColumns + ` FROM backtest_results WHERE bot_id = $1 ORDER BY created_at DESC LIMIT 1`
	return r.getOne(ctx, query, botID)
}

func (r *PostgresBacktestResultRepository) getOne(ctx context.Context, query string, arg interface{}) (*models.BacktestResult, error) {
	result := &models.BacktestResult{}
	var trades, equity []byte
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&result.ID, &result.BotID, &result.UserID, &result.Symbol, &result.Timeframe, &result.StartDate, &result.EndDate,
		&result.InitialCapital, &result.FinalCapital, &result.TotalTrades, &result.WinningTrades, &result.LosingTrades,
		&result.WinRate, &result.ProfitLoss, &result.ProfitLossPercent, &result.MaxDrawdown, &result.SharpeRatio,
		&trades, &equity, &result.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan backtest result: %w", err)
	}

	if err := unmarshalJSON(trades, &result.Trades); err != nil {
		return nil, fmt.Errorf("failed to decode trades: %w", err)
	}
	if err := unmarshalJSON(equity, &result.EquityCurve); err != nil {
		return nil, fmt.Errorf("failed to decode equity curve: %w", err)
	}
	if result.Trades == nil {
		result.Trades = []models.TradeEntry{}
	}
	if result.EquityCurve == nil {
		result.EquityCurve = []float64{}
	}

	return result, nil
}
