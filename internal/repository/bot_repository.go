package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tradepilot/tradepilot/internal/database"
	"github.com/tradepilot/tradepilot/internal/models"
)

// PostgresBotRepository implements BotRepository for PostgreSQL
type PostgresBotRepository struct {
	pool database.Pool
}

// NewPostgresBotRepository creates a new strategy bot repository
func NewPostgresBotRepository(pool database.Pool) BotRepository {
	return &PostgresBotRepository{pool: pool}
}

// Create inserts a new bot. A nil ID is replaced with a fresh UUID.
func (r *PostgresBotRepository) Create(ctx context.Context, bot *models.StrategyBot) error {
	if bot.ID == uuid.Nil {
		bot.ID = uuid.New()
	}
	if bot.Status == "" {
		bot.Status = models.BotStatusGenerating
	}
	if !bot.Status.Valid() {
		return models.ErrInvalidBotStatus
	}

	indicators, err := marshalJSON(bot.Indicators, "[]")
	if err != nil {
		return fmt.Errorf("failed to encode indicators: %w", err)
	}
	riskParams, err := marshalJSON(bot.RiskParams, "{}")
	if err != nil {
		return fmt.Errorf("failed to encode risk params: %w", err)
	}

	query := `
		INSERT INTO strategy_bots (
			id, strategy_id, user_id, name, status, analysis, indicators,
			entry_logic, exit_logic, risk_params, bot_code, broker
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at
	`

	err = r.pool.QueryRow(ctx, query,
		bot.ID, bot.StrategyID, bot.UserID, bot.Name, string(bot.Status), bot.Analysis, indicators,
		bot.EntryLogic, bot.ExitLogic, riskParams, bot.BotCode, bot.Broker,
	).Scan(&bot.CreatedAt, &bot.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create strategy bot: %w", err)
	}

	return nil
}

// GetByID retrieves a bot by ID
func (r *PostgresBotRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.StrategyBot, error) {
	query := `
		SELECT id, strategy_id, user_id, name, status, analysis, indicators,
			entry_logic, exit_logic, risk_params, bot_code, broker, error_message,
			created_at, updated_at
		FROM strategy_bots WHERE id = $1
	`

	bot := &models.StrategyBot{}
	var status string
	var indicators, riskParams []byte
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&bot.ID, &bot.StrategyID, &bot.UserID, &bot.Name, &status, &bot.Analysis, &indicators,
		&bot.EntryLogic, &bot.ExitLogic, &riskParams, &bot.BotCode, &bot.Broker, &bot.ErrorMessage,
		&bot.CreatedAt, &bot.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get strategy bot: %w", err)
	}

	bot.Status = models.BotStatus(status)
	if err := unmarshalJSON(indicators, &bot.Indicators); err != nil {
		return nil, fmt.Errorf("failed to decode indicators: %w", err)
	}
	if err := unmarshalJSON(riskParams, &bot.RiskParams); err != nil {
		return nil, fmt.Errorf("failed to decode risk params: %w", err)
	}
	if bot.Indicators == nil {
		bot.Indicators = []models.Indicator{}
	}

	return bot, nil
}

// MarkReady stores the generated fields and moves the bot to ready
func (r *PostgresBotRepository) MarkReady(ctx context.Context, id uuid.UUID, gen *models.BotGeneration) error {
	indicators, err := marshalJSON(gen.Indicators, "[]")
	if err != nil {
		return fmt.Errorf("failed to encode indicators: %w", err)
	}
	riskParams, err := marshalJSON(gen.RiskParams, "{}")
	if err != nil {
		return fmt.Errorf("failed to encode risk params: %w", err)
	}

	query := `
		UPDATE strategy_bots
		SET status = $2, analysis = $3, indicators = $4, entry_logic = $5,
			exit_logic = $6, risk_params = $7, bot_code = $8, error_message = '',
			updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		id, string(models.BotStatusReady), gen.Analysis, indicators, gen.EntryLogic,
		gen.ExitLogic, riskParams, gen.BotCode,
	)
	if err != nil {
		return fmt.Errorf("failed to mark strategy bot ready: %w", err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// MarkError moves the bot to error with a short message
func (r *PostgresBotRepository) MarkError(ctx context.Context, id uuid.UUID, message string) error {
	query := `
		UPDATE strategy_bots
		SET status = $2, error_message = $3, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, id, string(models.BotStatusError), message)
	if err != nil {
		return fmt.Errorf("failed to mark strategy bot error: %w", err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// marshalJSON encodes v for a jsonb column, substituting empty for nil values.
func marshalJSON(v interface{}, empty string) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if string(b) == "null" {
		return []byte(empty), nil
	}
	return b, nil
}

func unmarshalJSON(b []byte, v interface{}) error {
	if len(b) == 0 {
		return nil
	}
	return json.Unmarshal(b, v)
}
