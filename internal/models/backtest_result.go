package models

import (
	"time"

	"github.com/google/uuid"
)

// TradeEntry is one simulated trade in a backtest.
type TradeEntry struct {
	Date       string  `json:"date"`
	Type       string  `json:"type"`
	EntryPrice float64 `json:"entryPrice"`
	ExitPrice  float64 `json:"exitPrice"`
	PnL        float64 `json:"pnl"`
	Reason     string  `json:"reason"`
}

// BacktestResult represents a persisted backtest run. The figures are
// model-generated placeholders, not the output of a simulation.
type BacktestResult struct {
	ID                uuid.UUID    `db:"id" json:"id"`
	BotID             uuid.UUID    `db:"bot_id" json:"bot_id"`
	UserID            string       `db:"user_id" json:"user_id"`
	Symbol            string       `db:"symbol" json:"symbol"`
	Timeframe         string       `db:"timeframe" json:"timeframe"`
	StartDate         time.Time    `db:"start_date" json:"start_date"`
	EndDate           time.Time    `db:"end_date" json:"end_date"`
	InitialCapital    float64      `db:"initial_capital" json:"initial_capital"`
	FinalCapital      float64      `db:"final_capital" json:"final_capital"`
	TotalTrades       int          `db:"total_trades" json:"total_trades"`
	WinningTrades     int          `db:"winning_trades" json:"winning_trades"`
	LosingTrades      int          `db:"losing_trades" json:"losing_trades"`
	WinRate           float64      `db:"win_rate" json:"win_rate"`
	ProfitLoss        float64      `db:"profit_loss" json:"profit_loss"`
	ProfitLossPercent float64      `db:"profit_loss_percent" json:"profit_loss_percent"`
	MaxDrawdown       float64      `db:"max_drawdown" json:"max_drawdown"`
	SharpeRatio       float64      `db:"sharpe_ratio" json:"sharpe_ratio"`
	Trades            []TradeEntry `db:"trades" json:"trades"`
	EquityCurve       []float64    `db:"equity_curve" json:"equity_curve"`
	CreatedAt         time.Time    `db:"created_at" json:"created_at"`
}

// BacktestSummary is the headline subset returned right after processing.
type BacktestSummary struct {
	ID                uuid.UUID `json:"id"`
	Symbol            string    `json:"symbol"`
	TotalTrades       int       `json:"totalTrades"`
	WinRate           float64   `json:"winRate"`
	ProfitLoss        float64   `json:"profitLoss"`
	ProfitLossPercent float64   `json:"profitLossPercent"`
	MaxDrawdown       float64   `json:"maxDrawdown"`
	SharpeRatio       float64   `json:"sharpeRatio"`
}

// Summary returns the headline figures of the result.
func (b *BacktestResult) Summary() BacktestSummary {
	return BacktestSummary{
		ID:                b.ID,
		Symbol:            b.Symbol,
		TotalTrades:       b.TotalTrades,
		WinRate:           b.WinRate,
		ProfitLoss:        b.ProfitLoss,
		ProfitLossPercent: b.ProfitLossPercent,
		MaxDrawdown:       b.MaxDrawdown,
		SharpeRatio:       b.SharpeRatio,
	}
}

// TradeCountsConsistent reports whether winning plus losing trades fit within total trades.
func (b *BacktestResult) TradeCountsConsistent() bool {
	return b.WinningTrades+b.LosingTrades <= b.TotalTrades
}
