package service

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tradepilot/tradepilot/internal/backtest"
	"github.com/tradepilot/tradepilot/internal/models"
)

const (
	defaultTimeframe      = "1D"
	defaultSymbol         = "SPX500"
	fallbackStartCapital  = 10000.0
	backtestLookbackYears = 1
)

var marketSymbols = map[string]string{
	"crypto":      "BTCUSDT",
	"forex":       "EURUSD",
	"stocks":      "AAPL",
	"indices":     "SPX500",
	"commodities": "XAUUSD",
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006/01/02",
}

// BacktestDraft is the backtest block as the model wrote it.
type BacktestDraft struct {
	Symbol            string             `json:"symbol"`
	Timeframe         string             `json:"timeframe"`
	StartDate         string             `json:"startDate"`
	EndDate           string             `json:"endDate"`
	InitialCapital    models.FlexFloat   `json:"initialCapital"`
	FinalCapital      models.FlexFloat   `json:"finalCapital"`
	TotalTrades       models.FlexFloat   `json:"totalTrades"`
	WinningTrades     models.FlexFloat   `json:"winningTrades"`
	LosingTrades      models.FlexFloat   `json:"losingTrades"`
	WinRate           models.FlexFloat   `json:"winRate"`
	ProfitLoss        models.FlexFloat   `json:"profitLoss"`
	ProfitLossPercent models.FlexFloat   `json:"profitLossPercent"`
	MaxDrawdown       models.FlexFloat   `json:"maxDrawdown"`
	SharpeRatio       models.FlexFloat   `json:"sharpeRatio"`
	Trades            []TradeDraft       `json:"trades"`
	EquityCurve       []models.FlexFloat `json:"equityCurve"`
}

// TradeDraft is one model-written trade.
type TradeDraft struct {
	Date       string           `json:"date"`
	Type       string           `json:"type"`
	EntryPrice models.FlexFloat `json:"entryPrice"`
	ExitPrice  models.FlexFloat `json:"exitPrice"`
	PnL        models.FlexFloat `json:"pnl"`
	Reason     string           `json:"reason"`
}

// NormalizeBacktest turns a draft (parsed or synthesized) into a storable
// result. Missing numbers become zero and missing lists become empty; the
// symbol, timeframe and date range are derived from the strategy when absent;
// total trades is raised to cover winning plus losing trades.
func NormalizeBacktest(draft *BacktestDraft, input *models.StrategyInput, botID uuid.UUID, userID string, now time.Time) *models.BacktestResult {
	if draft == nil {
		draft = &BacktestDraft{}
	}

	end := parseDate(draft.EndDate)
	start := parseDate(draft.StartDate)
	if end.IsZero() || start.IsZero() || !start.Before(end) {
		end = now.UTC().Truncate(24 * time.Hour)
		start = end.AddDate(-backtestLookbackYears, 0, 0)
	}

	winning := nonNegative(draft.WinningTrades)
	losing := nonNegative(draft.LosingTrades)
	total := nonNegative(draft.TotalTrades)
	if winning+losing > math.MaxInt32 {
		losing = math.MaxInt32 - winning
	}
	if winning+losing > total {
		total = winning + losing
	}

	trades := make([]models.TradeEntry, 0, len(draft.Trades))
	for _, t := range draft.Trades {
		trades = append(trades, models.TradeEntry{
			Date:       strings.TrimSpace(t.Date),
			Type:       strings.ToLower(strings.TrimSpace(t.Type)),
			EntryPrice: t.EntryPrice.Float64(),
			ExitPrice:  t.ExitPrice.Float64(),
			PnL:        roundCents(t.PnL.Float64()),
			Reason:     t.Reason,
		})
	}

	curve := make([]float64, 0, len(draft.EquityCurve))
	for _, v := range draft.EquityCurve {
		curve = append(curve, roundCents(v.Float64()))
	}

	result := &models.BacktestResult{
		ID:                uuid.New(),
		BotID:             botID,
		UserID:            userID,
		Symbol:            firstNonEmpty(draft.Symbol, SymbolForMarket(input.PrimaryMarket())),
		Timeframe:         firstNonEmpty(draft.Timeframe, input.Timeframe, defaultTimeframe),
		StartDate:         start,
		EndDate:           end,
		InitialCapital:    roundCents(draft.InitialCapital.Float64()),
		FinalCapital:      roundCents(draft.FinalCapital.Float64()),
		TotalTrades:       total,
		WinningTrades:     winning,
		LosingTrades:      losing,
		WinRate:           roundCents(draft.WinRate.Float64()),
		ProfitLoss:        roundCents(draft.ProfitLoss.Float64()),
		ProfitLossPercent: roundCents(draft.ProfitLossPercent.Float64()),
		MaxDrawdown:       roundCents(draft.MaxDrawdown.Float64()),
		SharpeRatio:       roundCents(draft.SharpeRatio.Float64()),
		Trades:            trades,
		EquityCurve:       curve,
	}
	deriveMissingStats(result)
	return result
}

// deriveMissingStats fills figures the model left at zero from the equity
// curve and trade counts.
func deriveMissingStats(r *models.BacktestResult) {
	if n := len(r.EquityCurve); n > 0 {
		if r.InitialCapital == 0 {
			r.InitialCapital = r.EquityCurve[0]
		}
		if r.FinalCapital == 0 {
			r.FinalCapital = r.EquityCurve[n-1]
		}
	}
	if r.WinRate == 0 {
		r.WinRate = roundCents(backtest.WinRatePercent(r.WinningTrades, r.TotalTrades))
	}
	if r.InitialCapital > 0 && r.FinalCapital > 0 {
		if r.ProfitLoss == 0 {
			r.ProfitLoss = roundCents(r.FinalCapital - r.InitialCapital)
		}
		if r.ProfitLossPercent == 0 {
			r.ProfitLossPercent = roundCents(backtest.ReturnPercent(r.InitialCapital, r.FinalCapital))
		}
	}
	if r.MaxDrawdown == 0 {
		r.MaxDrawdown = roundCents(backtest.MaxDrawdownPercent(r.EquityCurve))
	}
	if r.SharpeRatio == 0 {
		r.SharpeRatio = roundCents(backtest.SharpeRatio(r.EquityCurve))
	}
}

// SymbolForMarket maps a market label to a representative instrument.
func SymbolForMarket(market string) string {
	if s, ok := marketSymbols[strings.ToLower(strings.TrimSpace(market))]; ok {
		return s
	}
	return defaultSymbol
}

func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func roundCents(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// nonNegative converts a model-supplied count, clamped to [0, MaxInt32] to fit
// the INTEGER columns.
func nonNegative(f models.FlexFloat) int {
	v := f.Float64()
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= math.MaxInt32:
		return math.MaxInt32
	}
	return int(v)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
