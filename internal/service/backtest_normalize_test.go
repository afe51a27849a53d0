package service

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradepilot/tradepilot/internal/models"
)

func TestNormalizeBacktestDefaults(t *testing.T) {
	botID := uuid.New()
	input := &models.StrategyInput{Markets: []string{"Forex"}}

	got := NormalizeBacktest(nil, input, botID, "user-1", fixedNow)

	assert.Equal(t, botID, got.BotID)
	assert.Equal(t, "user-1", got.UserID)
	assert.Equal(t, "EURUSD", got.Symbol)
	assert.Equal(t, "1D", got.Timeframe)
	assert.Equal(t, time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC), got.EndDate)
	assert.Equal(t, time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC), got.StartDate)
	assert.Zero(t, got.TotalTrades)
	assert.Zero(t, got.ProfitLoss)
	assert.NotNil(t, got.Trades)
	assert.NotNil(t, got.EquityCurve)
	assert.Empty(t, got.Trades)
	assert.Empty(t, got.EquityCurve)
}

func TestNormalizeBacktestFromModelJSON(t *testing.T) {
	raw := `{
		"timeframe": "",
		"startDate": "2024-06-01T00:00:00Z",
		"endDate": "2024-01-01",
		"totalTrades": "40",
		"winningTrades": 30,
		"losingTrades": 20,
		"profitLoss": "$1,234.567",
		"maxDrawdown": -5.555,
		"sharpeRatio": null,
		"equityCurve": [10000, "10100.129"]
	}`

	var draft BacktestDraft
	require.NoError(t, json.Unmarshal([]byte(raw), &draft))

	input := &models.StrategyInput{Markets: []string{"Commodities"}, Timeframe: "1H"}
	got := NormalizeBacktest(&draft, input, uuid.New(), "u", fixedNow)

	assert.Equal(t, "XAUUSD", got.Symbol)
	assert.Equal(t, "1H", got.Timeframe)
	assert.Equal(t, 50, got.TotalTrades)
	assert.True(t, got.TradeCountsConsistent())
	assert.Equal(t, 1234.57, got.ProfitLoss)
	assert.Equal(t, -5.56, got.MaxDrawdown)
	assert.Zero(t, got.SharpeRatio)
	assert.Equal(t, []float64{10000, 10100.13}, got.EquityCurve)
	assert.Equal(t, 60.0, got.WinRate)
	assert.Equal(t, 10100.13, got.FinalCapital)
	// start after end falls back to the trailing year
	assert.Equal(t, time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC), got.StartDate)
}

func TestNormalizeBacktestDerivesMissingStats(t *testing.T) {
	draft := &BacktestDraft{
		WinningTrades: 5,
		LosingTrades:  3,
		EquityCurve:   []models.FlexFloat{10000, 12000, 9000, 11250},
	}
	got := NormalizeBacktest(draft, &models.StrategyInput{}, uuid.New(), "u", fixedNow)

	assert.Equal(t, 10000.0, got.InitialCapital)
	assert.Equal(t, 11250.0, got.FinalCapital)
	assert.Equal(t, 62.5, got.WinRate)
	assert.Equal(t, 1250.0, got.ProfitLoss)
	assert.Equal(t, 12.5, got.ProfitLossPercent)
	assert.Equal(t, 25.0, got.MaxDrawdown)
	assert.NotZero(t, got.SharpeRatio)
}

func TestNormalizeBacktestNegativeCounts(t *testing.T) {
	draft := &BacktestDraft{TotalTrades: -4, WinningTrades: -1, LosingTrades: 2}
	got := NormalizeBacktest(draft, &models.StrategyInput{}, uuid.New(), "u", fixedNow)
	assert.Equal(t, 0, got.WinningTrades)
	assert.Equal(t, 2, got.LosingTrades)
	assert.Equal(t, 2, got.TotalTrades)
}

func TestNormalizeBacktestClampsHugeCounts(t *testing.T) {
	draft := &BacktestDraft{TotalTrades: 1e30, WinningTrades: 9e18, LosingTrades: 5}
	got := NormalizeBacktest(draft, &models.StrategyInput{}, uuid.New(), "u", fixedNow)
	assert.Equal(t, math.MaxInt32, got.TotalTrades)
	assert.Equal(t, math.MaxInt32, got.WinningTrades)
	assert.Equal(t, 0, got.LosingTrades)
	assert.LessOrEqual(t, got.WinningTrades+got.LosingTrades, got.TotalTrades)

	draft = &BacktestDraft{TotalTrades: 10, WinningTrades: models.FlexFloat(math.NaN()), LosingTrades: 3}
	got = NormalizeBacktest(draft, &models.StrategyInput{}, uuid.New(), "u", fixedNow)
	assert.Equal(t, 0, got.WinningTrades)
	assert.Equal(t, 10, got.TotalTrades)
}

func TestSymbolForMarket(t *testing.T) {
	tests := map[string]string{
		"Crypto":      "BTCUSDT",
		"forex":       "EURUSD",
		" Stocks ":    "AAPL",
		"Indices":     "SPX500",
		"Commodities": "XAUUSD",
		"Bonds":       "SPX500",
		"":            "SPX500",
	}
	for market, want := range tests {
		assert.Equal(t, want, SymbolForMarket(market), market)
	}
}

func TestFallbackGenerationIsDeterministic(t *testing.T) {
	input := testStrategyInput()
	input.RiskManagement.RiskPerTrade = "two"

	gen1, draft1 := FallbackGeneration(input)
	gen2, draft2 := FallbackGeneration(input)
	assert.Equal(t, gen1, gen2)
	assert.Equal(t, draft1, draft2)

	assert.Equal(t, 1.0, gen1.RiskParams["riskPerTrade"])
	assert.Equal(t, 3.0, gen1.RiskParams["maxDailyLoss"])
	assert.Contains(t, gen1.Analysis, "Crypto Breakout")
	assert.Contains(t, gen1.BotCode, "Breakout above 20-day high")
	assert.Equal(t, models.FlexFloat(10000), draft1.InitialCapital)
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Fed Holds Rates: What's Next?": "fed-holds-rates-what-s-next",
		"  --Already-slugged--  ":       "already-slugged",
		"BTC > $100k!!":                 "btc-100k",
		"Émile's café":                  "mile-s-caf",
		"":                              "",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slugify(in), in)
	}

	long := Slugify(strings.Repeat("going ", 30))
	assert.LessOrEqual(t, len(long), maxSlugBaseLen)
	assert.False(t, strings.HasSuffix(long, "-"))
}

func TestPostSlug(t *testing.T) {
	assert.Equal(t, "fed-decision-2025-03-14", PostSlug("Fed Decision", "ignored", fixedNow))
	assert.Equal(t, "oil-rallies-2025-03-14", PostSlug("", "Oil Rallies", fixedNow))
	assert.Equal(t, "weekly-wrap-2025-03-14", PostSlug("weekly-wrap-2025-03-14", "", fixedNow))
	assert.Equal(t, "market-update-2025-03-14", PostSlug("", "!!!", fixedNow))
}

func TestRandomSlugSuffix(t *testing.T) {
	s := randomSlugSuffix()
	assert.Len(t, s, 6)
	assert.Regexp(t, "^[0-9a-f]{6}$", s)
}
