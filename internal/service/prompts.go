package service

import (
	"fmt"
	"strings"

	"github.com/tradepilot/tradepilot/internal/models"
)

const strategySystemPrompt = `You are an expert quantitative trading bot developer. You turn plain-language trading strategies into precise, rule-based trading bots.

Respond with a single JSON object and nothing else, using exactly these keys:
{
  "analysis": "a concise assessment of the strategy's edge, weaknesses and the market conditions it suits",
  "indicators": [{"name": "RSI", "parameters": {"period": 14}, "usage": "how the indicator is used"}],
  "entryLogic": "exact, unambiguous entry conditions",
  "exitLogic": "exact, unambiguous exit conditions including stops and targets",
  "riskParams": {"riskPerTrade": 1, "maxDailyLoss": 3, "stopLossType": "atr", "takeProfitType": "fixed_rr", "positionSizing": "percent_equity"},
  "botCode": "complete, commented bot source implementing the logic above",
  "backtestResults": {
    "symbol": "BTCUSDT",
    "timeframe": "1H",
    "startDate": "YYYY-MM-DD",
    "endDate": "YYYY-MM-DD",
    "initialCapital": 10000,
    "finalCapital": 11250.5,
    "totalTrades": 120,
    "winningTrades": 66,
    "losingTrades": 54,
    "winRate": 55,
    "profitLoss": 1250.5,
    "profitLossPercent": 12.5,
    "maxDrawdown": 8.2,
    "sharpeRatio": 1.35,
    "trades": [{"date": "YYYY-MM-DD", "type": "long", "entryPrice": 100.5, "exitPrice": 103.2, "pnl": 26.9, "reason": "take profit"}],
    "equityCurve": [10000, 10120.4, 10090.1]
  }
}

Backtest figures are illustrative estimates for the strategy as described. Keep winningTrades + losingTrades equal to totalTrades. Use numbers, not strings, for numeric fields.`

// buildStrategyPrompt embeds every submitted field verbatim.
func buildStrategyPrompt(s *models.StrategyInput) string {
	var b strings.Builder
	b.WriteString("Build a trading bot for the following strategy.\n\n")
	fmt.Fprintf(&b, "Strategy name: %s\n", s.Name)
	fmt.Fprintf(&b, "Description: %s\n", s.Description)
	fmt.Fprintf(&b, "Markets: %s\n", strings.Join(s.Markets, ", "))
	fmt.Fprintf(&b, "Timeframe: %s\n", s.Timeframe)
	fmt.Fprintf(&b, "Entry rules: %s\n", s.EntryRules)
	fmt.Fprintf(&b, "Exit rules: %s\n", s.ExitRules)
	fmt.Fprintf(&b, "Indicators: %s\n", s.Indicators)
	b.WriteString("Risk management:\n")
	fmt.Fprintf(&b, "- Risk per trade: %s%%\n", s.RiskManagement.RiskPerTrade)
	fmt.Fprintf(&b, "- Max daily loss: %s%%\n", s.RiskManagement.MaxDailyLoss)
	fmt.Fprintf(&b, "- Stop loss type: %s\n", s.RiskManagement.StopLossType)
	fmt.Fprintf(&b, "- Take profit type: %s\n", s.RiskManagement.TakeProfitType)
	fmt.Fprintf(&b, "- Position sizing: %s\n", s.RiskManagement.PositionSizing)
	return b.String()
}

const blogSystemPrompt = `You are a senior financial journalist writing for a retail trading education site.

Write one original article based on the source material. Requirements:
- 800 to 1500 words of markdown in "content", with clear section headings.
- Explain what happened, why it matters and what traders could watch next.
- Do not give direct investment recommendations or tell readers to buy or sell anything.
- Do not copy sentences from the source.
- "category" must be one of: markets, crypto, forex, stocks, commodities, education.

Respond with a single JSON object and nothing else, using exactly these keys:
{"title": "", "slug": "", "excerpt": "", "content": "", "category": "", "tags": [], "meta_title": "", "meta_description": "", "reading_time_minutes": 0}`

func buildBlogPrompt(topic, sourceURL, content string) string {
	var b strings.Builder
	if strings.TrimSpace(topic) != "" {
		fmt.Fprintf(&b, "Focus the article on this topic: %s\n\n", strings.TrimSpace(topic))
	}
	fmt.Fprintf(&b, "Source: %s\n\n", sourceURL)
	b.WriteString("Source material:\n")
	b.WriteString(content)
	return b.String()
}

const chartStructuredSystemPrompt = `You are a professional technical analyst. Analyse the attached price chart.

Respond with a single JSON object and nothing else, using exactly these keys:
{
  "overview": {"symbol": "", "timeframe": "", "marketStructure": "bullish|bearish|ranging", "trendStrength": "weak|moderate|strong"},
  "recommendation": {"action": "BUY|SELL|HOLD", "confidence": 0, "entryZone": "", "stopLoss": "", "takeProfit1": "", "takeProfit2": "", "takeProfit3": "", "riskReward": ""},
  "patterns": [{"name": "", "type": "continuation|reversal", "reliability": "low|medium|high", "description": ""}],
  "indicators": {"rsi": {"value": "", "signal": "", "notes": ""}, "macd": {"value": "", "signal": "", "notes": ""}, "movingAverages": {"value": "", "signal": "", "notes": ""}, "volume": {"value": "", "signal": "", "notes": ""}},
  "keyLevels": [{"type": "support|resistance", "price": "", "strength": "weak|moderate|strong"}],
  "riskAssessment": {"level": "low|medium|high", "factors": [], "notes": ""},
  "summary": ""
}

Confidence is a percentage from 0 to 100. When something cannot be read from the chart, say so instead of guessing.`

const chartChatSystemPrompt = `You are a friendly technical analysis coach. Discuss the user's charts and questions in plain language, explain the patterns, levels and indicators you see, and point out risks.

This is for educational purposes only. Never present your answer as financial advice and remind the user to do their own research before trading.`

const defaultChartQuestion = "Analyse this chart."
