package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/tradepilot/tradepilot/internal/config"
	"github.com/tradepilot/tradepilot/internal/llm"
	"github.com/tradepilot/tradepilot/internal/logger"
	"github.com/tradepilot/tradepilot/internal/metrics"
	"github.com/tradepilot/tradepilot/internal/models"
	"github.com/tradepilot/tradepilot/internal/parser"
	"github.com/tradepilot/tradepilot/internal/repository"
)

const (
	defaultRiskPerTrade = 1.0
	defaultMaxDailyLoss = 3.0
)

// StrategyResult is returned to the caller after a strategy was processed
type StrategyResult struct {
	BotID           uuid.UUID               `json:"botId"`
	Analysis        string                  `json:"analysis"`
	Indicators      []models.Indicator      `json:"indicators"`
	BacktestSummary *models.BacktestSummary `json:"backtestSummary"`
	Fallback        bool                    `json:"-"`
}

// strategyReply is the JSON document the model is asked to return.
type strategyReply struct {
	Analysis        string                 `json:"analysis"`
	Indicators      []models.Indicator     `json:"indicators"`
	EntryLogic      models.FlexString      `json:"entryLogic"`
	ExitLogic       models.FlexString      `json:"exitLogic"`
	RiskParams      map[string]interface{} `json:"riskParams"`
	BotCode         string                 `json:"botCode"`
	BacktestResults *BacktestDraft         `json:"backtestResults"`
}

// StrategyProcessor turns a submitted strategy into a stored bot and backtest
type StrategyProcessor struct {
	gateway   Gateway
	bots      repository.BotRepository
	backtests repository.BacktestResultRepository
	cfg       config.StrategyConfig
	logger    *logger.PipelineLogger
	audit     *logger.AuditLogger
	now       func() time.Time
}

// NewStrategyProcessor creates a new strategy processor
func NewStrategyProcessor(
	gateway Gateway,
	bots repository.BotRepository,
	backtests repository.BacktestResultRepository,
	cfg config.StrategyConfig,
	log *logrus.Logger,
) *StrategyProcessor {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &StrategyProcessor{
		gateway:   gateway,
		bots:      bots,
		backtests: backtests,
		cfg:       cfg,
		logger:    logger.NewPipelineLogger(log),
		audit:     logger.NewAuditLogger(log),
		now:       time.Now,
	}
}

// Process runs the strategy pipeline. Once the bot row exists, failures are
// returned as *PipelineError carrying its ID.
func (p *StrategyProcessor) Process(ctx context.Context, input *models.StrategyInput, userID string) (*StrategyResult, error) {
	start := p.now()
	outcome := metrics.OutcomeFailed
	defer func() {
		metrics.RecordPipelineRun(metrics.PipelineStrategy, outcome, p.now().Sub(start).Seconds())
	}()

	if err := input.Validate(); err != nil {
		return nil, err
	}

	bot := &models.StrategyBot{
		StrategyID: input.ID,
		UserID:     userID,
		Name:       input.Name,
		Status:     models.BotStatusGenerating,
		Broker:     p.cfg.DefaultBroker,
	}
	if err := p.bots.Create(ctx, bot); err != nil {
		p.logger.LogStepFailed(metrics.PipelineStrategy, "create_bot", err, logrus.Fields{"user_id": userID})
		return nil, fmt.Errorf("failed to create strategy bot: %w", err)
	}
	metrics.RecordBotStatus(string(models.BotStatusGenerating))
	p.audit.LogBotCreated(bot.ID.String(), input.ID, userID)

	fields := logrus.Fields{"bot_id": bot.ID.String()}
	p.logger.LogStepStarted(metrics.PipelineStrategy, "generate", fields)

	content, err := p.gateway.Complete(ctx, llm.CompletionRequest{
		Operation: metrics.PipelineStrategy,
		System:    strategySystemPrompt,
		Messages:  []models.ChatMessage{{Role: "user", Content: buildStrategyPrompt(input)}},
	})
	if err != nil {
		p.logger.LogStepFailed(metrics.PipelineStrategy, "generate", err, fields)
		p.markError(ctx, bot.ID, gatewayFailureMessage(err))
		if IsRateLimited(err) {
			outcome = metrics.OutcomeRateLimited
		}
		return nil, &PipelineError{BotID: bot.ID, Err: err}
	}

	gen, draft, fallback := p.interpret(content, input, bot.ID)

	if err := p.bots.MarkReady(ctx, bot.ID, gen); err != nil {
		p.logger.LogStepFailed(metrics.PipelineStrategy, "mark_ready", err, fields)
		p.markError(ctx, bot.ID, "failed to store generated bot")
		return nil, &PipelineError{BotID: bot.ID, Err: err}
	}
	metrics.RecordBotStatus(string(models.BotStatusReady))
	p.audit.LogBotStatusChange(bot.ID.String(), string(models.BotStatusGenerating), string(models.BotStatusReady), "")

	result := &StrategyResult{
		BotID:      bot.ID,
		Analysis:   logger.Truncate(gen.Analysis, p.cfg.AnalysisPreviewLen),
		Indicators: gen.Indicators,
		Fallback:   fallback,
	}

	backtest := NormalizeBacktest(draft, input, bot.ID, userID, p.now())
	if err := p.backtests.Create(ctx, backtest); err != nil {
		// the bot stays ready without a backtest
		p.logger.LogStepFailed(metrics.PipelineStrategy, "store_backtest", err, fields)
	} else {
		summary := backtest.Summary()
		result.BacktestSummary = &summary
		p.audit.LogBacktestStored(backtest.ID.String(), bot.ID.String(), backtest.TotalTrades, backtest.WinRate)
	}

	outcome = metrics.OutcomeSuccess
	if fallback {
		outcome = metrics.OutcomeFallback
	}
	p.logger.LogRunCompleted(metrics.PipelineStrategy, outcome, p.now().Sub(start), fields)

	return result, nil
}

// interpret parses the model reply, falling back to a result synthesized
// from the submitted strategy.
func (p *StrategyProcessor) interpret(content string, input *models.StrategyInput, botID uuid.UUID) (*models.BotGeneration, *BacktestDraft, bool) {
	var reply strategyReply
	if err := parser.DecodeFencedOrRaw(content, &reply); err != nil {
		metrics.RecordParseFailure(metrics.PipelineStrategy)
		metrics.RecordFallbackResult()
		p.logger.LogParseFailure(metrics.PipelineStrategy, err, content)
		p.logger.LogFallbackUsed(metrics.PipelineStrategy, botID.String())
		gen, draft := FallbackGeneration(input)
		return gen, draft, true
	}

	gen := &models.BotGeneration{
		Analysis:   reply.Analysis,
		Indicators: reply.Indicators,
		EntryLogic: reply.EntryLogic.String(),
		ExitLogic:  reply.ExitLogic.String(),
		RiskParams: reply.RiskParams,
		BotCode:    reply.BotCode,
	}
	if gen.Indicators == nil {
		gen.Indicators = []models.Indicator{}
	}
	if gen.RiskParams == nil {
		gen.RiskParams = map[string]interface{}{}
	}
	return gen, reply.BacktestResults, false
}

// FallbackGeneration builds a deterministic bot and placeholder backtest
// from the submitted strategy alone.
func FallbackGeneration(input *models.StrategyInput) (*models.BotGeneration, *BacktestDraft) {
	names := input.IndicatorNames()
	indicators := make([]models.Indicator, 0, len(names))
	for _, n := range names {
		indicators = append(indicators, models.Indicator{
			Name:  n,
			Usage: "As specified in the submitted strategy",
		})
	}

	markets := strings.Join(input.Markets, ", ")
	if markets == "" {
		markets = "the selected markets"
	}
	timeframe := firstNonEmpty(input.Timeframe, defaultTimeframe)

	gen := &models.BotGeneration{
		Analysis: fmt.Sprintf(
			"Automated analysis is unavailable for %q. The bot follows the submitted rules on %s using the %s timeframe. Review the entry and exit logic before deploying.",
			input.Name, markets, timeframe,
		),
		Indicators: indicators,
		EntryLogic: input.EntryRules,
		ExitLogic:  input.ExitRules,
		RiskParams: map[string]interface{}{
			"riskPerTrade":   riskNumber(input.RiskManagement.RiskPerTrade, defaultRiskPerTrade),
			"maxDailyLoss":   riskNumber(input.RiskManagement.MaxDailyLoss, defaultMaxDailyLoss),
			"stopLossType":   firstNonEmpty(input.RiskManagement.StopLossType, "fixed"),
			"takeProfitType": firstNonEmpty(input.RiskManagement.TakeProfitType, "fixed"),
			"positionSizing": firstNonEmpty(input.RiskManagement.PositionSizing, "fixed_fractional"),
		},
		BotCode: fallbackBotCode(input),
	}

	draft := &BacktestDraft{
		Timeframe:      timeframe,
		InitialCapital: models.FlexFloat(fallbackStartCapital),
		FinalCapital:   models.FlexFloat(fallbackStartCapital),
		EquityCurve:    []models.FlexFloat{models.FlexFloat(fallbackStartCapital)},
	}

	return gen, draft
}

func fallbackBotCode(input *models.StrategyInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "// %s\n", input.Name)
	b.WriteString("// Generated from the submitted rules; automated code generation was unavailable.\n")
	fmt.Fprintf(&b, "// Entry: %s\n", oneLine(input.EntryRules))
	fmt.Fprintf(&b, "// Exit: %s\n", oneLine(input.ExitRules))
	b.WriteString("function onBar(bar, state) {\n")
	b.WriteString("  if (!state.inPosition && entrySignal(bar)) return { action: 'enter' };\n")
	b.WriteString("  if (state.inPosition && exitSignal(bar)) return { action: 'exit' };\n")
	b.WriteString("  return { action: 'hold' };\n")
	b.WriteString("}\n")
	return b.String()
}

// riskNumber keeps the user's value when it is numeric.
func riskNumber(v models.FlexString, def float64) float64 {
	if f := v.Float64(); f > 0 {
		return f
	}
	return def
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func (p *StrategyProcessor) markError(ctx context.Context, botID uuid.UUID, msg string) {
	ctx, cancel := detachedContext(ctx)
	defer cancel()

	if err := p.bots.MarkError(ctx, botID, msg); err != nil {
		p.logger.LogStepFailed(metrics.PipelineStrategy, "mark_error", err, logrus.Fields{"bot_id": botID.String()})
		return
	}
	metrics.RecordBotStatus(string(models.BotStatusError))
	p.audit.LogBotStatusChange(botID.String(), string(models.BotStatusGenerating), string(models.BotStatusError), msg)
}

func gatewayFailureMessage(err error) string {
	if IsRateLimited(err) {
		return "AI gateway rate limit exceeded"
	}
	return "AI generation failed: " + logger.Truncate(err.Error(), 200)
}
