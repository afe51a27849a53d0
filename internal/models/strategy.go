package models

import (
	"strings"
)

// RiskManagement holds the user's risk settings exactly as submitted.
type RiskManagement struct {
	RiskPerTrade   FlexString `json:"riskPerTrade"`
	MaxDailyLoss   FlexString `json:"maxDailyLoss"`
	StopLossType   string     `json:"stopLossType"`
	TakeProfitType string     `json:"takeProfitType"`
	PositionSizing string     `json:"positionSizing"`
}

// StrategyInput is a user-submitted strategy description. It is never modified
// after submission.
type StrategyInput struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Description    string         `json:"description"`
	Markets        []string       `json:"markets"`
	Timeframe      string         `json:"timeframe"`
	EntryRules     string         `json:"entryRules"`
	ExitRules      string         `json:"exitRules"`
	Indicators     string         `json:"indicators"`
	RiskManagement RiskManagement `json:"riskManagement"`
}

// Validate performs basic validation on the strategy
func (s *StrategyInput) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrStrategyIncomplete
	}
	if strings.TrimSpace(s.EntryRules) == "" && strings.TrimSpace(s.ExitRules) == "" && strings.TrimSpace(s.Description) == "" {
		return ErrStrategyIncomplete
	}
	return nil
}

// PrimaryMarket returns the first listed market, or an empty string.
func (s *StrategyInput) PrimaryMarket() string {
	for _, m := range s.Markets {
		if m = strings.TrimSpace(m); m != "" {
			return m
		}
	}
	return ""
}

// IndicatorNames splits the free-text indicator list on commas, semicolons and newlines.
func (s *StrategyInput) IndicatorNames() []string {
	fields := strings.FieldsFunc(s.Indicators, func(r rune) bool {
		return r == ',' || r == ';' || r == '\n'
	})
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			names = append(names, f)
		}
	}
	return names
}
