package models

import (
	"bytes"
	"encoding/json"
	"errors"
)

// Chart prediction modes.
const (
	ChartModeStructured = "structured"
	ChartModeChat       = "chat"
)

// ChatMessage is one turn of a chart conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChartRequest is the inbound chart prediction payload.
type ChartRequest struct {
	Messages    []ChatMessage `json:"messages"`
	ImageBase64 string        `json:"imageBase64,omitempty"`
	Mode        string        `json:"mode"`
}

// IsStructured reports whether the caller asked for a one-shot JSON read-out.
func (r *ChartRequest) IsStructured() bool {
	return r.Mode == ChartModeStructured
}

// ChartOverview summarises the market on the chart.
type ChartOverview struct {
	Symbol          string `json:"symbol"`
	Timeframe       string `json:"timeframe"`
	MarketStructure string `json:"marketStructure"`
	TrendStrength   string `json:"trendStrength"`
}

// ChartRecommendation is the trade idea extracted from the chart.
type ChartRecommendation struct {
	Action      string     `json:"action"`
	Confidence  FlexFloat  `json:"confidence"`
	EntryZone   FlexString `json:"entryZone"`
	StopLoss    FlexString `json:"stopLoss"`
	TakeProfit1 FlexString `json:"takeProfit1"`
	TakeProfit2 FlexString `json:"takeProfit2"`
	TakeProfit3 FlexString `json:"takeProfit3"`
	RiskReward  FlexString `json:"riskReward"`
}

// ChartPattern is a detected chart pattern. A bare string decodes into Name.
type ChartPattern struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Reliability string `json:"reliability"`
	Description string `json:"description"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *ChartPattern) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		return json.Unmarshal(b, &p.Name)
	}
	type plain ChartPattern
	var v plain
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*p = ChartPattern(v)
	return nil
}

// IndicatorReading is one indicator's read-out. A bare string decodes into Notes.
type IndicatorReading struct {
	Value  FlexString `json:"value,omitempty"`
	Signal string     `json:"signal,omitempty"`
	Notes  string     `json:"notes,omitempty"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *IndicatorReading) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		return json.Unmarshal(b, &r.Notes)
	}
	type plain IndicatorReading
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*r = IndicatorReading(p)
	return nil
}

// ChartIndicators groups the indicator block of a read-out.
type ChartIndicators struct {
	RSI            IndicatorReading `json:"rsi"`
	MACD           IndicatorReading `json:"macd"`
	MovingAverages IndicatorReading `json:"movingAverages"`
	Volume         IndicatorReading `json:"volume"`
}

// KeyLevel is a support or resistance level. A bare string or number
// decodes into Price.
type KeyLevel struct {
	Type     string     `json:"type"`
	Price    FlexString `json:"price"`
	Strength string     `json:"strength"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (l *KeyLevel) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] != '{' {
		return json.Unmarshal(b, &l.Price)
	}
	type plain KeyLevel
	var v plain
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*l = KeyLevel(v)
	return nil
}

// RiskAssessment describes trade risk. A bare string decodes into Notes.
type RiskAssessment struct {
	Level   string   `json:"level,omitempty"`
	Factors []string `json:"factors,omitempty"`
	Notes   string   `json:"notes,omitempty"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *RiskAssessment) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		return json.Unmarshal(b, &r.Notes)
	}
	type plain RiskAssessment
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*r = RiskAssessment(p)
	return nil
}

// ChartAnalysis is the structured read-out of a chart. When the model reply
// cannot be parsed only Summary, Error and ParseError are set.
type ChartAnalysis struct {
	Overview       *ChartOverview       `json:"overview,omitempty"`
	Recommendation *ChartRecommendation `json:"recommendation,omitempty"`
	Patterns       []ChartPattern       `json:"patterns,omitempty"`
	Indicators     *ChartIndicators     `json:"indicators,omitempty"`
	KeyLevels      []KeyLevel           `json:"keyLevels,omitempty"`
	RiskAssessment *RiskAssessment      `json:"riskAssessment,omitempty"`
	Summary        string               `json:"summary"`
	Error          string               `json:"error,omitempty"`
	ParseError     bool                 `json:"parseError,omitempty"`
}

// UnmarshalJSON decodes a read-out field by field. The reply must be a JSON
// object; a section whose shape does not fit is dropped and the rest kept.
func (a *ChartAnalysis) UnmarshalJSON(b []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}
	if fields == nil {
		return errors.New("chart analysis is null")
	}

	var out ChartAnalysis
	decodeSection(fields, "overview", &out.Overview)
	decodeSection(fields, "recommendation", &out.Recommendation)
	decodeSection(fields, "patterns", &out.Patterns)
	decodeSection(fields, "indicators", &out.Indicators)
	decodeSection(fields, "keyLevels", &out.KeyLevels)
	decodeSection(fields, "riskAssessment", &out.RiskAssessment)
	decodeSection(fields, "summary", &out.Summary)
	*a = out
	return nil
}

func decodeSection[T any](fields map[string]json.RawMessage, key string, dst *T) {
	raw, ok := fields[key]
	if !ok {
		return
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return
	}
	*dst = v
}

// DegradedChartAnalysis wraps unparseable model output.
func DegradedChartAnalysis(raw, reason string) *ChartAnalysis {
	return &ChartAnalysis{
		Summary:    raw,
		Error:      reason,
		ParseError: true,
	}
}
