package models

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// BotStatus is the lifecycle state of a StrategyBot.
type BotStatus string

const (
	BotStatusGenerating BotStatus = "generating"
	BotStatusReady      BotStatus = "ready"
	BotStatusRunning    BotStatus = "running"
	BotStatusPaused     BotStatus = "paused"
	BotStatusError      BotStatus = "error"
)

// Valid reports whether the status is one of the known lifecycle states.
func (s BotStatus) Valid() bool {
	switch s {
	case BotStatusGenerating, BotStatusReady, BotStatusRunning, BotStatusPaused, BotStatusError:
		return true
	default:
		return false
	}
}

// Indicator describes one technical indicator used by a generated bot.
type Indicator struct {
	Name       string          `json:"name"`
	Parameters json.RawMessage `json:"parameters,omitempty"`
	Usage      string          `json:"usage"`
}

// UnmarshalJSON accepts either an object or a bare indicator name.
func (i *Indicator) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		return json.Unmarshal(b, &i.Name)
	}
	type plain Indicator
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*i = Indicator(p)
	return nil
}

// StrategyBot is the generated artifact for a submitted strategy
type StrategyBot struct {
	ID           uuid.UUID              `db:"id" json:"id"`
	StrategyID   string                 `db:"strategy_id" json:"strategy_id"`
	UserID       string                 `db:"user_id" json:"user_id"`
	Name         string                 `db:"name" json:"name"`
	Status       BotStatus              `db:"status" json:"status"`
	Analysis     string                 `db:"analysis" json:"analysis"`
	Indicators   []Indicator            `db:"indicators" json:"indicators"`
	EntryLogic   string                 `db:"entry_logic" json:"entry_logic"`
	ExitLogic    string                 `db:"exit_logic" json:"exit_logic"`
	RiskParams   map[string]interface{} `db:"risk_params" json:"risk_params"`
	BotCode      string                 `db:"bot_code" json:"bot_code"`
	Broker       string                 `db:"broker" json:"broker"`
	ErrorMessage string                 `db:"error_message" json:"error_message,omitempty"`
	CreatedAt    time.Time              `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time              `db:"updated_at" json:"updated_at"`
}

// BotGeneration holds the AI-produced fields written when a bot becomes ready.
type BotGeneration struct {
	Analysis   string
	Indicators []Indicator
	EntryLogic string
	ExitLogic  string
	RiskParams map[string]interface{}
	BotCode    string
}
