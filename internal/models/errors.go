package models

import "errors"

// Custom errors
var (
	ErrNotFound           = errors.New("record not found")
	ErrDuplicateKey       = errors.New("duplicate key violation")
	ErrInvalidID          = errors.New("invalid ID format")
	ErrInvalidBotStatus   = errors.New("invalid bot status")
	ErrStrategyIncomplete = errors.New("strategy is missing required fields")
)
