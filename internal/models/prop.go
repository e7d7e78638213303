package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Prop represents one active points betting line from the prop feed.
// Read-only; sourced fresh each run and never persisted.
type Prop struct {
	PlayerName string          `json:"player"`
	Line       decimal.Decimal `json:"line" validate:"required"`
	Team       string          `json:"team"`
	Opponent   string          `json:"opponent,omitempty"`
	GameTime   *time.Time      `json:"game_time,omitempty"`
}

// LineValue returns the line as a float for the prediction math.
func (p *Prop) LineValue() float64 {
	return p.Line.InexactFloat64()
}
