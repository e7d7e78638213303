package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Pick is the over/under side of a prediction.
type Pick string

const (
	PickOver  Pick = "OVER"
	PickUnder Pick = "UNDER"
)

// PredictionRecord is one forecast for one prop. The full run's records form
// the output report, which replaces the previous report wholesale.
type PredictionRecord struct {
	ID              uuid.UUID       `db:"id" json:"-"`
	Player          string          `db:"player" json:"player" validate:"required"`
	Line            decimal.Decimal `db:"line" json:"line"`
	PredictedPoints float64         `db:"predicted_points" json:"predicted"`
	Pick            Pick            `db:"pick" json:"pick" validate:"oneof=OVER UNDER"`
	ProbabilityOver float64         `db:"probability_over" json:"probability_over" validate:"gte=0,lte=1"`
	Confidence      int             `db:"confidence" json:"confidence" validate:"gte=0,lte=100"`
	GameTime        *time.Time      `db:"game_time" json:"game_time,omitempty"`
	PredictedAt     time.Time       `db:"predicted_at" json:"-"`
}

// MeetsThreshold checks if the confidence meets the given percentage.
func (p *PredictionRecord) MeetsThreshold(threshold int) bool {
	return p.Confidence >= threshold
}
