package models

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// PredictionRecord represents a calibrated win-probability prediction
// for the primary fighter of a bout
type PredictionRecord struct {
	ID          uuid.UUID `db:"id" json:"id" validate:"required,uuid4"`
	BoutID      uuid.UUID `db:"bout_id" json:"bout_id" validate:"required,uuid4"`
	FighterID   uuid.UUID `db:"fighter_id" json:"fighter_id" validate:"required,uuid4"`
	OpponentID  uuid.UUID `db:"opponent_id" json:"opponent_id" validate:"required,uuid4"`
	Division    string    `db:"division" json:"division" validate:"required"`
	Probability float64   `db:"probability" json:"probability" validate:"gte=0,lte=1"`
	ProbLow     float64   `db:"prob_low" json:"prob_low" validate:"gte=0,lte=1"`
	ProbHigh    float64   `db:"prob_high" json:"prob_high" validate:"gte=0,lte=1"`
	MarketProb  *float64  `db:"market_prob" json:"market_prob"`
	PredictedAt time.Time `db:"predicted_at" json:"predicted_at" validate:"required"`
}

// WithBand sets the confidence band to probability +/- delta, clamped to [0,1]
func (p *PredictionRecord) WithBand(delta float64) *PredictionRecord {
	p.ProbLow = math.Max(0, p.Probability-delta)
	p.ProbHigh = math.Min(1, p.Probability+delta)
	return p
}

// Edge returns the difference between the model probability and the
// market probability, or 0 when no market price is known.
func (p *PredictionRecord) Edge() float64 {
	if p.MarketProb == nil {
		return 0
	}
	return p.Probability - *p.MarketProb
}
