package models

import (
	"time"

	"github.com/google/uuid"
)

// OddsQuote represents one sportsbook's American price for one side of a bout
type OddsQuote struct {
	Time       time.Time `db:"time" json:"time" validate:"required"`
	BoutID     uuid.UUID `db:"bout_id" json:"bout_id" validate:"required,uuid4"`
	FighterID  uuid.UUID `db:"fighter_id" json:"fighter_id" validate:"required,uuid4"`
	Sportsbook string    `db:"sportsbook" json:"sportsbook" validate:"required"`
	American   float64   `db:"american" json:"american" validate:"required"`
}

// Valid reports whether the quote carries a usable American price.
// American odds of exactly zero are meaningless.
func (q *OddsQuote) Valid() bool {
	return q.American != 0
}

// MarketSnapshot groups the freshest quote per side for one bout's
// moneyline market, together with the Shin-normalized fair prices.
type MarketSnapshot struct {
	Time         time.Time   `json:"time"`
	BoutID       uuid.UUID   `json:"bout_id"`
	FighterIDs   []uuid.UUID `json:"fighter_ids"`
	Implied      []float64   `json:"implied"`
	Fair         []float64   `json:"fair"`
	Overround    float64     `json:"overround"`
	ShinZ        float64     `json:"shin_z"`
	QuoteCount   int         `json:"quote_count"`
	SportsbookOf string      `json:"sportsbook"`
}
