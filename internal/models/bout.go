package models

import (
	"time"

	"github.com/google/uuid"
)

// Bout represents a single scheduled or resolved fight
type Bout struct {
	ID              uuid.UUID  `db:"id" json:"id" validate:"required,uuid4"`
	EventID         uuid.UUID  `db:"event_id" json:"event_id" validate:"required,uuid4"`
	FighterID       uuid.UUID  `db:"fighter_id" json:"fighter_id" validate:"required,uuid4"`
	OpponentID      uuid.UUID  `db:"opponent_id" json:"opponent_id" validate:"required,uuid4"`
	Division        string     `db:"division" json:"division" validate:"required"`
	ScheduledRounds int        `db:"scheduled_rounds" json:"scheduled_rounds" validate:"required,oneof=3 5"`
	EventDate       time.Time  `db:"event_date" json:"event_date" validate:"required"`
	WinnerID        *uuid.UUID `db:"winner_id" json:"winner_id"`
	Method          *string    `db:"method" json:"method"`
	EndRound        *int       `db:"end_round" json:"end_round"`
}

// IsResolved reports whether the bout has a recorded winner
func (b *Bout) IsResolved() bool {
	return b.WinnerID != nil
}

// Result returns 1.0 when the primary fighter won, 0.0 when the
// opponent won. Calling Result on an unresolved bout returns 0.5.
func (b *Bout) Result() float64 {
	if b.WinnerID == nil {
		return 0.5
	}
	if *b.WinnerID == b.FighterID {
		return 1.0
	}
	return 0.0
}

// IsMainEvent reports whether the bout is scheduled for five rounds
func (b *Bout) IsMainEvent() bool {
	return b.ScheduledRounds == 5
}
