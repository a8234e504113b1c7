package models

import (
	"time"

	"github.com/google/uuid"
)

// Division codes for the supported weight classes, heaviest first.
var Divisions = []string{"HW", "LHW", "MW", "WW", "LW", "FW", "BW", "FLW"}

// Fighter represents a fighter profile
type Fighter struct {
	ID          uuid.UUID  `db:"id" json:"id" validate:"required,uuid4"`
	Name        string     `db:"name" json:"name" validate:"required"`
	Division    string     `db:"division" json:"division" validate:"required"`
	DateOfBirth *time.Time `db:"date_of_birth" json:"date_of_birth"`
	HeightIn    *float64   `db:"height_in" json:"height_in"`
	ReachIn     *float64   `db:"reach_in" json:"reach_in"`
	Stance      *string    `db:"stance" json:"stance"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// AgeAt returns the fighter's age in years at the given time, or the
// fallback when the date of birth is unknown.
func (f *Fighter) AgeAt(t time.Time, fallback float64) float64 {
	if f.DateOfBirth == nil {
		return fallback
	}
	return t.Sub(*f.DateOfBirth).Hours() / 24 / 365.25
}
