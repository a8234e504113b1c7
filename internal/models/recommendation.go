package models

import (
	"time"

	"github.com/google/uuid"
)

// Recommendation represents a ranked betting opportunity
type Recommendation struct {
	BoutID        uuid.UUID `json:"bout_id"`
	FighterID     uuid.UUID `json:"fighter_id"`
	Division      string    `json:"division"`
	DecimalOdds   float64   `json:"decimal_odds"`
	Probability   float64   `json:"probability"`
	ExpectedValue float64   `json:"expected_value"`
	Kelly         float64   `json:"kelly"`
	GeneratedAt   time.Time `json:"generated_at"`
}
