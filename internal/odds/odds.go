// Package odds provides American/decimal/implied-probability conversions
// and Shin overround removal for moneyline markets.
package odds

import (
	"fmt"
	"math"

	"github.com/yourusername/fightprob/internal/models"
)

// AmericanToDecimal converts American odds to decimal odds
func AmericanToDecimal(american float64) (float64, error) {
	if american > 0 {
		return 1 + american/100, nil
	}
	if american < 0 {
		return 1 + 100/math.Abs(american), nil
	}
	return 0, fmt.Errorf("%w: American odds cannot be zero", models.ErrInvalidInput)
}

// DecimalToAmerican converts decimal odds to American odds
func DecimalToAmerican(decimal float64) (float64, error) {
	if decimal <= 1 {
		return 0, fmt.Errorf("%w: decimal odds must be greater than 1, got %v", models.ErrInvalidInput, decimal)
	}
	if decimal >= 2 {
		return (decimal - 1) * 100, nil
	}
	return -100 / (decimal - 1), nil
}

// AmericanToImplied converts American odds to an implied probability
func AmericanToImplied(american float64) (float64, error) {
	if american > 0 {
		return 100 / (american + 100), nil
	}
	if american < 0 {
		return math.Abs(american) / (math.Abs(american) + 100), nil
	}
	return 0, fmt.Errorf("%w: American odds cannot be zero", models.ErrInvalidInput)
}

// ImpliedToAmerican converts an implied probability to American odds
func ImpliedToAmerican(prob float64) (float64, error) {
	if prob <= 0 || prob >= 1 {
		return 0, fmt.Errorf("%w: probability must be between 0 and 1, got %v", models.ErrInvalidInput, prob)
	}
	if prob >= 0.5 {
		return -prob / (1 - prob) * 100, nil
	}
	return (1 - prob) / prob * 100, nil
}

// Overround returns the bookmaker margin given implied probabilities:
// their sum minus one. Negative values indicate an arbitrage book and
// are returned as-is; callers validate separately.
func Overround(probabilities []float64) float64 {
	total := 0.0
	for _, p := range probabilities {
		total += p
	}
	return total - 1.0
}

// NormalizeProportional rescales implied probabilities to sum to 1.
// It is the naive de-vigorization baseline that ShinAdjustment improves on.
func NormalizeProportional(probabilities []float64) ([]float64, error) {
	total := 0.0
	for _, p := range probabilities {
		total += p
	}
	if total == 0 {
		return nil, fmt.Errorf("%w: probability list sums to zero", models.ErrInvalidInput)
	}
	normalized := make([]float64, len(probabilities))
	for i, p := range probabilities {
		normalized[i] = p / total
	}
	return normalized, nil
}
