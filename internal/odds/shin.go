package odds

import (
	"fmt"
	"math"

	"github.com/yourusername/fightprob/internal/models"
)

const (
	shinIterations = 100
	shinZMax       = 0.25
)

// ShinAdjustment removes the bookmaker margin from implied probabilities
// using Shin's insider-trading model. The returned vector sums to exactly 1
// and z is the fitted imbalance parameter in [0, 0.25].
//
// The balance equation sum(sqrt(z^2 + 4(1-z)p^2)) = 2 is monotone
// decreasing in z when the implied probabilities carry an overround, so it
// is solved by bisection with a fixed iteration budget rather than a
// general root-finder: the sum of square roots has no algebraic inverse for
// more than two outcomes, and the fixed budget keeps the solve deterministic
// with a bounded running time. A vig-free book solves at z = 0 and passes
// through unchanged.
func ShinAdjustment(probabilities []float64) ([]float64, float64, error) {
	for _, p := range probabilities {
		if p <= 0 {
			return nil, 0, fmt.Errorf("%w: probabilities must be positive for Shin normalization, got %v", models.ErrInvalidInput, p)
		}
	}
	if len(probabilities) == 0 {
		return []float64{}, 0, nil
	}

	balance := func(z float64) float64 {
		sum := 0.0
		for _, p := range probabilities {
			sum += math.Sqrt(z*z + 4*(1-z)*p*p)
		}
		return sum - 2
	}

	zLow, zHigh := 0.0, shinZMax
	for i := 0; i < shinIterations; i++ {
		zMid := (zLow + zHigh) / 2
		if balance(zMid) > 0 {
			zLow = zMid
		} else {
			zHigh = zMid
		}
	}
	z := (zLow + zHigh) / 2

	adjusted := make([]float64, len(probabilities))
	adjustedSum := 0.0
	for i, p := range probabilities {
		adjusted[i] = (math.Sqrt(z*z+4*(1-z)*p*p) - z) / (2 * (1 - z))
		adjustedSum += adjusted[i]
	}
	// Renormalize away floating-point drift so the vector sums to exactly 1
	for i := range adjusted {
		adjusted[i] /= adjustedSum
	}
	return adjusted, z, nil
}

// NormalizeShin returns the Shin-adjusted probabilities, discarding the
// imbalance parameter for callers that only need the fair price vector.
func NormalizeShin(probabilities []float64) ([]float64, error) {
	adjusted, _, err := ShinAdjustment(probabilities)
	return adjusted, err
}
