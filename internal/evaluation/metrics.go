// Package evaluation provides calibration and profitability metrics used
// to validate fitted models.
package evaluation

import (
	"fmt"
	"math"

	"github.com/yourusername/fightprob/internal/models"
)

// DefaultBins is the default bin count for calibration metrics.
const DefaultBins = 20

func validatePairs(outcomes []float64, probabilities []float64) error {
	if len(outcomes) != len(probabilities) {
		return fmt.Errorf("%w: outcomes and probabilities length mismatch (%d vs %d)", models.ErrInvalidInput, len(outcomes), len(probabilities))
	}
	if len(outcomes) == 0 {
		return fmt.Errorf("%w: empty evaluation set", models.ErrInvalidInput)
	}
	for i, y := range outcomes {
		if y != 0 && y != 1 {
			return fmt.Errorf("%w: outcome %d must be strictly binary, got %v", models.ErrInvalidInput, i, y)
		}
		if probabilities[i] < 0 || probabilities[i] > 1 {
			return fmt.Errorf("%w: probability %d out of [0,1]: %v", models.ErrInvalidInput, i, probabilities[i])
		}
	}
	return nil
}

// BrierScore returns the mean squared error between predicted
// probabilities and binary outcomes.
func BrierScore(outcomes []float64, probabilities []float64) (float64, error) {
	if err := validatePairs(outcomes, probabilities); err != nil {
		return 0, err
	}
	sum := 0.0
	for i, y := range outcomes {
		diff := probabilities[i] - y
		sum += diff * diff
	}
	return sum / float64(len(outcomes)), nil
}

// ExpectedCalibrationError partitions [0,1] into equal-width bins (the
// last bin inclusive of 1.0) and sums each bin's |accuracy - confidence|
// weighted by its population share. Perfectly calibrated predictions
// score 0.
func ExpectedCalibrationError(outcomes []float64, probabilities []float64, bins int) (float64, error) {
	if err := validatePairs(outcomes, probabilities); err != nil {
		return 0, err
	}
	if bins <= 0 {
		bins = DefaultBins
	}

	binOutcomes := make([]float64, bins)
	binConfidence := make([]float64, bins)
	binCounts := make([]float64, bins)
	for i, p := range probabilities {
		idx := int(p * float64(bins))
		if idx >= bins {
			idx = bins - 1
		}
		binOutcomes[idx] += outcomes[i]
		binConfidence[idx] += p
		binCounts[idx]++
	}

	total := float64(len(outcomes))
	ece := 0.0
	for i := 0; i < bins; i++ {
		if binCounts[i] == 0 {
			continue
		}
		accuracy := binOutcomes[i] / binCounts[i]
		confidence := binConfidence[i] / binCounts[i]
		ece += math.Abs(accuracy-confidence) * (binCounts[i] / total)
	}
	return ece, nil
}

// ReliabilityBin is one point on a calibration curve.
type ReliabilityBin struct {
	MeanConfidence float64 `json:"mean_confidence"`
	MeanAccuracy   float64 `json:"mean_accuracy"`
	Count          int     `json:"count"`
}

// ReliabilityBins returns per-bin (confidence, accuracy) pairs for
// drawing calibration curves. Empty bins are skipped.
func ReliabilityBins(outcomes []float64, probabilities []float64, bins int) ([]ReliabilityBin, error) {
	if err := validatePairs(outcomes, probabilities); err != nil {
		return nil, err
	}
	if bins <= 0 {
		bins = DefaultBins
	}

	binOutcomes := make([]float64, bins)
	binConfidence := make([]float64, bins)
	binCounts := make([]int, bins)
	for i, p := range probabilities {
		idx := int(p * float64(bins))
		if idx >= bins {
			idx = bins - 1
		}
		binOutcomes[idx] += outcomes[i]
		binConfidence[idx] += p
		binCounts[idx]++
	}

	out := make([]ReliabilityBin, 0, bins)
	for i := 0; i < bins; i++ {
		if binCounts[i] == 0 {
			continue
		}
		out = append(out, ReliabilityBin{
			MeanConfidence: binConfidence[i] / float64(binCounts[i]),
			MeanAccuracy:   binOutcomes[i] / float64(binCounts[i]),
			Count:          binCounts[i],
		})
	}
	return out, nil
}

// ROI computes the probability-weighted return over settled bets: each
// bet returns odds-1 on a win and -1 on a loss, staked proportionally to
// the predicted probability. Prices must be strictly positive decimal
// odds. A ~zero total stake returns 0.
func ROI(outcomes []float64, probabilities []float64, prices []float64) (float64, error) {
	if err := validatePairs(outcomes, probabilities); err != nil {
		return 0, err
	}
	if len(prices) != len(outcomes) {
		return 0, fmt.Errorf("%w: prices length mismatch (%d vs %d)", models.ErrInvalidInput, len(prices), len(outcomes))
	}
	for i, price := range prices {
		if price <= 0 {
			return 0, fmt.Errorf("%w: price %d must be strictly positive, got %v", models.ErrInvalidInput, i, price)
		}
	}

	weightedReturn := 0.0
	totalWeight := 0.0
	for i, y := range outcomes {
		profit := y*(prices[i]-1) - (1 - y)
		weightedReturn += profit * probabilities[i]
		totalWeight += math.Abs(probabilities[i])
	}
	if totalWeight < 1e-12 {
		return 0, nil
	}
	return weightedReturn / totalWeight, nil
}
