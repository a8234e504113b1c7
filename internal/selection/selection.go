// Package selection ranks betting opportunities by expected value and
// sizes stakes with a capped Kelly criterion.
package selection

import (
	"fmt"
	"sort"
	"time"

	"github.com/yourusername/fightprob/internal/models"
)

// Candidate pairs a calibrated win probability with a market price.
type Candidate struct {
	Prediction  *models.PredictionRecord
	DecimalOdds float64
}

// ExpectedValue returns the per-unit expected profit of backing a side
// at decimal odds given a win probability: p*(odds-1) - (1-p).
func ExpectedValue(probability, decimalOdds float64) (float64, error) {
	if probability < 0 || probability > 1 {
		return 0, fmt.Errorf("%w: probability %v outside [0,1]", models.ErrInvalidInput, probability)
	}
	if decimalOdds <= 1 {
		return 0, fmt.Errorf("%w: decimal odds %v must exceed 1", models.ErrInvalidInput, decimalOdds)
	}
	return probability*(decimalOdds-1) - (1 - probability), nil
}

// KellyFraction returns the Kelly stake fraction f = (p*b - q) / b with
// b = odds-1, clipped to [0, cap]. Negative-edge candidates get 0.
func KellyFraction(probability, decimalOdds, cap float64) (float64, error) {
	if probability < 0 || probability > 1 {
		return 0, fmt.Errorf("%w: probability %v outside [0,1]", models.ErrInvalidInput, probability)
	}
	if decimalOdds <= 1 {
		return 0, fmt.Errorf("%w: decimal odds %v must exceed 1", models.ErrInvalidInput, decimalOdds)
	}
	if cap <= 0 {
		return 0, fmt.Errorf("%w: kelly cap %v must be positive", models.ErrInvalidInput, cap)
	}

	b := decimalOdds - 1
	f := (probability*b - (1 - probability)) / b
	if f < 0 {
		return 0, nil
	}
	if f > cap {
		return cap, nil
	}
	return f, nil
}

// RankRecommendations turns candidates into recommendations, keeping only
// those whose expected value meets the threshold, sorted by EV descending.
func RankRecommendations(candidates []Candidate, minEV, kellyCap float64, now time.Time) ([]*models.Recommendation, error) {
	recommendations := make([]*models.Recommendation, 0, len(candidates))
	for _, c := range candidates {
		if c.Prediction == nil {
			return nil, fmt.Errorf("%w: candidate without a prediction", models.ErrInvalidInput)
		}

		ev, err := ExpectedValue(c.Prediction.Probability, c.DecimalOdds)
		if err != nil {
			return nil, err
		}
		if ev < minEV {
			continue
		}

		kelly, err := KellyFraction(c.Prediction.Probability, c.DecimalOdds, kellyCap)
		if err != nil {
			return nil, err
		}

		recommendations = append(recommendations, &models.Recommendation{
			BoutID:        c.Prediction.BoutID,
			FighterID:     c.Prediction.FighterID,
			Division:      c.Prediction.Division,
			DecimalOdds:   c.DecimalOdds,
			Probability:   c.Prediction.Probability,
			ExpectedValue: ev,
			Kelly:         kelly,
			GeneratedAt:   now,
		})
	}

	sort.SliceStable(recommendations, func(i, j int) bool {
		return recommendations[i].ExpectedValue > recommendations[j].ExpectedValue
	})
	return recommendations, nil
}
