package evaluation

import (
	"math"
	"sort"
)

// Report bundles the headline evaluation metrics for one prediction set.
type Report struct {
	AUC     float64 `json:"auc"`
	LogLoss float64 `json:"log_loss"`
	Brier   float64 `json:"brier"`
	ECE     float64 `json:"ece"`
	Samples int     `json:"samples"`
}

// Evaluate computes the full report over binary outcomes and predicted
// probabilities.
func Evaluate(outcomes []float64, probabilities []float64) (*Report, error) {
	brier, err := BrierScore(outcomes, probabilities)
	if err != nil {
		return nil, err
	}
	ece, err := ExpectedCalibrationError(outcomes, probabilities, DefaultBins)
	if err != nil {
		return nil, err
	}
	return &Report{
		AUC:     rocAUC(outcomes, probabilities),
		LogLoss: logLoss(outcomes, probabilities),
		Brier:   brier,
		ECE:     ece,
		Samples: len(outcomes),
	}, nil
}

// PerDivision evaluates each division's slice separately, keyed by
// division code. Divisions with a single class are skipped since AUC is
// undefined for them.
func PerDivision(outcomes []float64, probabilities []float64, divisions []string) (map[string]*Report, error) {
	if err := validatePairs(outcomes, probabilities); err != nil {
		return nil, err
	}
	grouped := make(map[string][]int)
	for i, division := range divisions {
		grouped[division] = append(grouped[division], i)
	}
	out := make(map[string]*Report, len(grouped))
	for division, indices := range grouped {
		subOutcomes := make([]float64, len(indices))
		subProbs := make([]float64, len(indices))
		positives := 0
		for j, idx := range indices {
			subOutcomes[j] = outcomes[idx]
			subProbs[j] = probabilities[idx]
			if outcomes[idx] == 1 {
				positives++
			}
		}
		if positives == 0 || positives == len(indices) {
			continue
		}
		report, err := Evaluate(subOutcomes, subProbs)
		if err != nil {
			return nil, err
		}
		out[division] = report
	}
	return out, nil
}

func logLoss(outcomes []float64, probabilities []float64) float64 {
	sum := 0.0
	for i, y := range outcomes {
		p := probabilities[i]
		if p < 1e-9 {
			p = 1e-9
		}
		if p > 1-1e-9 {
			p = 1 - 1e-9
		}
		sum -= y*math.Log(p) + (1-y)*math.Log(1-p)
	}
	return sum / float64(len(outcomes))
}

// rocAUC ranks predictions and computes the Mann-Whitney statistic, with
// the midrank correction for tied scores.
func rocAUC(outcomes []float64, probabilities []float64) float64 {
	n := len(outcomes)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool { return probabilities[order[i]] < probabilities[order[j]] })

	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j+1 < n && probabilities[order[j+1]] == probabilities[order[i]] {
			j++
		}
		midrank := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			ranks[order[k]] = midrank
		}
		i = j + 1
	}

	positives := 0.0
	rankSum := 0.0
	for i, y := range outcomes {
		if y == 1 {
			positives++
			rankSum += ranks[i]
		}
	}
	negatives := float64(n) - positives
	if positives == 0 || negatives == 0 {
		return 0.5
	}
	return (rankSum - positives*(positives+1)/2) / (positives * negatives)
}
