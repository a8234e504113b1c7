package agecurve

import (
	"fmt"
	"math"

	"github.com/yourusername/fightprob/internal/models"
)

const (
	fitIterations = 2000
	fitLearnRate  = 0.8
	fitPenalty    = 0.05 // ridge penalty on non-intercept terms

	historyBuckets  = 11
	syntheticAges   = 30
	syntheticWeight = 40
)

// Bucket aggregates historical outcomes for one age band.
type Bucket struct {
	Age   float64 `json:"age"`
	Wins  float64 `json:"wins"`
	Total float64 `json:"total"`
}

// BucketOutcomes groups raw (age, won) samples into equal-width age bands
// across the fitted range, weighted by bout counts per band.
func BucketOutcomes(ages []float64, won []bool) ([]Bucket, error) {
	if len(ages) != len(won) {
		return nil, fmt.Errorf("%w: ages and outcomes length mismatch (%d vs %d)", models.ErrInvalidInput, len(ages), len(won))
	}
	lo, hi := knotRange(AgeKnots)
	width := (hi - lo) / float64(historyBuckets)

	sums := make([]float64, historyBuckets)
	wins := make([]float64, historyBuckets)
	totals := make([]float64, historyBuckets)
	for i, age := range ages {
		if age < lo || age > hi {
			continue
		}
		idx := int((age - lo) / width)
		if idx >= historyBuckets {
			idx = historyBuckets - 1
		}
		sums[idx] += age
		totals[idx]++
		if won[i] {
			wins[idx]++
		}
	}

	buckets := make([]Bucket, 0, historyBuckets)
	for i := 0; i < historyBuckets; i++ {
		if totals[i] == 0 {
			continue
		}
		buckets = append(buckets, Bucket{
			Age:   sums[i] / totals[i],
			Wins:  wins[i],
			Total: totals[i],
		})
	}
	return buckets, nil
}

// Fit runs a penalized logistic regression of bucketed win rate against
// the polynomial age basis, weighted by bout counts per bucket. The
// baseline probability is the fitted curve evaluated at the division's
// anchor age.
func Fit(division string, history []Bucket) (*Model, error) {
	if len(history) == 0 {
		return nil, fmt.Errorf("%w: no age/outcome history for division %s", models.ErrInsufficientData, division)
	}

	rows := make([][]float64, len(history))
	rates := make([]float64, len(history))
	weights := make([]float64, len(history))
	totalWeight := 0.0
	for i, bucket := range history {
		row := design(bucket.Age, AgeKnots)
		rows[i] = make([]float64, len(basisTerms))
		for j, term := range basisTerms {
			rows[i][j] = row[term]
		}
		rates[i] = bucket.Wins / bucket.Total
		weights[i] = bucket.Total
		totalWeight += bucket.Total
	}
	if totalWeight == 0 {
		return nil, fmt.Errorf("%w: age history carries zero weight", models.ErrInsufficientData)
	}

	// Weighted gradient descent on the penalized log-loss. The basis is
	// bounded in [-1, 1], so a fixed step size converges reliably.
	beta := make([]float64, len(basisTerms))
	for iter := 0; iter < fitIterations; iter++ {
		grad := make([]float64, len(beta))
		for i, row := range rows {
			logit := 0.0
			for j, b := range beta {
				logit += b * row[j]
			}
			residual := expit(logit) - rates[i]
			for j := range grad {
				grad[j] += weights[i] * residual * row[j] / totalWeight
			}
		}
		for j := 1; j < len(beta); j++ {
			grad[j] += fitPenalty * beta[j]
		}
		for j := range beta {
			beta[j] -= fitLearnRate * grad[j]
		}
	}

	coefficients := make(map[string]float64, len(basisTerms))
	for j, term := range basisTerms {
		coefficients[term] = beta[j]
	}
	model := &Model{
		Division:     division,
		Coefficients: coefficients,
		Knots:        append([]float64(nil), AgeKnots...),
	}
	model.BaselineProbability = model.Probability(Anchor(division))
	return model, nil
}

// FitSynthetic builds the fallback curve for a division with no history:
// a downward-opening quadratic logit centered on the division anchor,
// sampled into weighted buckets and fit through the same machinery.
func FitSynthetic(division string) (*Model, error) {
	anchor := Anchor(division)
	lo, hi := knotRange(AgeKnots)

	history := make([]Bucket, syntheticAges)
	for i := 0; i < syntheticAges; i++ {
		age := lo + (hi-lo)*float64(i)/float64(syntheticAges-1)
		logit := 0.5 - 0.02*(age-anchor)*(age-anchor)
		prob := expit(logit)
		history[i] = Bucket{
			Age:   age,
			Wins:  math.Round(prob * syntheticWeight),
			Total: syntheticWeight,
		}
	}
	return Fit(division, history)
}
