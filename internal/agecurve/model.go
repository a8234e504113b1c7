// Package agecurve models how win probability varies with fighter age,
// anchored to a division-specific peak age.
package agecurve

import "math"

// DivisionAnchors maps each weight division to its assumed peak age.
// Heavier divisions peak a few years later than lighter ones.
var DivisionAnchors = map[string]float64{
	"HW":  33.0,
	"LHW": 32.0,
	"MW":  31.0,
	"WW":  30.0,
	"LW":  29.0,
	"FW":  28.0,
	"BW":  27.0,
	"FLW": 26.0,
}

// DefaultAnchor is used for divisions without a dedicated peak age.
const DefaultAnchor = 30.0

// AgeKnots bound the fitted age range. Evaluation outside the knot range
// clips to the nearest boundary instead of extrapolating.
var AgeKnots = []float64{20.0, 25.0, 30.0, 33.0, 36.0, 39.0, 42.0}

// MaxEffect caps the absolute probability delta an age curve can produce.
const MaxEffect = 0.5

// Anchor returns the peak age for a division.
func Anchor(division string) float64 {
	if anchor, ok := DivisionAnchors[division]; ok {
		return anchor
	}
	return DefaultAnchor
}

// Model is a fitted division-specific age effect curve: a logistic-link
// regression of win rate on a polynomial age basis, with the fitted
// coefficients stored under named basis terms.
type Model struct {
	Division            string             `json:"division"`
	Coefficients        map[string]float64 `json:"coefficients"`
	Knots               []float64          `json:"knots"`
	BaselineProbability float64            `json:"baseline_probability"`
}

// basisTerms names the polynomial basis columns in evaluation order.
var basisTerms = []string{"intercept", "age_s", "age_s2", "age_s3"}

// design evaluates the basis at an age. Age is centered and scaled so the
// fitted range maps into [-1, 1], keeping the penalized fit well conditioned.
func design(age float64, knots []float64) map[string]float64 {
	lo, hi := knotRange(knots)
	center := (lo + hi) / 2
	scale := (hi - lo) / 2
	s := (age - center) / scale
	return map[string]float64{
		"intercept": 1.0,
		"age_s":     s,
		"age_s2":    s * s,
		"age_s3":    s * s * s,
	}
}

func knotRange(knots []float64) (float64, float64) {
	if len(knots) == 0 {
		return AgeKnots[0], AgeKnots[len(AgeKnots)-1]
	}
	lo, hi := knots[0], knots[0]
	for _, k := range knots {
		if k < lo {
			lo = k
		}
		if k > hi {
			hi = k
		}
	}
	return lo, hi
}

func expit(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

// Probability evaluates the fitted curve at an age. Ages outside the knot
// range clip to the nearest boundary.
func (m *Model) Probability(age float64) float64 {
	lo, hi := knotRange(m.Knots)
	if age < lo {
		age = lo
	}
	if age > hi {
		age = hi
	}
	row := design(age, m.Knots)
	logit := 0.0
	for name, value := range m.Coefficients {
		logit += row[name] * value
	}
	return expit(logit)
}

// Effect returns the probability delta at the given age relative to the
// division's baseline (peak-age) probability, clipped to [-MaxEffect, MaxEffect].
func (m *Model) Effect(age float64) float64 {
	effect := m.Probability(age) - m.BaselineProbability
	if effect > MaxEffect {
		return MaxEffect
	}
	if effect < -MaxEffect {
		return -MaxEffect
	}
	return effect
}
