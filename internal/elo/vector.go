// Package elo implements component-wise Elo ratings for fighters,
// decomposed by fighting discipline.
package elo

import "math"

const (
	// DefaultRating is the center rating assigned to unrated components.
	DefaultRating = 1500.0
	// DefaultUncertainty is the starting uncertainty for a new vector.
	DefaultUncertainty = 250.0
	// UncertaintyFloor is the minimum uncertainty a component can decay to.
	UncertaintyFloor = 50.0
	// UncertaintyDecay is the multiplicative decay applied per update.
	UncertaintyDecay = 0.98
)

// ComponentWeights holds the fixed per-discipline importance weights used
// when collapsing a component rating difference into a single expectation.
var ComponentWeights = map[string]float64{
	"striking":    1.0,
	"wrestling":   0.95,
	"grappling":   0.9,
	"cardio":      0.9,
	"submissions": 0.85,
	"durability":  0.8,
	"iq":          0.75,
	"aggression":  0.7,
}

// DefaultComponents lists the rated disciplines in their canonical order.
var DefaultComponents = []string{
	"striking", "grappling", "wrestling", "submissions",
	"cardio", "durability", "iq", "aggression",
}

// Vector is an immutable per-fighter, per-division set of component
// ratings with matching uncertainties. Updates return new vectors.
type Vector struct {
	Components    []string  `json:"components"`
	Ratings       []float64 `json:"ratings"`
	Uncertainties []float64 `json:"uncertainties"`
}

// NewVector creates a vector with default rating and uncertainty for
// every listed component.
func NewVector(components []string) Vector {
	comps := make([]string, len(components))
	copy(comps, components)
	ratings := make([]float64, len(comps))
	uncertainties := make([]float64, len(comps))
	for i := range comps {
		ratings[i] = DefaultRating
		uncertainties[i] = DefaultUncertainty
	}
	return Vector{Components: comps, Ratings: ratings, Uncertainties: uncertainties}
}

// MeanRating returns the unweighted average of the component ratings.
func (v Vector) MeanRating() float64 {
	if len(v.Ratings) == 0 {
		return DefaultRating
	}
	sum := 0.0
	for _, r := range v.Ratings {
		sum += r
	}
	return sum / float64(len(v.Ratings))
}

func componentWeight(name string) float64 {
	if w, ok := ComponentWeights[name]; ok {
		return w
	}
	return 1.0
}

func logisticExpectation(delta float64) float64 {
	return 1.0 / (1.0 + math.Exp(-delta/400.0))
}

// Expectation returns the expected outcome for the holder of vector a
// against vector b: a weighted logistic of the component rating gaps.
// Expectation(a,b) + Expectation(b,a) == 1 exactly. The logistic is only
// ever evaluated on the non-negative side of the gap and the other side
// takes the complement, so the identity holds in floating point and not
// just analytically.
func Expectation(a, b Vector) float64 {
	delta := 0.0
	for i, component := range a.Components {
		delta += (a.Ratings[i] - b.Ratings[i]) * componentWeight(component)
	}
	if delta < 0 {
		return 1.0 - logisticExpectation(-delta)
	}
	return logisticExpectation(delta)
}

// Update applies the pairwise rating update for a resolved bout.
// result is 1.0 when A won, 0.0 when B won; fractional results are
// allowed for draws and majority decisions. New vectors are returned,
// the inputs are left untouched. Uncertainty decays multiplicatively
// and never drops below the floor.
func Update(a, b Vector, result, kFactor float64) (Vector, Vector) {
	expectedA := Expectation(a, b)
	expectedB := 1.0 - expectedA

	diffA := result - expectedA
	diffB := (1 - result) - expectedB

	newA := Vector{
		Components:    a.Components,
		Ratings:       make([]float64, len(a.Ratings)),
		Uncertainties: make([]float64, len(a.Uncertainties)),
	}
	newB := Vector{
		Components:    b.Components,
		Ratings:       make([]float64, len(b.Ratings)),
		Uncertainties: make([]float64, len(b.Uncertainties)),
	}

	for i, component := range a.Components {
		w := componentWeight(component)
		newA.Ratings[i] = a.Ratings[i] + kFactor*diffA*w
		newB.Ratings[i] = b.Ratings[i] + kFactor*diffB*w
		newA.Uncertainties[i] = math.Max(a.Uncertainties[i]*UncertaintyDecay, UncertaintyFloor)
		newB.Uncertainties[i] = math.Max(b.Uncertainties[i]*UncertaintyDecay, UncertaintyFloor)
	}
	return newA, newB
}

// ExpectedMargin maps the expectation onto a rough score margin scale,
// used as a classifier feature.
func ExpectedMargin(a, b Vector) float64 {
	return (Expectation(a, b) - 0.5) * 10
}
