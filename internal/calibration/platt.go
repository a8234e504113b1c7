package calibration

import (
	"fmt"
	"math"

	"github.com/yourusername/fightprob/internal/models"
)

type plattMethod struct{}

func (plattMethod) Name() string { return MethodPlatt }

const (
	plattIterations = 500
	plattLearnRate  = 0.5
)

// PlattModel is a one-dimensional logistic regression from raw score to
// probability.
type PlattModel struct {
	Intercept float64 `json:"intercept"`
	Slope     float64 `json:"slope"`
}

// Fit trains the logistic by gradient descent on the log-loss.
func (plattMethod) Fit(scores []float64, targets []float64) (Fitted, error) {
	if len(scores) != len(targets) {
		return nil, fmt.Errorf("%w: scores and targets length mismatch (%d vs %d)", models.ErrInvalidInput, len(scores), len(targets))
	}
	if len(scores) == 0 {
		return nil, fmt.Errorf("%w: no samples to calibrate", models.ErrInsufficientData)
	}

	// Center scores for a better-conditioned fit.
	mean := 0.0
	for _, s := range scores {
		mean += s
	}
	mean /= float64(len(scores))

	var b0, b1 float64
	n := float64(len(scores))
	for iter := 0; iter < plattIterations; iter++ {
		var g0, g1 float64
		for i, s := range scores {
			x := s - mean
			p := sigmoid(b0 + b1*x)
			residual := p - targets[i]
			g0 += residual / n
			g1 += residual * x / n
		}
		b0 -= plattLearnRate * g0
		b1 -= plattLearnRate * g1
	}

	return &PlattModel{
		Intercept: b0 - b1*mean,
		Slope:     b1,
	}, nil
}

// Apply evaluates the fitted logistic at a raw score.
func (m *PlattModel) Apply(score float64) float64 {
	return sigmoid(m.Intercept + m.Slope*score)
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}
