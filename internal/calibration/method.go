// Package calibration maps raw classifier scores into trustworthy
// probabilities, fitted per weight division with a global fallback.
package calibration

import (
	"fmt"

	"github.com/yourusername/fightprob/internal/models"
)

// Method names accepted by Train.
const (
	MethodIsotonic = "isotonic"
	MethodPlatt    = "platt"
)

// Fitted is a trained score-to-probability mapping.
type Fitted interface {
	// Apply maps a raw score to a probability. Implementations clip
	// out-of-range scores rather than extrapolating.
	Apply(score float64) float64
}

// Method fits a calibration mapping from labeled scores. Selection
// between methods happens once at training time.
type Method interface {
	Name() string
	Fit(scores []float64, targets []float64) (Fitted, error)
}

// NewMethod resolves a method by name.
func NewMethod(name string) (Method, error) {
	switch name {
	case MethodIsotonic:
		return isotonicMethod{}, nil
	case MethodPlatt:
		return plattMethod{}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported calibration method %q", models.ErrInvalidInput, name)
	}
}
