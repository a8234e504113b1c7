package calibration

import (
	"encoding/json"
	"fmt"

	"github.com/yourusername/fightprob/internal/models"
	"github.com/yourusername/fightprob/internal/persistence"
)

const (
	// GlobalDivision keys the fallback model fit over all samples.
	GlobalDivision = "GLOBAL"
	// DefaultMinSamples is the minimum labeled samples required before a
	// division earns its own calibration model.
	DefaultMinSamples = 3
	// ProbabilityFloor keeps calibrated outputs strictly inside (0, 1)
	// so downstream log-loss stays finite.
	ProbabilityFloor = 1e-6
)

// Calibrator holds one fitted model per division plus the global
// fallback. Lookups for unseen divisions silently use the fallback.
type Calibrator struct {
	Method string
	Models map[string]Fitted
}

// Train fits a calibrator: one model per division with at least
// minSamples labeled examples, and always a GLOBAL model over the full
// sample. minSamples <= 0 uses DefaultMinSamples.
func Train(scores []float64, targets []float64, divisions []string, methodName string, minSamples int) (*Calibrator, error) {
	if len(scores) != len(targets) || len(scores) != len(divisions) {
		return nil, fmt.Errorf("%w: scores, targets and divisions must have matching lengths", models.ErrInvalidInput)
	}
	if len(scores) == 0 {
		return nil, fmt.Errorf("%w: no samples to calibrate", models.ErrInsufficientData)
	}
	if minSamples <= 0 {
		minSamples = DefaultMinSamples
	}
	method, err := NewMethod(methodName)
	if err != nil {
		return nil, err
	}

	byDivision := make(map[string][]int)
	for i, division := range divisions {
		byDivision[division] = append(byDivision[division], i)
	}

	fitted := make(map[string]Fitted)
	for division, indices := range byDivision {
		if len(indices) < minSamples {
			continue
		}
		subScores := make([]float64, len(indices))
		subTargets := make([]float64, len(indices))
		for j, idx := range indices {
			subScores[j] = scores[idx]
			subTargets[j] = targets[idx]
		}
		model, err := method.Fit(subScores, subTargets)
		if err != nil {
			return nil, fmt.Errorf("failed to fit %s calibration for %s: %w", methodName, division, err)
		}
		fitted[division] = model
	}

	global, err := method.Fit(scores, targets)
	if err != nil {
		return nil, fmt.Errorf("failed to fit global calibration: %w", err)
	}
	fitted[GlobalDivision] = global

	return &Calibrator{Method: methodName, Models: fitted}, nil
}

// Transform applies the division-specific model per sample, falling back
// to the global model for unseen divisions, and clamps every output to
// [ProbabilityFloor, 1-ProbabilityFloor].
func (c *Calibrator) Transform(scores []float64, divisions []string) ([]float64, error) {
	if len(scores) != len(divisions) {
		return nil, fmt.Errorf("%w: scores and divisions length mismatch (%d vs %d)", models.ErrInvalidInput, len(scores), len(divisions))
	}
	out := make([]float64, len(scores))
	for i, score := range scores {
		model, ok := c.Models[divisions[i]]
		if !ok {
			model = c.Models[GlobalDivision]
		}
		out[i] = clampProbability(model.Apply(score))
	}
	return out, nil
}

// TransformOne calibrates a single score for a division.
func (c *Calibrator) TransformOne(score float64, division string) float64 {
	model, ok := c.Models[division]
	if !ok {
		model = c.Models[GlobalDivision]
	}
	return clampProbability(model.Apply(score))
}

func clampProbability(p float64) float64 {
	if p < ProbabilityFloor {
		return ProbabilityFloor
	}
	if p > 1-ProbabilityFloor {
		return 1 - ProbabilityFloor
	}
	return p
}

// artifact is the persisted JSON form of a calibrator: the method tag
// plus the raw parameters of each per-division model.
type artifact struct {
	Method string                     `json:"method"`
	Models map[string]json.RawMessage `json:"models"`
}

const artifactNameCalibrator = "calibrator"

// Save persists the calibrator through the artifact store.
func (c *Calibrator) Save(store persistence.Store) error {
	payload := artifact{Method: c.Method, Models: make(map[string]json.RawMessage, len(c.Models))}
	for division, model := range c.Models {
		raw, err := json.Marshal(model)
		if err != nil {
			return fmt.Errorf("failed to encode calibration model for %s: %w", division, err)
		}
		payload.Models[division] = raw
	}
	return store.Save(artifactNameCalibrator, payload)
}

// Load retrieves a persisted calibrator. A missing artifact surfaces
// models.ErrMissingArtifact from the store.
func Load(store persistence.Store) (*Calibrator, error) {
	var payload artifact
	if err := store.Load(artifactNameCalibrator, &payload); err != nil {
		return nil, err
	}
	calibrator := &Calibrator{Method: payload.Method, Models: make(map[string]Fitted, len(payload.Models))}
	for division, raw := range payload.Models {
		model, err := decodeModel(payload.Method, raw)
		if err != nil {
			return nil, fmt.Errorf("failed to decode calibration model for %s: %w", division, err)
		}
		calibrator.Models[division] = model
	}
	if _, ok := calibrator.Models[GlobalDivision]; !ok {
		return nil, fmt.Errorf("%w: calibrator artifact lacks the global model", models.ErrMissingArtifact)
	}
	return calibrator, nil
}

func decodeModel(method string, raw json.RawMessage) (Fitted, error) {
	switch method {
	case MethodIsotonic:
		model := &IsotonicModel{}
		if err := json.Unmarshal(raw, model); err != nil {
			return nil, err
		}
		return model, nil
	case MethodPlatt:
		model := &PlattModel{}
		if err := json.Unmarshal(raw, model); err != nil {
			return nil, err
		}
		return model, nil
	default:
		return nil, fmt.Errorf("%w: unsupported calibration method %q", models.ErrInvalidInput, method)
	}
}
