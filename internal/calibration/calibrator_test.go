package calibration

import (
	"errors"
	"math"
	"testing"

	"github.com/yourusername/fightprob/internal/models"
	"github.com/yourusername/fightprob/internal/persistence"
)

func trainingSample() (scores, targets []float64, divisions []string) {
	// LW gets enough samples for its own model; FLW only two, so it
	// must ride the global fallback.
	scores = []float64{0.1, 0.3, 0.4, 0.6, 0.7, 0.9, 0.2, 0.8}
	targets = []float64{0, 0, 1, 1, 1, 1, 0, 1}
	divisions = []string{"LW", "LW", "LW", "LW", "LW", "LW", "FLW", "FLW"}
	return
}

func TestTrainIsotonicPerDivision(t *testing.T) {
	scores, targets, divisions := trainingSample()
	calibrator, err := Train(scores, targets, divisions, MethodIsotonic, 0)
	if err != nil {
		t.Fatalf("Train failed: %v", err)
	}
	if _, ok := calibrator.Models["LW"]; !ok {
		t.Fatalf("LW should have its own model")
	}
	if _, ok := calibrator.Models["FLW"]; ok {
		t.Fatalf("FLW has fewer than 3 samples and should be skipped")
	}
	if _, ok := calibrator.Models[GlobalDivision]; !ok {
		t.Fatalf("global fallback model must always be present")
	}
}

func TestTransformBoundedForArbitraryScores(t *testing.T) {
	scores, targets, divisions := trainingSample()
	for _, method := range []string{MethodIsotonic, MethodPlatt} {
		calibrator, err := Train(scores, targets, divisions, method, 0)
		if err != nil {
			t.Fatalf("Train(%s) failed: %v", method, err)
		}
		raw := []float64{-5, 0, 0.001, 0.5, 0.999, 1, 5}
		divs := []string{"LW", "HW", "unseen", "LW", "FLW", "HW", "LW"}
		out, err := calibrator.Transform(raw, divs)
		if err != nil {
			t.Fatalf("Transform failed: %v", err)
		}
		for i, p := range out {
			if p < ProbabilityFloor || p > 1-ProbabilityFloor {
				t.Fatalf("%s output %d = %v outside [1e-6, 1-1e-6]", method, i, p)
			}
		}
	}
}

func TestIsotonicMonotonicity(t *testing.T) {
	scores := []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8}
	targets := []float64{0, 1, 0, 0, 1, 1, 0, 1}
	method, err := NewMethod(MethodIsotonic)
	if err != nil {
		t.Fatalf("NewMethod failed: %v", err)
	}
	fitted, err := method.Fit(scores, targets)
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	prev := fitted.Apply(0.0)
	for s := 0.05; s <= 1.0; s += 0.05 {
		cur := fitted.Apply(s)
		if cur < prev {
			t.Fatalf("isotonic output decreased from %v to %v at score %v", prev, cur, s)
		}
		prev = cur
	}
}

func TestPlattLearnsDirection(t *testing.T) {
	scores := make([]float64, 0, 100)
	targets := make([]float64, 0, 100)
	for i := 0; i < 100; i++ {
		s := float64(i) / 99
		scores = append(scores, s)
		if s > 0.5 {
			targets = append(targets, 1)
		} else {
			targets = append(targets, 0)
		}
	}
	method, _ := NewMethod(MethodPlatt)
	fitted, err := method.Fit(scores, targets)
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if fitted.Apply(0.9) <= fitted.Apply(0.1) {
		t.Fatalf("platt model should map higher scores to higher probabilities")
	}
	if fitted.Apply(0.9) <= 0.5 {
		t.Fatalf("high score should calibrate above 0.5, got %v", fitted.Apply(0.9))
	}
}

func TestTrainValidatesInput(t *testing.T) {
	if _, err := Train([]float64{0.5}, []float64{1, 0}, []string{"LW"}, MethodIsotonic, 0); !errors.Is(err, models.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput on mismatched lengths, got %v", err)
	}
	if _, err := Train(nil, nil, nil, MethodIsotonic, 0); !errors.Is(err, models.ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData on empty sample, got %v", err)
	}
	if _, err := Train([]float64{0.5}, []float64{1}, []string{"LW"}, "spline", 0); !errors.Is(err, models.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown method, got %v", err)
	}
}

func TestCalibratorSaveLoad(t *testing.T) {
	store, err := persistence.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	scores, targets, divisions := trainingSample()
	for _, method := range []string{MethodIsotonic, MethodPlatt} {
		calibrator, err := Train(scores, targets, divisions, method, 0)
		if err != nil {
			t.Fatalf("Train failed: %v", err)
		}
		if err := calibrator.Save(store); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		loaded, err := Load(store)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		for s := 0.0; s <= 1.0; s += 0.1 {
			want := calibrator.TransformOne(s, "LW")
			got := loaded.TransformOne(s, "LW")
			if math.Abs(want-got) > 1e-12 {
				t.Fatalf("%s: loaded calibrator diverges at score %v: %v vs %v", method, s, got, want)
			}
		}
	}
}

func TestLoadMissingCalibrator(t *testing.T) {
	store, err := persistence.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	if _, err := Load(store); !errors.Is(err, models.ErrMissingArtifact) {
		t.Fatalf("expected ErrMissingArtifact, got %v", err)
	}
}
