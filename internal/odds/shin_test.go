package odds

import (
	"errors"
	"math"
	"testing"

	"github.com/yourusername/fightprob/internal/models"
)

func TestShinAdjustmentSumsToOne(t *testing.T) {
	cases := [][]float64{
		{0.5238, 0.4878},
		{0.55, 0.52},
		{0.4, 0.35, 0.3},
		{0.26, 0.26, 0.26, 0.26},
	}
	for _, probs := range cases {
		adjusted, z, err := ShinAdjustment(probs)
		if err != nil {
			t.Fatalf("ShinAdjustment(%v) returned error: %v", probs, err)
		}
		sum := 0.0
		for _, a := range adjusted {
			sum += a
		}
		if math.Abs(sum-1.0) > 1e-6 {
			t.Fatalf("adjusted probabilities for %v sum to %v", probs, sum)
		}
		if z < 0 || z > 0.25 {
			t.Fatalf("z = %v outside [0, 0.25]", z)
		}
	}
}

func TestShinAdjustmentNearFairMarket(t *testing.T) {
	// -110 / +105: implied (0.5238, 0.4878), naive normalization
	// (0.5179, 0.4821). For a near-fair market Shin must stay close.
	implA, err := AmericanToImplied(-110)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	implB, err := AmericanToImplied(105)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(implA-0.5238) > 1e-3 || math.Abs(implB-0.4878) > 1e-3 {
		t.Fatalf("implied probabilities (%v, %v), want (0.5238, 0.4878)", implA, implB)
	}

	adjusted, _, err := ShinAdjustment([]float64{implA, implB})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(adjusted[0]-0.5179) > 0.05 || math.Abs(adjusted[1]-0.4821) > 0.05 {
		t.Fatalf("Shin probabilities (%v, %v) stray too far from proportional", adjusted[0], adjusted[1])
	}
}

func TestShinBalanceEquationResidual(t *testing.T) {
	probs := []float64{0.58, 0.49}

	_, z, err := ShinAdjustment(probs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	residual := -2.0
	for _, p := range probs {
		residual += math.Sqrt(z*z + 4*(1-z)*p*p)
	}
	if math.Abs(residual) > 1e-9 {
		t.Fatalf("balance equation residual %v exceeds 1e-9", residual)
	}
}

func TestShinVigFreeBookPassesThrough(t *testing.T) {
	probs := []float64{0.6, 0.4}
	adjusted, z, err := ShinAdjustment(probs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if z > 1e-9 {
		t.Fatalf("vig-free book should solve at z ~ 0, got %v", z)
	}
	if math.Abs(adjusted[0]-0.6) > 1e-6 || math.Abs(adjusted[1]-0.4) > 1e-6 {
		t.Fatalf("vig-free book should pass through unchanged, got %v", adjusted)
	}
}

func TestShinAdjustmentRejectsNonPositive(t *testing.T) {
	for _, probs := range [][]float64{{0.5, 0}, {0.5, -0.1}} {
		if _, _, err := ShinAdjustment(probs); !errors.Is(err, models.ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput for %v, got %v", probs, err)
		}
	}
}

func TestShinAdjustmentEmptyInput(t *testing.T) {
	adjusted, z, err := ShinAdjustment(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(adjusted) != 0 || z != 0 {
		t.Fatalf("expected empty result, got %v z=%v", adjusted, z)
	}
}

func TestNormalizeShin(t *testing.T) {
	adjusted, err := NormalizeShin([]float64{0.55, 0.52})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sum := adjusted[0] + adjusted[1]
	if math.Abs(sum-1.0) > 1e-6 {
		t.Fatalf("NormalizeShin output sums to %v", sum)
	}
	if adjusted[0] <= adjusted[1] {
		t.Fatalf("favorite ordering not preserved: %v", adjusted)
	}
}
