package odds

import (
	"errors"
	"math"
	"testing"

	"github.com/yourusername/fightprob/internal/models"
)

func TestAmericanToDecimal(t *testing.T) {
	tests := []struct {
		american float64
		want     float64
	}{
		{american: 100, want: 2.0},
		{american: 150, want: 2.5},
		{american: -110, want: 1 + 100.0/110.0},
		{american: -200, want: 1.5},
	}
	for _, tc := range tests {
		got, err := AmericanToDecimal(tc.american)
		if err != nil {
			t.Fatalf("AmericanToDecimal(%v) returned error: %v", tc.american, err)
		}
		if math.Abs(got-tc.want) > 1e-12 {
			t.Fatalf("AmericanToDecimal(%v) = %v, want %v", tc.american, got, tc.want)
		}
	}
}

func TestAmericanToDecimalRejectsZero(t *testing.T) {
	if _, err := AmericanToDecimal(0); !errors.Is(err, models.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for zero odds, got %v", err)
	}
}

func TestDecimalToAmerican(t *testing.T) {
	got, err := DecimalToAmerican(2.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(got-150) > 1e-9 {
		t.Fatalf("DecimalToAmerican(2.5) = %v, want 150", got)
	}

	got, err = DecimalToAmerican(1.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(got+200) > 1e-9 {
		t.Fatalf("DecimalToAmerican(1.5) = %v, want -200", got)
	}

	if _, err := DecimalToAmerican(1.0); !errors.Is(err, models.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for decimal odds <= 1, got %v", err)
	}
}

func TestImpliedRoundTrip(t *testing.T) {
	for p := 0.06; p < 0.95; p += 0.01 {
		american, err := ImpliedToAmerican(p)
		if err != nil {
			t.Fatalf("ImpliedToAmerican(%v) returned error: %v", p, err)
		}
		back, err := AmericanToImplied(american)
		if err != nil {
			t.Fatalf("AmericanToImplied(%v) returned error: %v", american, err)
		}
		if math.Abs(back-p)/p > 1e-3 {
			t.Fatalf("round trip for p=%v drifted to %v", p, back)
		}
	}
}

func TestImpliedToAmericanRejectsOutOfRange(t *testing.T) {
	for _, p := range []float64{0, 1, -0.2, 1.4} {
		if _, err := ImpliedToAmerican(p); !errors.Is(err, models.ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput for p=%v, got %v", p, err)
		}
	}
}

func TestOverround(t *testing.T) {
	got := Overround([]float64{0.5238, 0.4878})
	if math.Abs(got-0.0116) > 1e-4 {
		t.Fatalf("Overround = %v, want ~0.0116", got)
	}
}

func TestNormalizeProportional(t *testing.T) {
	normalized, err := NormalizeProportional([]float64{0.5238, 0.4878})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sum := normalized[0] + normalized[1]
	if math.Abs(sum-1.0) > 1e-12 {
		t.Fatalf("normalized probabilities sum to %v", sum)
	}
	if math.Abs(normalized[0]-0.5179) > 1e-3 {
		t.Fatalf("normalized favorite = %v, want ~0.5179", normalized[0])
	}
}
