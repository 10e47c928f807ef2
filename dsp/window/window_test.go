package window

import (
	"math"
	"testing"
)

func TestGenerateFinite(t *testing.T) {
	for _, typ := range []Type{TypeRectangular, TypeHann, TypeHamming} {
		t.Run(typ.String(), func(t *testing.T) {
			w := Generate(typ, 64)
			if len(w) != 64 {
				t.Fatalf("len=%d, want 64", len(w))
			}

			for i, v := range w {
				if math.IsNaN(v) || math.IsInf(v, 0) {
					t.Fatalf("coefficient[%d] invalid: %v", i, v)
				}
			}
		})
	}
}

func TestHammingMatchesClosedForm(t *testing.T) {
	const n = 250

	w, err := Hamming(n)
	if err != nil {
		t.Fatalf("Hamming error: %v", err)
	}

	for i, v := range w {
		want := 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/float64(n-1))
		if math.Abs(v-want) > 1e-12 {
			t.Fatalf("w[%d]=%v want=%v", i, v, want)
		}
	}

	for i := range n / 2 {
		if math.Abs(w[i]-w[n-1-i]) > 1e-12 {
			t.Fatalf("symmetric window mismatch at %d: %v vs %v", i, w[i], w[n-1-i])
		}
	}
}

func TestPeriodicDiffersFromSymmetric(t *testing.T) {
	sym := Generate(TypeHann, 32)
	per := Generate(TypeHann, 32, WithPeriodic())

	if math.Abs(sym[31]) > 1e-15 {
		t.Fatalf("symmetric Hann edge = %v, want 0", sym[31])
	}
	if per[31] == 0 {
		t.Fatal("periodic Hann last sample should be non-zero")
	}
}

func TestApplyCoefficientsInPlace(t *testing.T) {
	samples := []float64{2, 2, 2}
	if err := ApplyCoefficientsInPlace(samples, []float64{0.5, 1, 0}); err != nil {
		t.Fatalf("ApplyCoefficientsInPlace error: %v", err)
	}
	if samples[0] != 1 || samples[1] != 2 || samples[2] != 0 {
		t.Fatalf("unexpected samples: %v", samples)
	}

	if err := ApplyCoefficientsInPlace(samples, []float64{1}); err == nil {
		t.Fatal("expected error for mismatched length")
	}
}

func TestCoherentGain(t *testing.T) {
	g, err := CoherentGain(Generate(TypeRectangular, 8))
	if err != nil || g != 1 {
		t.Fatalf("CoherentGain(rect) = %v, %v; want 1", g, err)
	}

	if _, err := CoherentGain(nil); err == nil {
		t.Fatal("expected error for empty coefficients")
	}
}

func TestValidationAndEdgeCases(t *testing.T) {
	if w := Generate(TypeHamming, 0); w != nil {
		t.Fatalf("Generate(0) = %v, want nil", w)
	}

	if _, err := Hamming(-1); err == nil {
		t.Fatal("expected error for negative size")
	}

	w := Generate(TypeHamming, 1)
	if len(w) != 1 || w[0] != 1 {
		t.Fatalf("single-sample window = %v, want [1]", w)
	}
}
