package time

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-vibration/internal/testutil"
)

func near(a, b, eps float64) bool { return math.Abs(a-b) <= eps }

func TestCalculateEmpty(t *testing.T) {
	if got := Calculate(nil); got != (Indicators{}) {
		t.Fatalf("Calculate(nil) = %+v, want zero value", got)
	}
}

func TestCalculateSilence(t *testing.T) {
	got := Calculate(make([]float64, 64))
	if got.Length != 64 || got.RMS != 0 || got.Peak != 0 || got.CrestFactor != 0 || got.Kurtosis != 0 {
		t.Fatalf("Calculate(zeros) = %+v", got)
	}
}

func TestCalculateSine(t *testing.T) {
	// 100 full periods of a unit sine.
	sig := testutil.DeterministicSine(100, 10000, 1, 10000)
	got := Calculate(sig)

	tests := []struct {
		name      string
		got, want float64
		eps       float64
	}{
		{"dc", got.DC, 0, 1e-12},
		{"rms", got.RMS, 1 / math.Sqrt2, 1e-9},
		{"std", got.StdDev, 1 / math.Sqrt2, 1e-9},
		{"peak", got.Peak, 1, 1e-9},
		{"crest", got.CrestFactor, math.Sqrt2, 1e-8},
		{"kurtosis", got.Kurtosis, 1.5, 1e-6},
		{"skewness", got.Skewness, 0, 1e-9},
	}
	for _, tc := range tests {
		if !near(tc.got, tc.want, tc.eps) {
			t.Fatalf("%s = %v, want %v", tc.name, tc.got, tc.want)
		}
	}
}

func TestCalculateImpulsive(t *testing.T) {
	sig := testutil.DeterministicSine(100, 10000, 0.1, 4096)
	smooth := Calculate(sig)

	for i := 0; i < len(sig); i += 512 {
		sig[i] += 2
	}
	impulsive := Calculate(sig)

	if impulsive.Kurtosis <= 3 || impulsive.Kurtosis <= smooth.Kurtosis {
		t.Fatalf("kurtosis %v should exceed 3 and %v", impulsive.Kurtosis, smooth.Kurtosis)
	}
	if impulsive.CrestFactor <= smooth.CrestFactor {
		t.Fatalf("crest factor %v should exceed %v", impulsive.CrestFactor, smooth.CrestFactor)
	}
	if impulsive.Skewness <= 0 {
		t.Fatalf("positive impulses should skew right, got %v", impulsive.Skewness)
	}
}

func TestPeakNegative(t *testing.T) {
	if got := Peak([]float64{0.5, -3, 2}); got != 3 {
		t.Fatalf("Peak = %v, want 3", got)
	}
	if RMS(nil) != 0 || Peak(nil) != 0 {
		t.Fatal("empty input should give 0")
	}
}

func TestAxes(t *testing.T) {
	axes := testutil.TriAxial(1, 10000, 1000)
	got := Axes(axes)
	for i := range axes {
		if got[i] != Calculate(axes[i]) {
			t.Fatalf("axis %d mismatch", i)
		}
	}
}
