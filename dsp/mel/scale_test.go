package mel

import (
	"math"
	"testing"
)

func TestMelRoundTrip(t *testing.T) {
	for _, m := range []float64{0, 500, 2000, 8000} {
		got := HzToMel(MelToHz(m))
		if math.Abs(got-m) > 1e-6 {
			t.Fatalf("HzToMel(MelToHz(%v)) = %v", m, got)
		}
	}
}

func TestHzToMelReferencePoints(t *testing.T) {
	if HzToMel(0) != 0 {
		t.Fatalf("HzToMel(0) = %v, want 0", HzToMel(0))
	}

	// 700 Hz maps to 2595*log10(2).
	want := 2595 * math.Log10(2)
	if got := HzToMel(700); math.Abs(got-want) > 1e-9 {
		t.Fatalf("HzToMel(700) = %v, want %v", got, want)
	}

	if got := HzToMel(1000); math.Abs(got-1000) > 0.1 {
		t.Fatalf("HzToMel(1000) = %v, want ~1000", got)
	}
}

func TestMelToHzInPlace(t *testing.T) {
	buf := []float64{0, HzToMel(440), HzToMel(5000)}
	MelToHzInPlace(buf)

	want := []float64{0, 440, 5000}
	for i := range buf {
		if math.Abs(buf[i]-want[i]) > 1e-9 {
			t.Fatalf("buf[%d]=%v want=%v", i, buf[i], want[i])
		}
	}
}
