package spectrum

import (
	"math"
	"math/cmplx"
	"sync"
	"testing"

	"github.com/cwbudde/algo-vibration/dsp/frame"
	"github.com/cwbudde/algo-vibration/internal/testutil"
)

// naivePower is a direct DFT reference for small sizes.
func naivePower(x []float64, nfft int) []float64 {
	out := make([]float64, nfft/2+1)
	for k := range out {
		var sum complex128
		for n := 0; n < nfft && n < len(x); n++ {
			phase := -2 * math.Pi * float64(k*n) / float64(nfft)
			sum += complex(x[n], 0) * cmplx.Exp(complex(0, phase))
		}
		mag := cmplx.Abs(sum)
		out[k] = mag * mag / float64(nfft)
	}
	return out
}

func TestPower(t *testing.T) {
	pow := Power([]complex128{3 + 4i, -1 - 1i, 0})
	if math.Abs(pow[0]-25) > 1e-12 || math.Abs(pow[1]-2) > 1e-12 || pow[2] != 0 {
		t.Fatalf("unexpected power: %v", pow)
	}

	if Power(nil) != nil {
		t.Fatal("Power(nil) should be nil")
	}

	dst := make([]float64, 1)
	PowerFromParts(dst, []float64{3}, []float64{4})
	if math.Abs(dst[0]-25) > 1e-12 {
		t.Fatalf("PowerFromParts = %v, want 25", dst[0])
	}
}

func TestEstimatorMatchesNaiveDFT(t *testing.T) {
	sizes := []int{16, 64, 24, 100}

	for _, nfft := range sizes {
		e, err := NewEstimator(nfft)
		if err != nil {
			t.Fatalf("NewEstimator(%d) error: %v", nfft, err)
		}

		x := testutil.DeterministicNoise(int64(nfft), 1, nfft)
		got, err := e.Power(x)
		if err != nil {
			t.Fatalf("Power error: %v", err)
		}

		testutil.RequireSliceNearlyEqual(t, got, naivePower(x, nfft), 1e-9)
	}
}

func TestEstimatorPadsAndTruncates(t *testing.T) {
	e, err := NewEstimator(32)
	if err != nil {
		t.Fatalf("NewEstimator error: %v", err)
	}

	short := testutil.DeterministicNoise(1, 1, 10)
	got, err := e.Power(short)
	if err != nil {
		t.Fatalf("Power error: %v", err)
	}
	testutil.RequireSliceNearlyEqual(t, got, naivePower(short, 32), 1e-9)

	long := testutil.DeterministicNoise(2, 1, 50)
	got, err = e.Power(long)
	if err != nil {
		t.Fatalf("Power error: %v", err)
	}
	testutil.RequireSliceNearlyEqual(t, got, naivePower(long[:32], 32), 1e-9)
}

func TestEstimatorParseval(t *testing.T) {
	const nfft = 1024

	e, err := NewEstimator(nfft)
	if err != nil {
		t.Fatalf("NewEstimator error: %v", err)
	}

	x := testutil.DeterministicSine(440, 10000, 1, nfft)
	p, err := e.Power(x)
	if err != nil {
		t.Fatalf("Power error: %v", err)
	}

	// Sum over the full spectrum equals the time-domain energy; interior
	// bins appear twice in the two-sided spectrum.
	total := p[0] + p[nfft/2]
	for k := 1; k < nfft/2; k++ {
		total += 2 * p[k]
	}

	energy := 0.0
	for _, v := range x {
		energy += v * v
	}

	if math.Abs(total-energy) > 1e-6*energy {
		t.Fatalf("spectral energy %v != time energy %v", total, energy)
	}
}

func TestEstimatorPowerFrames(t *testing.T) {
	f, err := frame.New(frame.DefaultConfig(10000))
	if err != nil {
		t.Fatalf("frame.New error: %v", err)
	}
	set := f.Split(testutil.DeterministicSine(1000, 10000, 1, 1024))

	e, err := NewEstimator(1024)
	if err != nil {
		t.Fatalf("NewEstimator error: %v", err)
	}

	pm, err := e.PowerFrames(set)
	if err != nil {
		t.Fatalf("PowerFrames error: %v", err)
	}

	r, c := pm.Dims()
	if r != 9 || c != 513 {
		t.Fatalf("dims = %dx%d, want 9x513", r, c)
	}

	for i := range r {
		for k := range c {
			if v := pm.At(i, k); v < 0 || math.IsNaN(v) {
				t.Fatalf("power[%d][%d] = %v", i, k, v)
			}
		}
	}

	// 1 kHz at 10 kHz with nfft 1024 peaks near bin 102.
	row := pm.RawRowView(0)
	peak := 0
	for k := range row {
		if row[k] > row[peak] {
			peak = k
		}
	}
	if peak < 100 || peak > 104 {
		t.Fatalf("peak bin = %d, want ~102", peak)
	}
}

func TestEstimatorConcurrentUse(t *testing.T) {
	e, err := NewEstimator(256)
	if err != nil {
		t.Fatalf("NewEstimator error: %v", err)
	}

	x := testutil.DeterministicNoise(9, 1, 256)
	want, err := e.Power(x)
	if err != nil {
		t.Fatalf("Power error: %v", err)
	}

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 20 {
				got, err := e.Power(x)
				if err != nil {
					t.Errorf("Power error: %v", err)
					return
				}
				for k := range got {
					if got[k] != want[k] {
						t.Errorf("bin %d: %v != %v", k, got[k], want[k])
						return
					}
				}
			}
		}()
	}
	wg.Wait()
}

func TestEstimatorErrors(t *testing.T) {
	if _, err := NewEstimator(0); err == nil {
		t.Fatal("expected error for zero nfft")
	}

	e, err := NewEstimator(8)
	if err != nil {
		t.Fatalf("NewEstimator error: %v", err)
	}
	if err := e.PowerInto(make([]float64, 3), make([]float64, 8)); err == nil {
		t.Fatal("expected error for wrong dst length")
	}
	if _, err := e.PowerFrames(frame.Set{}); err == nil {
		t.Fatal("expected error for empty frame set")
	}
}
