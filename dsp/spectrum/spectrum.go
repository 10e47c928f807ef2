package spectrum

import (
	"fmt"
	"math/bits"
	"sync"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/mat"

	"github.com/cwbudde/algo-vibration/dsp/frame"
)

// Power returns |X[k]|^2 for each complex spectrum bin.
func Power(in []complex128) []float64 {
	if len(in) == 0 {
		return nil
	}

	out := make([]float64, len(in))
	re := make([]float64, len(in))
	im := make([]float64, len(in))
	for i, c := range in {
		re[i] = real(c)
		im[i] = imag(c)
	}

	vecmath.Power(out, re, im)
	return out
}

// PowerFromParts computes |X[k]|^2 = re[k]^2 + im[k]^2 into dst.
// All three slices must have the same length.
func PowerFromParts(dst, re, im []float64) {
	vecmath.Power(dst, re, im)
}

// NumBins returns the number of non-negative-frequency bins, nfft/2+1.
func NumBins(nfft int) int { return nfft/2 + 1 }

// Estimator computes power spectra with a fixed FFT size.
type Estimator struct {
	nfft  int
	pow2  bool
	scale float64
	pool  sync.Pool
}

// workspace is the per-goroutine FFT state.
type workspace struct {
	plan *algofft.Plan[complex128]
	in   []complex128
	out  []complex128

	real   *fourier.FFT
	seq    []float64
	coeffs []complex128

	re, im []float64
}

// NewEstimator returns an Estimator for FFT size nfft.
func NewEstimator(nfft int) (*Estimator, error) {
	if nfft <= 0 {
		return nil, fmt.Errorf("spectrum: nfft must be > 0: %d", nfft)
	}

	e := &Estimator{
		nfft:  nfft,
		pow2:  bits.OnesCount(uint(nfft)) == 1,
		scale: 1.0 / float64(nfft),
	}

	// Build one workspace eagerly so plan construction errors surface here.
	ws, err := e.newWorkspace()
	if err != nil {
		return nil, err
	}
	e.pool.Put(ws)

	return e, nil
}

func (e *Estimator) newWorkspace() (*workspace, error) {
	bins := NumBins(e.nfft)
	ws := &workspace{
		re: make([]float64, bins),
		im: make([]float64, bins),
	}

	if e.pow2 {
		plan, err := algofft.NewPlan64(e.nfft)
		if err != nil {
			return nil, fmt.Errorf("spectrum: failed to create FFT plan: %w", err)
		}
		ws.plan = plan
		ws.in = make([]complex128, e.nfft)
		ws.out = make([]complex128, e.nfft)
		return ws, nil
	}

	ws.real = fourier.NewFFT(e.nfft)
	ws.seq = make([]float64, e.nfft)
	ws.coeffs = make([]complex128, bins)
	return ws, nil
}

func (e *Estimator) acquire() (*workspace, error) {
	if v := e.pool.Get(); v != nil {
		return v.(*workspace), nil
	}
	return e.newWorkspace()
}

// NFFT returns the FFT size.
func (e *Estimator) NFFT() int { return e.nfft }

// NumBins returns nfft/2+1.
func (e *Estimator) NumBins() int { return NumBins(e.nfft) }

// PowerInto writes the power spectrum of frame into dst, which must hold
// NumBins values. The frame is truncated or zero-padded to nfft samples.
// Power is |FFT(frame)[k]|^2 / nfft for k in [0, nfft/2].
func (e *Estimator) PowerInto(dst, frame []float64) error {
	if len(dst) != e.NumBins() {
		return fmt.Errorf("spectrum: dst has %d bins, want %d", len(dst), e.NumBins())
	}

	ws, err := e.acquire()
	if err != nil {
		return err
	}
	defer e.pool.Put(ws)

	n := min(len(frame), e.nfft)

	if e.pow2 {
		for i := range ws.in {
			ws.in[i] = 0
		}
		for i := range n {
			ws.in[i] = complex(frame[i], 0)
		}
		if err := ws.plan.Forward(ws.out, ws.in); err != nil {
			return fmt.Errorf("spectrum: forward FFT: %w", err)
		}
		for k := range ws.re {
			ws.re[k] = real(ws.out[k])
			ws.im[k] = imag(ws.out[k])
		}
	} else {
		clear(ws.seq)
		copy(ws.seq, frame[:n])
		ws.coeffs = ws.real.Coefficients(ws.coeffs, ws.seq)
		for k := range ws.re {
			ws.re[k] = real(ws.coeffs[k])
			ws.im[k] = imag(ws.coeffs[k])
		}
	}

	vecmath.Power(dst, ws.re, ws.im)
	vecmath.ScaleBlock(dst, dst, e.scale)

	return nil
}

// Power returns the power spectrum of a single frame.
func (e *Estimator) Power(frame []float64) ([]float64, error) {
	dst := make([]float64, e.NumBins())
	if err := e.PowerInto(dst, frame); err != nil {
		return nil, err
	}
	return dst, nil
}

// PowerFrames returns the (frames x NumBins) power spectrum matrix of set.
func (e *Estimator) PowerFrames(set frame.Set) (*mat.Dense, error) {
	if set.Count == 0 {
		return nil, fmt.Errorf("spectrum: empty frame set")
	}

	bins := e.NumBins()
	data := make([]float64, set.Count*bins)
	for i := range set.Count {
		if err := e.PowerInto(data[i*bins:(i+1)*bins], set.Frame(i)); err != nil {
			return nil, fmt.Errorf("spectrum: frame %d: %w", i, err)
		}
	}

	return mat.NewDense(set.Count, bins, data), nil
}
