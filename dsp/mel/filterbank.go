package mel

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ErrConfiguration is matched by every [ConfigurationError].
var ErrConfiguration = errors.New("mel: invalid filterbank configuration")

// ConfigurationError reports a filterbank configuration that cannot produce
// well-formed triangular filters.
type ConfigurationError struct {
	Params Params
	// Filter is the offending filter index, or -1 when the failure is not
	// tied to a single filter.
	Filter int
	// Bins holds the filter's three boundary bins when Filter >= 0.
	Bins   [3]int
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Filter >= 0 {
		return fmt.Sprintf("mel: filter %d boundary bins %v not strictly increasing (sample_rate=%g nfilt=%d nfft=%d low=%g high=%g): %s",
			e.Filter, e.Bins, e.Params.SampleRate, e.Params.NumFilters, e.Params.NFFT,
			e.Params.LowFreq, e.Params.HighFreq, e.Reason)
	}
	return fmt.Sprintf("mel: %s (sample_rate=%g nfilt=%d nfft=%d low=%g high=%g)",
		e.Reason, e.Params.SampleRate, e.Params.NumFilters, e.Params.NFFT, e.Params.LowFreq, e.Params.HighFreq)
}

// Is reports whether target is [ErrConfiguration].
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// Params is the configuration tuple a filterbank is a pure function of.
type Params struct {
	SampleRate float64
	NumFilters int
	NFFT       int
	LowFreq    float64
	// HighFreq of zero selects SampleRate/2.
	HighFreq float64
}

func (p Params) normalized() Params {
	if p.HighFreq == 0 {
		p.HighFreq = p.SampleRate / 2
	}
	return p
}

// FilterBank is an immutable (NumFilters x NFFT/2+1) matrix of triangular
// weights. Row j rises linearly from 0 at bin[j] to 1 at bin[j+1] and falls
// back towards 0 at bin[j+2].
type FilterBank struct {
	params  Params
	bins    []int
	weights *mat.Dense
}

// NewFilterBank builds a filterbank for p.
//
// numFilters+2 points are spaced equally in mel between mel(LowFreq) and
// mel(HighFreq), mapped back to Hz and then to the FFT bin
// floor((nfft+1)*hz/sampleRate). Every filter's three boundary bins must be
// strictly increasing; otherwise a [ConfigurationError] is returned.
func NewFilterBank(p Params) (*FilterBank, error) {
	p = p.normalized()
	if err := validateParams(p); err != nil {
		return nil, err
	}

	points := make([]float64, p.NumFilters+2)
	floats.Span(points, HzToMel(p.LowFreq), HzToMel(p.HighFreq))
	MelToHzInPlace(points)

	bins := make([]int, len(points))
	for i, hz := range points {
		bins[i] = int(math.Floor(float64(p.NFFT+1) * hz / p.SampleRate))
	}

	for j := range p.NumFilters {
		lo, mid, hi := bins[j], bins[j+1], bins[j+2]
		if lo < mid && mid < hi {
			continue
		}
		return nil, &ConfigurationError{
			Params: p,
			Filter: j,
			Bins:   [3]int{lo, mid, hi},
			Reason: "too many filters for the FFT resolution",
		}
	}

	cols := p.NFFT/2 + 1
	weights := mat.NewDense(p.NumFilters, cols, nil)
	for j := range p.NumFilters {
		lo, mid, hi := bins[j], bins[j+1], bins[j+2]
		for i := lo; i < mid; i++ {
			weights.Set(j, i, float64(i-lo)/float64(mid-lo))
		}
		for i := mid; i < hi; i++ {
			weights.Set(j, i, float64(hi-i)/float64(hi-mid))
		}
	}

	return &FilterBank{params: p, bins: bins, weights: weights}, nil
}

func validateParams(p Params) error {
	fail := func(reason string) error {
		return &ConfigurationError{Params: p, Filter: -1, Reason: reason}
	}

	switch {
	case !(p.SampleRate > 0):
		return fail("sample rate must be > 0")
	case p.NumFilters <= 0:
		return fail("number of filters must be > 0")
	case p.NFFT <= 0:
		return fail("nfft must be > 0")
	case p.LowFreq < 0:
		return fail("low frequency must be >= 0")
	case p.HighFreq <= p.LowFreq:
		return fail("high frequency must exceed low frequency")
	case p.HighFreq > p.SampleRate/2:
		return fail("high frequency must not exceed sample_rate/2")
	}

	return nil
}

// Params returns the normalized configuration the bank was built from.
func (fb *FilterBank) Params() Params { return fb.params }

// NumFilters returns the number of filters (rows).
func (fb *FilterBank) NumFilters() int { return fb.params.NumFilters }

// NumBins returns the number of spectrum bins (columns), nfft/2+1.
func (fb *FilterBank) NumBins() int { return fb.params.NFFT/2 + 1 }

// Bins returns a copy of the numFilters+2 boundary bin indices.
func (fb *FilterBank) Bins() []int {
	return append([]int(nil), fb.bins...)
}

// Weights returns the weight matrix. Callers must not modify it.
func (fb *FilterBank) Weights() mat.Matrix { return fb.weights }

// Row returns a copy of filter j's weights.
func (fb *FilterBank) Row(j int) []float64 {
	return mat.Row(nil, j, fb.weights)
}

// RowSum returns the sum of filter j's weights.
func (fb *FilterBank) RowSum(j int) float64 {
	return floats.Sum(fb.weights.RawRowView(j))
}

// Apply projects a power-spectrum matrix (frames x NumBins) through the bank
// and returns the (frames x NumFilters) band energies.
func (fb *FilterBank) Apply(power mat.Matrix) (*mat.Dense, error) {
	_, c := power.Dims()
	if c != fb.NumBins() {
		return nil, fmt.Errorf("mel: power spectrum has %d bins, filterbank expects %d", c, fb.NumBins())
	}

	var out mat.Dense
	out.Mul(power, fb.weights.T())

	return &out, nil
}

var cache sync.Map // Params -> *cacheEntry

type cacheEntry struct {
	once sync.Once
	fb   *FilterBank
	err  error
}

// FilterBankFor returns the shared filterbank for p, building it on first use.
// Configuration errors are cached as well, so a bad configuration fails the
// same way on every call.
func FilterBankFor(p Params) (*FilterBank, error) {
	p = p.normalized()

	v, _ := cache.LoadOrStore(p, &cacheEntry{})
	entry := v.(*cacheEntry)
	entry.once.Do(func() {
		entry.fb, entry.err = NewFilterBank(p)
	})

	return entry.fb, entry.err
}
