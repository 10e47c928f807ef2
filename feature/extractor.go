package feature

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/cwbudde/algo-vibration/dsp/cepstrum"
	"github.com/cwbudde/algo-vibration/dsp/core"
	"github.com/cwbudde/algo-vibration/dsp/frame"
	"github.com/cwbudde/algo-vibration/dsp/mel"
	"github.com/cwbudde/algo-vibration/dsp/spectrum"
)

// ErrNonFinite is returned when a pipeline stage produced NaN or Inf.
var ErrNonFinite = errors.New("feature: non-finite coefficient")

// ErrAxisLength is returned by Stack when the axes differ in length.
var ErrAxisLength = errors.New("feature: axis length mismatch")

// AxisError attributes a failure to one axis of a window.
type AxisError struct {
	Axis int
	Err  error
}

func (e *AxisError) Error() string {
	return fmt.Sprintf("feature: axis %d: %v", e.Axis, e.Err)
}

func (e *AxisError) Unwrap() error { return e.Err }

// Extractor computes cepstral coefficients for single axes and stacked
// tri-axial windows.
type Extractor struct {
	cfg       Config
	framer    *frame.Framer
	estimator *spectrum.Estimator
	transform *cepstrum.Transform
}

// NewExtractor validates cfg and prepares the shared pipeline stages.
// Filterbank geometry errors are returned as *mel.ConfigurationError.
func NewExtractor(cfg Config) (*Extractor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	fb, err := mel.FilterBankFor(cfg.MelParams())
	if err != nil {
		return nil, err
	}

	framer, err := frame.New(cfg.FrameConfig())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	estimator, err := spectrum.NewEstimator(cfg.NFFT)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	transform, err := cepstrum.New(fb, cfg.CepstrumConfig())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return &Extractor{
		cfg:       cfg,
		framer:    framer,
		estimator: estimator,
		transform: transform,
	}, nil
}

// Config returns the extractor configuration.
func (e *Extractor) Config() Config { return e.cfg }

// FilterBank returns the shared mel filterbank.
func (e *Extractor) FilterBank() *mel.FilterBank { return e.transform.FilterBank() }

// NumFrames returns the number of inner frames produced for a signal of
// signalLen samples.
func (e *Extractor) NumFrames(signalLen int) int {
	fc := e.framer.Config()
	return frame.NumFrames(signalLen, fc.Length, fc.Step)
}

// Shape returns the (frames, numcep, channels) shape of a tensor built from
// windows of windowLen samples per axis.
func (e *Extractor) Shape(windowLen int) [3]int {
	return [3]int{e.NumFrames(windowLen), e.cfg.NumCep, Channels}
}

// ExtractAxis returns the (frames x NumCep) coefficients of one axis.
func (e *Extractor) ExtractAxis(signal []float64) (*mat.Dense, error) {
	frames := e.framer.Split(signal)

	power, err := e.estimator.PowerFrames(frames)
	if err != nil {
		return nil, err
	}

	cep, err := e.transform.Apply(power)
	if err != nil {
		return nil, err
	}

	if i := core.FirstNonFinite(cep.RawMatrix().Data); i >= 0 {
		_, cols := cep.Dims()
		return nil, fmt.Errorf("%w at frame %d, coefficient %d", ErrNonFinite, i/cols, i%cols)
	}

	return cep, nil
}

// Stack extracts every axis of a window and stacks the results. Failures
// are reported as *AxisError.
func (e *Extractor) Stack(axes [Channels][]float64) (*Tensor, error) {
	for ch := 1; ch < Channels; ch++ {
		if len(axes[ch]) != len(axes[0]) {
			return nil, fmt.Errorf("%w: axis %d has %d samples, axis 0 has %d",
				ErrAxisLength, ch, len(axes[ch]), len(axes[0]))
		}
	}

	var mats [Channels]*mat.Dense
	for ch, signal := range axes {
		m, err := e.ExtractAxis(signal)
		if err != nil {
			return nil, &AxisError{Axis: ch, Err: err}
		}
		mats[ch] = m
	}

	return StackAxes(mats)
}
