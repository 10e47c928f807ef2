// Package frame pre-emphasizes a one-dimensional signal and slices it into
// overlapping, windowed analysis frames.
package frame

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-vibration/dsp/core"
	"github.com/cwbudde/algo-vibration/dsp/window"
)

// DefaultPreEmphasis is the first-order pre-emphasis coefficient.
const DefaultPreEmphasis = 0.97

var errInvalidStep = errors.New("frame step must be > 0")

// Config describes how a signal is framed.
type Config struct {
	// Length is the frame length in samples.
	Length int
	// Step is the hop between frame starts in samples.
	Step int
	// PreEmphasis is the coefficient of y[n] = x[n] - c*x[n-1]; values <= 0
	// skip pre-emphasis entirely.
	PreEmphasis float64
	// Window is the taper applied to every frame.
	Window window.Type
	// SinglePrecision rounds samples to float32 before pre-emphasis, performs
	// pre-emphasis in float32 and stores windowed frames as float32 values.
	SinglePrecision bool
}

// DefaultConfig returns 25 ms / 10 ms Hamming framing for the given rate.
func DefaultConfig(sampleRate float64) Config {
	return Config{
		Length:          int(0.025 * sampleRate),
		Step:            int(0.01 * sampleRate),
		PreEmphasis:     DefaultPreEmphasis,
		Window:          window.TypeHamming,
		SinglePrecision: true,
	}
}

// Validate reports whether cfg can frame a signal.
func (cfg Config) Validate() error {
	if cfg.Length <= 0 {
		return fmt.Errorf("frame length must be > 0: %d", cfg.Length)
	}
	if cfg.Step <= 0 {
		return fmt.Errorf("%w: %d", errInvalidStep, cfg.Step)
	}
	return nil
}

// NumFrames returns ceil(|signalLen - frameLen| / step) + 1.
//
// The absolute value makes signals shorter than one frame resolve to the
// same count as signals equally far above the frame length.
func NumFrames(signalLen, frameLen, step int) int {
	if step <= 0 {
		panic(errInvalidStep)
	}

	d := signalLen - frameLen
	if d < 0 {
		d = -d
	}

	return (d+step-1)/step + 1
}

// PreEmphasis returns y with y[0] = x[0] and y[n] = x[n] - coeff*x[n-1].
// A coeff <= 0 returns a copy of x.
func PreEmphasis(x []float64, coeff float64) []float64 {
	y := make([]float64, len(x))
	if len(x) == 0 {
		return y
	}

	if coeff <= 0 {
		copy(y, x)
		return y
	}

	y[0] = x[0]
	for n := 1; n < len(x); n++ {
		y[n] = x[n] - coeff*x[n-1]
	}

	return y
}

// PreEmphasis32 is PreEmphasis evaluated in float32 arithmetic. Inputs are
// rounded to float32 first; the results are widened back to float64.
func PreEmphasis32(x []float64, coeff float64) []float64 {
	y := make([]float64, len(x))
	if len(x) == 0 {
		return y
	}

	if coeff <= 0 {
		for i, v := range x {
			y[i] = core.Round32(v)
		}
		return y
	}

	c := float32(coeff)
	prev := float32(x[0])
	y[0] = float64(prev)
	for n := 1; n < len(x); n++ {
		cur := float32(x[n])
		// The explicit conversion keeps the product rounded before the
		// subtraction, so no fused multiply-add is emitted.
		y[n] = float64(cur - float32(c*prev))
		prev = cur
	}

	return y
}

// Set holds the frames of one signal in a single row-major buffer.
type Set struct {
	Data   []float64
	Count  int
	Length int
}

// Frame returns a view of frame i.
func (s Set) Frame(i int) []float64 {
	return s.Data[i*s.Length : (i+1)*s.Length]
}

// Framer applies a fixed Config. The window coefficients are computed once
// and shared, so a Framer is safe for concurrent use.
type Framer struct {
	cfg    Config
	window []float64
}

// New returns a Framer for cfg.
func New(cfg Config) (*Framer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Framer{
		cfg:    cfg,
		window: window.Generate(cfg.Window, cfg.Length),
	}, nil
}

// Config returns the framing configuration.
func (f *Framer) Config() Config { return f.cfg }

// Window returns a copy of the shared window coefficients.
func (f *Framer) Window() []float64 {
	return append([]float64(nil), f.window...)
}

// Split pre-emphasizes signal, zero-pads it on the right to
// NumFrames*Step + Length samples and returns the windowed frames.
// Frame i covers samples [i*Step, i*Step+Length).
func (f *Framer) Split(signal []float64) Set {
	var y []float64
	if f.cfg.SinglePrecision {
		y = PreEmphasis32(signal, f.cfg.PreEmphasis)
	} else {
		y = PreEmphasis(signal, f.cfg.PreEmphasis)
	}

	length, step := f.cfg.Length, f.cfg.Step
	count := NumFrames(len(y), length, step)

	padded := make([]float64, count*step+length)
	copy(padded, y)

	set := Set{
		Data:   make([]float64, count*length),
		Count:  count,
		Length: length,
	}

	for i := range count {
		frame := set.Frame(i)
		copy(frame, padded[i*step:i*step+length])
		_ = window.ApplyCoefficientsInPlace(frame, f.window)
		if f.cfg.SinglePrecision {
			for k, v := range frame {
				frame[k] = core.Round32(v)
			}
		}
	}

	return set
}
