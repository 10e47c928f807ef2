package feature

import (
	"errors"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/cwbudde/algo-vibration/dsp/cepstrum"
	"github.com/cwbudde/algo-vibration/dsp/frame"
	"github.com/cwbudde/algo-vibration/dsp/mel"
	"github.com/cwbudde/algo-vibration/dsp/window"
)

// ErrInvalidConfig is wrapped by every error returned from Config.Validate.
var ErrInvalidConfig = errors.New("feature: invalid configuration")

// Default pipeline settings.
const (
	DefaultSampleRate  = 10000
	DefaultFrameLength = 25 * time.Millisecond
	DefaultFrameStep   = 10 * time.Millisecond
	DefaultNumFilters  = 26
	DefaultNFFT        = 1024
)

// Config is the full configuration surface of the per-axis pipeline.
type Config struct {
	SampleRate  float64       `mapstructure:"sample_rate" yaml:"sample_rate" json:"sample_rate" msgpack:"sample_rate"`
	FrameLength time.Duration `mapstructure:"frame_length" yaml:"frame_length" json:"frame_length" msgpack:"frame_length"`
	FrameStep   time.Duration `mapstructure:"frame_step" yaml:"frame_step" json:"frame_step" msgpack:"frame_step"`
	NumCep      int           `mapstructure:"num_cep" yaml:"num_cep" json:"num_cep" msgpack:"num_cep"`
	NumFilters  int           `mapstructure:"num_filters" yaml:"num_filters" json:"num_filters" msgpack:"num_filters"`
	NFFT        int           `mapstructure:"nfft" yaml:"nfft" json:"nfft" msgpack:"nfft"`
	LowFreq     float64       `mapstructure:"low_freq" yaml:"low_freq" json:"low_freq" msgpack:"low_freq"`
	// HighFreq of 0 selects SampleRate/2.
	HighFreq float64 `mapstructure:"high_freq" yaml:"high_freq" json:"high_freq" msgpack:"high_freq"`
	// PreEmphasis <= 0 disables pre-emphasis.
	PreEmphasis float64 `mapstructure:"pre_emphasis" yaml:"pre_emphasis" json:"pre_emphasis" msgpack:"pre_emphasis"`
	// Lifter <= 0 disables liftering.
	Lifter       float64 `mapstructure:"lifter" yaml:"lifter" json:"lifter" msgpack:"lifter"`
	AppendEnergy bool    `mapstructure:"append_energy" yaml:"append_energy" json:"append_energy" msgpack:"append_energy"`
	// SinglePrecision rounds framing to float32 like the deployed models
	// were trained with.
	SinglePrecision bool `mapstructure:"single_precision" yaml:"single_precision" json:"single_precision" msgpack:"single_precision"`
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns the 10 kHz, 25 ms / 10 ms, 13 x 26 configuration.
func DefaultConfig() Config {
	return Config{
		SampleRate:      DefaultSampleRate,
		FrameLength:     DefaultFrameLength,
		FrameStep:       DefaultFrameStep,
		NumCep:          cepstrum.DefaultNumCep,
		NumFilters:      DefaultNumFilters,
		NFFT:            DefaultNFFT,
		PreEmphasis:     frame.DefaultPreEmphasis,
		Lifter:          cepstrum.DefaultLifter,
		AppendEnergy:    true,
		SinglePrecision: true,
	}
}

// NewConfig applies zero or more options to the default config.
func NewConfig(opts ...Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithSampleRate sets the sample rate in Hz.
func WithSampleRate(sampleRate float64) Option {
	return func(cfg *Config) {
		if sampleRate > 0 {
			cfg.SampleRate = sampleRate
		}
	}
}

// WithFrameLength sets the inner frame length.
func WithFrameLength(d time.Duration) Option {
	return func(cfg *Config) {
		if d > 0 {
			cfg.FrameLength = d
		}
	}
}

// WithFrameStep sets the hop between inner frames.
func WithFrameStep(d time.Duration) Option {
	return func(cfg *Config) {
		if d > 0 {
			cfg.FrameStep = d
		}
	}
}

// WithNumCep sets the number of cepstral coefficients per frame.
func WithNumCep(n int) Option {
	return func(cfg *Config) {
		if n > 0 {
			cfg.NumCep = n
		}
	}
}

// WithNumFilters sets the number of mel filters.
func WithNumFilters(n int) Option {
	return func(cfg *Config) {
		if n > 0 {
			cfg.NumFilters = n
		}
	}
}

// WithNFFT sets the FFT size.
func WithNFFT(n int) Option {
	return func(cfg *Config) {
		if n > 0 {
			cfg.NFFT = n
		}
	}
}

// WithFrequencyRange sets the filterbank edges. A high of 0 means Nyquist.
func WithFrequencyRange(low, high float64) Option {
	return func(cfg *Config) {
		cfg.LowFreq = low
		cfg.HighFreq = high
	}
}

// WithPreEmphasis sets the pre-emphasis coefficient.
func WithPreEmphasis(coeff float64) Option {
	return func(cfg *Config) { cfg.PreEmphasis = coeff }
}

// WithLifter sets the lifter parameter.
func WithLifter(lifter float64) Option {
	return func(cfg *Config) { cfg.Lifter = lifter }
}

// WithAppendEnergy toggles replacing coefficient 0 with the frame log energy.
func WithAppendEnergy(enabled bool) Option {
	return func(cfg *Config) { cfg.AppendEnergy = enabled }
}

// WithSinglePrecision toggles float32 framing.
func WithSinglePrecision(enabled bool) Option {
	return func(cfg *Config) { cfg.SinglePrecision = enabled }
}

// FrameSamples returns the inner frame length in samples, truncated.
func (cfg Config) FrameSamples() int {
	return int(cfg.FrameLength.Seconds() * cfg.SampleRate)
}

// StepSamples returns the inner frame hop in samples, truncated.
func (cfg Config) StepSamples() int {
	return int(cfg.FrameStep.Seconds() * cfg.SampleRate)
}

// Validate checks the scalar settings. Filterbank geometry is checked by
// NewExtractor, which reports a *mel.ConfigurationError.
func (cfg Config) Validate() error {
	switch {
	case cfg.SampleRate <= 0:
		return fmt.Errorf("%w: sample rate must be > 0, got %g", ErrInvalidConfig, cfg.SampleRate)
	case cfg.FrameSamples() <= 0:
		return fmt.Errorf("%w: frame length %v is shorter than one sample at %g Hz", ErrInvalidConfig, cfg.FrameLength, cfg.SampleRate)
	case cfg.StepSamples() <= 0:
		return fmt.Errorf("%w: frame step %v is shorter than one sample at %g Hz", ErrInvalidConfig, cfg.FrameStep, cfg.SampleRate)
	case cfg.NumFilters <= 0:
		return fmt.Errorf("%w: filter count must be > 0, got %d", ErrInvalidConfig, cfg.NumFilters)
	case cfg.NumCep <= 0 || cfg.NumCep > cfg.NumFilters:
		return fmt.Errorf("%w: numcep must be in [1, %d], got %d", ErrInvalidConfig, cfg.NumFilters, cfg.NumCep)
	case cfg.NFFT <= 0:
		return fmt.Errorf("%w: nfft must be > 0, got %d", ErrInvalidConfig, cfg.NFFT)
	case cfg.LowFreq < 0 || cfg.HighFreq < 0:
		return fmt.Errorf("%w: negative frequency range [%g, %g]", ErrInvalidConfig, cfg.LowFreq, cfg.HighFreq)
	}
	return nil
}

// MelParams returns the filterbank parameters of cfg.
func (cfg Config) MelParams() mel.Params {
	return mel.Params{
		SampleRate: cfg.SampleRate,
		NumFilters: cfg.NumFilters,
		NFFT:       cfg.NFFT,
		LowFreq:    cfg.LowFreq,
		HighFreq:   cfg.HighFreq,
	}
}

// FrameConfig returns the framing parameters of cfg.
func (cfg Config) FrameConfig() frame.Config {
	return frame.Config{
		Length:          cfg.FrameSamples(),
		Step:            cfg.StepSamples(),
		PreEmphasis:     cfg.PreEmphasis,
		Window:          window.TypeHamming,
		SinglePrecision: cfg.SinglePrecision,
	}
}

// CepstrumConfig returns the cepstral parameters of cfg.
func (cfg Config) CepstrumConfig() cepstrum.Config {
	return cepstrum.Config{
		NumCep:       cfg.NumCep,
		Lifter:       cfg.Lifter,
		AppendEnergy: cfg.AppendEnergy,
	}
}

// Fingerprint returns a stable hash of every setting that affects output
// values. Cached tensors are keyed by it.
func (cfg Config) Fingerprint() uint64 {
	high := cfg.HighFreq
	if high == 0 {
		high = cfg.SampleRate / 2
	}

	d := xxhash.New()
	_, _ = fmt.Fprintf(d, "sr=%g;fl=%d;fs=%d;nc=%d;nf=%d;nfft=%d;lo=%g;hi=%g;pe=%g;lift=%g;ae=%t;sp=%t",
		cfg.SampleRate, cfg.FrameSamples(), cfg.StepSamples(), cfg.NumCep, cfg.NumFilters, cfg.NFFT,
		cfg.LowFreq, high, cfg.PreEmphasis, cfg.Lifter,
		cfg.AppendEnergy, cfg.SinglePrecision)
	return d.Sum64()
}
