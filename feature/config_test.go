package feature

import (
	"errors"
	"testing"
	"time"
)

func TestDefaultConfigSamples(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.FrameSamples(); got != 250 {
		t.Fatalf("FrameSamples = %d, want 250", got)
	}
	if got := cfg.StepSamples(); got != 100 {
		t.Fatalf("StepSamples = %d, want 100", got)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestNewConfigOptions(t *testing.T) {
	cfg := NewConfig(
		WithSampleRate(16000),
		WithFrameLength(32*time.Millisecond),
		WithFrameStep(16*time.Millisecond),
		WithNumCep(12),
		WithNumFilters(40),
		WithNFFT(512),
		WithFrequencyRange(100, 6000),
		WithPreEmphasis(0),
		WithLifter(0),
		WithAppendEnergy(false),
		WithSinglePrecision(false),
		nil,
	)

	if cfg.SampleRate != 16000 || cfg.NumCep != 12 || cfg.NumFilters != 40 || cfg.NFFT != 512 {
		t.Fatalf("options not applied: %+v", cfg)
	}
	if cfg.FrameSamples() != 512 || cfg.StepSamples() != 256 {
		t.Fatalf("frame samples = %d/%d, want 512/256", cfg.FrameSamples(), cfg.StepSamples())
	}
	if cfg.LowFreq != 100 || cfg.HighFreq != 6000 {
		t.Fatalf("frequency range = [%g, %g]", cfg.LowFreq, cfg.HighFreq)
	}
	if cfg.PreEmphasis != 0 || cfg.Lifter != 0 || cfg.AppendEnergy || cfg.SinglePrecision {
		t.Fatalf("toggles not applied: %+v", cfg)
	}
}

func TestOptionsIgnoreNonPositive(t *testing.T) {
	cfg := NewConfig(WithSampleRate(-1), WithNumCep(0), WithNFFT(-5), WithFrameLength(0))
	if cfg != DefaultConfig() {
		t.Fatalf("non-positive options changed config: %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero sample rate", func(c *Config) { c.SampleRate = 0 }},
		{"sub-sample frame", func(c *Config) { c.FrameLength = 50 * time.Microsecond }},
		{"sub-sample step", func(c *Config) { c.FrameStep = 0 }},
		{"no filters", func(c *Config) { c.NumFilters = 0 }},
		{"numcep above filters", func(c *Config) { c.NumCep = c.NumFilters + 1 }},
		{"zero numcep", func(c *Config) { c.NumCep = 0 }},
		{"zero nfft", func(c *Config) { c.NFFT = 0 }},
		{"negative low", func(c *Config) { c.LowFreq = -1 }},
		{"negative high", func(c *Config) { c.HighFreq = -1 }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("Validate() = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestFingerprint(t *testing.T) {
	base := DefaultConfig()
	if base.Fingerprint() != DefaultConfig().Fingerprint() {
		t.Fatal("fingerprint not stable")
	}

	explicit := base
	explicit.HighFreq = base.SampleRate / 2
	if explicit.Fingerprint() != base.Fingerprint() {
		t.Fatal("explicit Nyquist high frequency should match the implicit default")
	}

	changed := []Config{
		NewConfig(WithNumCep(12)),
		NewConfig(WithLifter(0)),
		NewConfig(WithAppendEnergy(false)),
		NewConfig(WithSinglePrecision(false)),
		NewConfig(WithPreEmphasis(0.95)),
		NewConfig(WithNFFT(512)),
	}
	for i, cfg := range changed {
		if cfg.Fingerprint() == base.Fingerprint() {
			t.Fatalf("config %d: fingerprint unchanged", i)
		}
	}
}
