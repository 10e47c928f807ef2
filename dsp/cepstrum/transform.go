package cepstrum

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/cwbudde/algo-vibration/dsp/core"
	"github.com/cwbudde/algo-vibration/dsp/mel"
)

const (
	DefaultNumCep = 13
	DefaultLifter = 22
)

// Config controls the cepstral stage.
type Config struct {
	NumCep int
	// Lifter is the liftering parameter; values <= 0 disable liftering.
	Lifter float64
	// AppendEnergy replaces coefficient 0 with ln(sum of frame power).
	AppendEnergy bool
}

// DefaultConfig returns 13 coefficients, lifter 22 and energy substitution.
func DefaultConfig() Config {
	return Config{NumCep: DefaultNumCep, Lifter: DefaultLifter, AppendEnergy: true}
}

// Transform maps power spectra to cepstral coefficients. It only holds
// immutable shared matrices and is safe for concurrent use.
type Transform struct {
	cfg   Config
	fb    *mel.FilterBank
	basis *Basis
	lift  []float64
}

// New returns a Transform projecting through fb.
func New(fb *mel.FilterBank, cfg Config) (*Transform, error) {
	if fb == nil {
		return nil, fmt.Errorf("cepstrum: nil filterbank")
	}

	basis, err := BasisFor(cfg.NumCep, fb.NumFilters())
	if err != nil {
		return nil, err
	}

	return &Transform{
		cfg:   cfg,
		fb:    fb,
		basis: basis,
		lift:  LifterWeights(cfg.NumCep, cfg.Lifter),
	}, nil
}

// Config returns the transform configuration.
func (t *Transform) Config() Config { return t.cfg }

// FilterBank returns the shared filterbank.
func (t *Transform) FilterBank() *mel.FilterBank { return t.fb }

// LogMelEnergies returns 20*log10 of the filterbank energies of power
// (frames x nfft/2+1), with exact zeros replaced by machine epsilon.
func (t *Transform) LogMelEnergies(power mat.Matrix) (*mat.Dense, error) {
	energies, err := t.fb.Apply(power)
	if err != nil {
		return nil, err
	}

	rows, _ := energies.Dims()
	for i := range rows {
		row := energies.RawRowView(i)
		core.FloorZeroInPlace(row)
		core.AmplitudeDBInPlace(row)
	}

	return energies, nil
}

// Apply returns the (frames x NumCep) cepstral coefficients of power.
func (t *Transform) Apply(power *mat.Dense) (*mat.Dense, error) {
	logMel, err := t.LogMelEnergies(power)
	if err != nil {
		return nil, err
	}

	var cep mat.Dense
	cep.Mul(logMel, t.basis.Matrix().T())

	rows, _ := cep.Dims()
	for i := range rows {
		row := cep.RawRowView(i)
		for n := range row {
			row[n] *= t.lift[n]
		}
		if t.cfg.AppendEnergy {
			row[0] = FrameLogEnergy(power.RawRowView(i))
		}
	}

	return &cep, nil
}

// FrameLogEnergy returns ln(sum(power)), with a zero sum replaced by
// machine epsilon. This is a natural log, unlike the band energies.
func FrameLogEnergy(power []float64) float64 {
	return math.Log(core.FloorZero(floats.Sum(power)))
}
