// Package testutil provides deterministic signals and tolerance assertions
// shared by the package tests.
package testutil

import (
	"math"
	"math/rand"
)

// DeterministicSine generates a sine wave starting at phase 0.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// DeterministicNoise generates uniform noise in [-amplitude, amplitude) with
// a fixed seed.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// DC generates a constant-valued signal.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}
	return out
}

// Ones returns a slice of length n filled with 1.0.
func Ones(n int) []float64 {
	return DC(1.0, n)
}

// TriAxial returns three distinguishable axis signals of the given length:
// a sine, a phase-shifted sine at twice the frequency and seeded noise.
func TriAxial(seed int64, sampleRate float64, length int) [3][]float64 {
	y := make([]float64, length)
	step := 2 * math.Pi * 240 / sampleRate
	for i := range y {
		y[i] = 0.5 * math.Cos(step*float64(i))
	}

	return [3][]float64{
		DeterministicSine(120, sampleRate, 1, length),
		y,
		DeterministicNoise(seed, 0.2, length),
	}
}
