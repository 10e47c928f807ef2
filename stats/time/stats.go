// Package time computes time-domain condition indicators of vibration
// signals: the level, impulsiveness and asymmetry figures used alongside
// cepstral features when screening a recording.
package time

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Indicators summarizes one axis.
type Indicators struct {
	Length int     `json:"length"`
	DC     float64 `json:"dc"`
	RMS    float64 `json:"rms"`
	// StdDev is the population standard deviation, the AC part of RMS.
	StdDev float64 `json:"std_dev"`
	Peak   float64 `json:"peak"`
	// CrestFactor is Peak/RMS; 0 for silent signals.
	CrestFactor float64 `json:"crest_factor"`
	// Kurtosis is the Pearson kurtosis (3 for a Gaussian signal). Bearing
	// defects raise it well above 3 long before RMS moves.
	Kurtosis float64 `json:"kurtosis"`
	Skewness float64 `json:"skewness"`
}

// Calculate returns the indicators of signal. An empty signal yields the
// zero value.
func Calculate(signal []float64) Indicators {
	n := len(signal)
	if n == 0 {
		return Indicators{}
	}

	mean, std := stat.PopMeanStdDev(signal, nil)
	out := Indicators{
		Length: n,
		DC:     mean,
		RMS:    RMS(signal),
		StdDev: std,
		Peak:   Peak(signal),
	}
	if out.RMS > 0 {
		out.CrestFactor = out.Peak / out.RMS
	}
	if std > 0 {
		out.Kurtosis = moment(signal, mean, 4) / math.Pow(std, 4)
		out.Skewness = moment(signal, mean, 3) / math.Pow(std, 3)
	}
	return out
}

// Axes returns the indicators of every axis.
func Axes(axes [3][]float64) [3]Indicators {
	var out [3]Indicators
	for i, a := range axes {
		out[i] = Calculate(a)
	}
	return out
}

// RMS returns the root mean square of signal.
func RMS(signal []float64) float64 {
	if len(signal) == 0 {
		return 0
	}
	return floats.Norm(signal, 2) / math.Sqrt(float64(len(signal)))
}

// Peak returns the largest absolute sample.
func Peak(signal []float64) float64 {
	if len(signal) == 0 {
		return 0
	}
	return math.Max(math.Abs(floats.Max(signal)), math.Abs(floats.Min(signal)))
}

// moment returns the k-th central population moment.
func moment(signal []float64, mean float64, k float64) float64 {
	return stat.MomentAbout(k, signal, mean, nil)
}
