package core

import "math"

const defaultEpsilon = 1e-12

// Epsilon is the float64 machine epsilon (2^-52), the spacing between 1.0 and
// the next representable value.
const Epsilon = 0x1p-52

// ln10 is kept as a computed value so log10 is evaluated as ln(x)/ln(10).
var ln10 = math.Log(10)

// NearlyEqual reports whether a and b are equal within eps.
func NearlyEqual(a, b, eps float64) bool {
	if eps <= 0 {
		eps = defaultEpsilon
	}

	diff := math.Abs(a - b)
	if diff <= eps {
		return true
	}

	largest := math.Max(math.Abs(a), math.Abs(b))
	if largest == 0 {
		return diff <= eps
	}

	return diff/largest <= eps
}

// FloorZero returns Epsilon when x is exactly zero and x otherwise.
//
// Only exact zeros are replaced. Energies produced by the pipeline are
// non-negative, so this is the floor that keeps log(0) out of the features.
func FloorZero(x float64) float64 {
	if x == 0 {
		return Epsilon
	}

	return x
}

// FloorZeroInPlace applies FloorZero to every element of buf.
func FloorZeroInPlace(buf []float64) {
	for i, v := range buf {
		if v == 0 {
			buf[i] = Epsilon
		}
	}
}

// Log10 returns ln(x)/ln(10).
func Log10(x float64) float64 {
	return math.Log(x) / ln10
}

// AmplitudeDB converts a linear value to 20*log10(x).
// Returns -Inf for zero and NaN for negative values.
func AmplitudeDB(x float64) float64 {
	return 20 * Log10(x)
}

// AmplitudeDBInPlace replaces every element of buf with AmplitudeDB(buf[i]).
func AmplitudeDBInPlace(buf []float64) {
	for i, v := range buf {
		buf[i] = 20 * Log10(v)
	}
}

// IsFinite reports whether x is neither NaN nor ±Inf.
func IsFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// FirstNonFinite returns the index of the first NaN or ±Inf element in buf,
// or -1 when every element is finite.
func FirstNonFinite(buf []float64) int {
	for i, v := range buf {
		if !IsFinite(v) {
			return i
		}
	}

	return -1
}

// Round32 rounds x to the nearest float32 and widens it back.
func Round32(x float64) float64 {
	return float64(float32(x))
}
