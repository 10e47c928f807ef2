package mel

import "math"

// HzToMel converts a frequency in Hz to mels: 2595*log10(1 + f/700).
func HzToMel(hz float64) float64 {
	return 2595 * math.Log10(1+hz/700)
}

// MelToHz converts mels back to Hz: 700*(10^(m/2595) - 1).
func MelToHz(m float64) float64 {
	return 700 * (math.Pow(10, m/2595) - 1)
}

// MelToHzInPlace converts every element of mels from mels to Hz.
func MelToHzInPlace(mels []float64) {
	for i, m := range mels {
		mels[i] = MelToHz(m)
	}
}
