// Package spectrum estimates per-frame power spectra.
//
// [Estimator] runs a real-input FFT of fixed size over each frame and keeps
// the non-negative-frequency half. Power-of-two sizes use algo-fft plans;
// other sizes fall back to gonum's real FFT. FFT workspaces are pooled, so a
// single Estimator can be shared by concurrent workers.
package spectrum
