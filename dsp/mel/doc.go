// Package mel converts between Hz and the mel scale and builds triangular
// mel filterbanks over the non-negative half of an FFT spectrum.
//
// A filterbank is a pure function of (sampleRate, numFilters, nfft, lowFreq,
// highFreq). [FilterBankFor] interns banks per configuration so that the
// matrix is built once and then shared read-only across goroutines.
package mel
