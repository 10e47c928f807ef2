// Package feature turns fixed-length tri-axial vibration windows into
// cepstral feature tensors.
//
// An [Extractor] runs pre-emphasis, framing, windowing, power spectrum,
// mel filterbank projection and the cepstral transform on each axis, then
// stacks the three (frames x numcep) matrices on a trailing channel axis.
// Extractors share their filterbank and cosine basis through per-parameter
// caches and are safe for concurrent use.
package feature
