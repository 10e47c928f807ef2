package dataset

import (
	"fmt"

	"github.com/cwbudde/algo-vibration/feature"
)

// Preprocess converts a recording of exactly windowSize rows into one
// tensor, the single-window path used at inference time.
func Preprocess(ex *feature.Extractor, rec Recording, windowSize int) (*feature.Tensor, error) {
	rows, err := rec.Len()
	if err != nil {
		return nil, err
	}
	if rows != windowSize {
		return nil, fmt.Errorf("%w: %q has %d rows, want %d", ErrWindowLength, rec.ID, rows, windowSize)
	}

	t, err := ex.Stack(rec.Axes)
	if err != nil {
		return nil, &WindowError{Source: rec.ID, Axis: axisOf(err), Err: err}
	}
	return t, nil
}
