package dataset

import (
	"fmt"

	"github.com/cwbudde/algo-vibration/feature"
)

// Recording is one source table reduced to its three axis columns.
type Recording struct {
	// ID is the source identifier used as the raw label.
	ID   string
	Axes [feature.Channels][]float64
}

// Len returns the number of rows, or an error if the axes differ in length.
func (r Recording) Len() (int, error) {
	n := len(r.Axes[0])
	for ch := 1; ch < feature.Channels; ch++ {
		if len(r.Axes[ch]) != n {
			return 0, fmt.Errorf("%w: %q axis %d has %d rows, axis 0 has %d",
				ErrAxisLength, r.ID, ch, len(r.Axes[ch]), n)
		}
	}
	return n, nil
}

// Window is a view of rows [Index*size, (Index+1)*size) of a recording.
type Window struct {
	Source string
	Index  int
	Axes   [feature.Channels][]float64
}

// NumWindows returns floor(length/size), the number of complete
// non-overlapping windows. A non-positive size yields zero windows.
func NumWindows(length, size int) int {
	if size <= 0 || length <= 0 {
		return 0
	}
	return length / size
}

// Segment splits rec into contiguous non-overlapping windows of size rows.
// Trailing rows that do not fill a window are dropped. The windows share
// memory with rec. A recording shorter than one window returns a
// *SkipError wrapping ErrInsufficientData.
func Segment(rec Recording, size int) ([]Window, error) {
	if size <= 0 {
		return nil, fmt.Errorf("dataset: window size must be > 0, got %d", size)
	}

	rows, err := rec.Len()
	if err != nil {
		return nil, &SkipError{Source: rec.ID, Rows: len(rec.Axes[0]), Err: err}
	}

	n := NumWindows(rows, size)
	if n == 0 {
		return nil, &SkipError{Source: rec.ID, Rows: rows, Err: ErrInsufficientData}
	}

	windows := make([]Window, n)
	for i := range windows {
		w := Window{Source: rec.ID, Index: i}
		lo, hi := i*size, (i+1)*size
		for ch, axis := range rec.Axes {
			w.Axes[ch] = axis[lo:hi:hi]
		}
		windows[i] = w
	}

	return windows, nil
}
