package feature

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Channels is the number of vibration axes stacked in a Tensor.
const Channels = 3

var errShape = errors.New("feature: axis matrices differ in shape")

// Tensor is a (Frames x Coeffs x Channels) feature tensor stored row-major,
// so element (f, c, ch) lives at Data[(f*Coeffs+c)*Channels+ch].
type Tensor struct {
	Frames int       `msgpack:"frames"`
	Coeffs int       `msgpack:"coeffs"`
	Data   []float64 `msgpack:"data"`
}

// NewTensor returns a zeroed tensor.
func NewTensor(frames, coeffs int) *Tensor {
	return &Tensor{
		Frames: frames,
		Coeffs: coeffs,
		Data:   make([]float64, frames*coeffs*Channels),
	}
}

// StackAxes interleaves three equally shaped (frames x coeffs) matrices
// along a trailing channel axis.
func StackAxes(axes [Channels]*mat.Dense) (*Tensor, error) {
	frames, coeffs := axes[0].Dims()
	for ch := 1; ch < Channels; ch++ {
		r, c := axes[ch].Dims()
		if r != frames || c != coeffs {
			return nil, fmt.Errorf("%w: axis %d is %dx%d, axis 0 is %dx%d", errShape, ch, r, c, frames, coeffs)
		}
	}

	t := NewTensor(frames, coeffs)
	for ch, m := range axes {
		for f := range frames {
			row := m.RawRowView(f)
			base := f * coeffs * Channels
			for c, v := range row {
				t.Data[base+c*Channels+ch] = v
			}
		}
	}

	return t, nil
}

// Shape returns (Frames, Coeffs, Channels).
func (t *Tensor) Shape() [3]int {
	return [3]int{t.Frames, t.Coeffs, Channels}
}

// At returns element (f, c, ch).
func (t *Tensor) At(f, c, ch int) float64 {
	return t.Data[(f*t.Coeffs+c)*Channels+ch]
}

// Channel returns a copy of one axis as a (Frames x Coeffs) matrix.
func (t *Tensor) Channel(ch int) *mat.Dense {
	m := mat.NewDense(t.Frames, t.Coeffs, nil)
	for f := range t.Frames {
		for c := range t.Coeffs {
			m.Set(f, c, t.At(f, c, ch))
		}
	}
	return m
}

// CHW returns the tensor as channel-first float32 values, shaped
// (Channels, Frames, Coeffs), the layout the classifier consumes.
func (t *Tensor) CHW() []float32 {
	out := make([]float32, len(t.Data))
	plane := t.Frames * t.Coeffs
	for f := range t.Frames {
		for c := range t.Coeffs {
			for ch := range Channels {
				out[ch*plane+f*t.Coeffs+c] = float32(t.At(f, c, ch))
			}
		}
	}
	return out
}

// Equal reports whether t and u have the same shape and all elements
// differ by at most tol.
func (t *Tensor) Equal(u *Tensor, tol float64) bool {
	if t.Frames != u.Frames || t.Coeffs != u.Coeffs || len(t.Data) != len(u.Data) {
		return false
	}
	for i, v := range t.Data {
		if !(math.Abs(v-u.Data[i]) <= tol) {
			return false
		}
	}
	return true
}
