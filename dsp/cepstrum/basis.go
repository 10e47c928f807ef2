// Package cepstrum turns power spectra into cepstral coefficients: mel band
// energies, 20*log10 compression, a cosine-basis projection, liftering and
// optional log-energy substitution.
//
// The basis deliberately starts at the first harmonic. Row i holds
// cos((i+1)*pi*(n+0.5)/nfilt), so there is no constant DC row, and band
// energies are compressed with 20*log10 instead of 10*log10. Pretrained
// consumers depend on both.
package cepstrum

import (
	"fmt"
	"math"
	"sync"

	"gonum.org/v1/gonum/mat"
)

// Basis is an immutable (numCep x numFilters) cosine projection matrix.
type Basis struct {
	numCep     int
	numFilters int
	m          *mat.Dense
}

// NewBasis builds the basis with rows cos((i+1)*pi*(n+0.5)/numFilters).
func NewBasis(numCep, numFilters int) (*Basis, error) {
	if numFilters <= 0 {
		return nil, fmt.Errorf("cepstrum: number of filters must be > 0: %d", numFilters)
	}
	if numCep <= 0 || numCep > numFilters {
		return nil, fmt.Errorf("cepstrum: numcep must be in [1, %d]: %d", numFilters, numCep)
	}

	m := mat.NewDense(numCep, numFilters, nil)
	for i := range numCep {
		for n := range numFilters {
			m.Set(i, n, math.Cos(float64(i+1)*math.Pi*(float64(n)+0.5)/float64(numFilters)))
		}
	}

	return &Basis{numCep: numCep, numFilters: numFilters, m: m}, nil
}

// NumCep returns the number of rows.
func (b *Basis) NumCep() int { return b.numCep }

// NumFilters returns the number of columns.
func (b *Basis) NumFilters() int { return b.numFilters }

// Matrix returns the basis. Callers must not modify it.
func (b *Basis) Matrix() mat.Matrix { return b.m }

type basisKey struct{ numCep, numFilters int }

type basisEntry struct {
	once  sync.Once
	basis *Basis
	err   error
}

var bases sync.Map // basisKey -> *basisEntry

// BasisFor returns the shared basis for (numCep, numFilters).
func BasisFor(numCep, numFilters int) (*Basis, error) {
	v, _ := bases.LoadOrStore(basisKey{numCep, numFilters}, &basisEntry{})
	entry := v.(*basisEntry)
	entry.once.Do(func() {
		entry.basis, entry.err = NewBasis(numCep, numFilters)
	})
	return entry.basis, entry.err
}

// LifterWeights returns 1 + (lifter/2)*sin(pi*n/lifter) for n in [0, numCep).
// A lifter <= 0 yields all ones.
func LifterWeights(numCep int, lifter float64) []float64 {
	w := make([]float64, numCep)
	for n := range w {
		if lifter <= 0 {
			w[n] = 1
			continue
		}
		w[n] = 1 + float64((lifter/2)*math.Sin(math.Pi*float64(n)/lifter))
	}
	return w
}
