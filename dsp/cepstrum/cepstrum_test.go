package cepstrum

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/cwbudde/algo-vibration/dsp/core"
	"github.com/cwbudde/algo-vibration/dsp/mel"
	"github.com/cwbudde/algo-vibration/internal/testutil"
)

func testBank(t *testing.T) *mel.FilterBank {
	t.Helper()
	fb, err := mel.FilterBankFor(mel.Params{SampleRate: 10000, NumFilters: 26, NFFT: 1024})
	if err != nil {
		t.Fatalf("FilterBankFor error: %v", err)
	}
	return fb
}

func noisePower(seed int64, frames, bins int) *mat.Dense {
	data := testutil.DeterministicNoise(seed, 1, frames*bins)
	for i, v := range data {
		data[i] = v * v
	}
	return mat.NewDense(frames, bins, data)
}

func TestBasisRows(t *testing.T) {
	b, err := NewBasis(13, 26)
	if err != nil {
		t.Fatalf("NewBasis error: %v", err)
	}

	m := b.Matrix()
	for i := range 13 {
		for n := range 26 {
			want := math.Cos(float64(i+1) * math.Pi * (float64(n) + 0.5) / 26)
			if m.At(i, n) != want {
				t.Fatalf("basis[%d][%d] = %v, want %v", i, n, m.At(i, n), want)
			}
		}
	}
}

func TestBasisHasNoDCRow(t *testing.T) {
	b, err := NewBasis(13, 26)
	if err != nil {
		t.Fatalf("NewBasis error: %v", err)
	}

	// Every row is a non-zero harmonic, so none of them is constant and
	// each sums to ~0 over the filters.
	for i := range b.NumCep() {
		row := mat.Row(nil, i, b.Matrix())
		sum := 0.0
		for _, v := range row {
			sum += v
		}
		if math.Abs(sum) > 1e-9 {
			t.Fatalf("row %d sums to %v, want 0", i, sum)
		}
	}
}

func TestBasisValidation(t *testing.T) {
	if _, err := NewBasis(27, 26); err == nil {
		t.Fatal("expected error for numcep > nfilt")
	}
	if _, err := NewBasis(0, 26); err == nil {
		t.Fatal("expected error for zero numcep")
	}
	if _, err := NewBasis(1, 0); err == nil {
		t.Fatal("expected error for zero filters")
	}

	a, _ := BasisFor(13, 26)
	b, _ := BasisFor(13, 26)
	if a == nil || a != b {
		t.Fatal("BasisFor should return one shared basis per shape")
	}
}

func TestLifterWeights(t *testing.T) {
	w := LifterWeights(13, 22)
	if w[0] != 1 {
		t.Fatalf("w[0] = %v, want 1", w[0])
	}
	for n := range w {
		want := 1 + 11*math.Sin(math.Pi*float64(n)/22)
		if math.Abs(w[n]-want) > 1e-12 {
			t.Fatalf("w[%d] = %v, want %v", n, w[n], want)
		}
	}

	for _, v := range LifterWeights(5, 0) {
		if v != 1 {
			t.Fatalf("disabled lifter weight = %v, want 1", v)
		}
	}
}

func TestApplyMatchesReferenceFormula(t *testing.T) {
	fb := testBank(t)
	cfg := Config{NumCep: 13, Lifter: 22, AppendEnergy: false}

	tr, err := New(fb, cfg)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	power := noisePower(3, 4, fb.NumBins())
	cep, err := tr.Apply(power)
	if err != nil {
		t.Fatalf("Apply error: %v", err)
	}

	lift := LifterWeights(13, 22)
	for f := range 4 {
		row := power.RawRowView(f)
		logMel := make([]float64, 26)
		for j := range 26 {
			e := 0.0
			for k, w := range fb.Row(j) {
				e += w * row[k]
			}
			logMel[j] = 20 * math.Log10(core.FloorZero(e))
		}
		for i := range 13 {
			want := 0.0
			for n := range 26 {
				want += logMel[n] * math.Cos(float64(i+1)*math.Pi*(float64(n)+0.5)/26)
			}
			want *= lift[i]
			if got := cep.At(f, i); math.Abs(got-want) > 1e-8*math.Max(1, math.Abs(want)) {
				t.Fatalf("cep[%d][%d] = %v, want %v", f, i, got, want)
			}
		}
	}
}

func TestApplyEnergySubstitution(t *testing.T) {
	fb := testBank(t)

	tr, err := New(fb, DefaultConfig())
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	power := noisePower(5, 6, fb.NumBins())
	cep, err := tr.Apply(power)
	if err != nil {
		t.Fatalf("Apply error: %v", err)
	}

	rows, cols := cep.Dims()
	if rows != 6 || cols != 13 {
		t.Fatalf("dims = %dx%d, want 6x13", rows, cols)
	}

	for f := range rows {
		sum := 0.0
		for _, v := range power.RawRowView(f) {
			sum += v
		}
		if got, want := cep.At(f, 0), math.Log(sum); math.Abs(got-want) > 1e-12 {
			t.Fatalf("cep[%d][0] = %v, want ln(energy) %v", f, got, want)
		}
	}

	// The other coefficients are those of the non-energy transform.
	plain, err := New(fb, Config{NumCep: 13, Lifter: 22})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	ref, err := plain.Apply(power)
	if err != nil {
		t.Fatalf("Apply error: %v", err)
	}
	for f := range rows {
		for i := 1; i < cols; i++ {
			if cep.At(f, i) != ref.At(f, i) {
				t.Fatalf("coefficient [%d][%d] changed by energy substitution", f, i)
			}
		}
	}
}

func TestApplyZeroPowerIsFinite(t *testing.T) {
	fb := testBank(t)

	tr, err := New(fb, DefaultConfig())
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	cep, err := tr.Apply(mat.NewDense(3, fb.NumBins(), nil))
	if err != nil {
		t.Fatalf("Apply error: %v", err)
	}

	testutil.RequireFinite(t, cep.RawMatrix().Data)
	if got := cep.At(0, 0); got != math.Log(core.Epsilon) {
		t.Fatalf("cep[0][0] = %v, want ln(eps)", got)
	}
}

func TestNewValidation(t *testing.T) {
	if _, err := New(nil, DefaultConfig()); err == nil {
		t.Fatal("expected error for nil filterbank")
	}
	if _, err := New(testBank(t), Config{NumCep: 40}); err == nil {
		t.Fatal("expected error for numcep > nfilt")
	}
	if _, err := testBankTransform(t).Apply(mat.NewDense(1, 7, nil)); err == nil {
		t.Fatal("expected error for mismatched spectrum width")
	}
}

func testBankTransform(t *testing.T) *Transform {
	t.Helper()
	tr, err := New(testBank(t), DefaultConfig())
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	return tr
}

func TestFrameLogEnergy(t *testing.T) {
	if got := FrameLogEnergy([]float64{1, math.E - 1}); math.Abs(got-1) > 1e-12 {
		t.Fatalf("FrameLogEnergy = %v, want 1", got)
	}
	if got := FrameLogEnergy(make([]float64, 4)); got != math.Log(core.Epsilon) {
		t.Fatalf("FrameLogEnergy(zeros) = %v", got)
	}
}
