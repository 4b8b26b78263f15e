package tensor

import (
	"math"
	"testing"
)

func TestNewMatZeroed(t *testing.T) {
	m := NewMat(3, 4)
	if m.R != 3 || m.C != 4 || m.Stride != 4 {
		t.Fatalf("unexpected shape: R=%d C=%d Stride=%d", m.R, m.C, m.Stride)
	}
	for i, v := range m.Data {
		if v != 0 {
			t.Fatalf("expected zeroed data, got %g at %d", v, i)
		}
	}
}

func TestRowIsView(t *testing.T) {
	m := NewMat(2, 3)
	row := m.Row(1)
	row[2] = 7
	if m.Data[5] != 7 {
		t.Fatalf("row modification did not reach backing data")
	}
}

func TestAddRowScaled(t *testing.T) {
	m := NewMatFromData(2, 3, []float32{1, 2, 3, 4, 5, 6})
	m.AddRowScaled([]float32{1, 1, 1}, 1, 0.5)
	want := []float32{4.5, 5.5, 6.5}
	for j, v := range m.Row(1) {
		if v != want[j] {
			t.Fatalf("row 1 col %d: got %g want %g", j, v, want[j])
		}
	}
	// row 0 untouched
	if m.Data[0] != 1 || m.Data[1] != 2 || m.Data[2] != 3 {
		t.Fatalf("row 0 modified: %v", m.Data[:3])
	}
}

func TestDotRow(t *testing.T) {
	m := NewMatFromData(2, 3, []float32{1, 2, 3, -1, 0, 2})
	got := m.DotRow([]float32{2, 0.5, 1}, 0)
	if got != 6 {
		t.Fatalf("dot row 0: got %g want 6", got)
	}
	got = m.DotRow([]float32{2, 0.5, 1}, 1)
	if got != 0 {
		t.Fatalf("dot row 1: got %g want 0", got)
	}
}

func TestVecHelpers(t *testing.T) {
	v := []float32{1, -2, 3}
	Scale(v, 2)
	if v[0] != 2 || v[1] != -4 || v[2] != 6 {
		t.Fatalf("scale: %v", v)
	}
	AddScaled(v, []float32{1, 1, 1}, -2)
	if v[0] != 0 || v[1] != -6 || v[2] != 4 {
		t.Fatalf("add scaled: %v", v)
	}
	if got := Dot(v, v); got != 52 {
		t.Fatalf("dot: got %g want 52", got)
	}
	Zero(v)
	for _, x := range v {
		if x != 0 {
			t.Fatalf("zero: %v", v)
		}
	}
}

func TestFillRandDeterministic(t *testing.T) {
	a := NewMat(8, 8)
	b := NewMat(8, 8)
	FillRand(&a, 42, 0.25)
	FillRand(&b, 42, 0.25)
	for i := range a.Data {
		if a.Data[i] != b.Data[i] {
			t.Fatalf("same seed produced different values at %d", i)
		}
		if v := float64(a.Data[i]); math.Abs(v) >= 0.25 {
			t.Fatalf("value %g outside (-0.25, 0.25)", v)
		}
	}
}
