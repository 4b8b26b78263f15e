package tensor

import "math/rand"

// Mat represents a dense row-major matrix of float32 values.
//
// R and C represent the number of rows and columns respectively.  Stride is
// the number of elements between the starts of two consecutive rows (for
// row-major matrices this is equal to C).  Data holds the flattened matrix
// values.
//
// Mat does not perform any memory safety beyond the checks performed by Go's
// slice types; out-of-range indices will panic.
//
// During training many workers share the same Mat and add into overlapping
// rows without synchronization.  Lost updates between racing workers are an
// accepted part of the training design; correctness is statistical, not
// linearizable, so nothing in this package takes a lock.
type Mat struct {
	R, C   int
	Stride int
	Data   []float32
}

// NewMat allocates a new matrix with the given number of rows and columns.
// The underlying slice is zero initialised.  The stride is set to the
// number of columns.
func NewMat(r, c int) Mat {
	if r < 0 || c < 0 {
		panic("negative dimension for matrix")
	}
	return Mat{
		R:      r,
		C:      c,
		Stride: c,
		Data:   make([]float32, r*c),
	}
}

// NewMatFromData creates a matrix from existing data.
// It checks that the data length matches r*c.
func NewMatFromData(r, c int, data []float32) Mat {
	if r*c != len(data) {
		panic("data length mismatch")
	}
	return Mat{
		R:      r,
		C:      c,
		Stride: c,
		Data:   data,
	}
}

// Row returns a view of the i-th row of the matrix as a slice.  The slice
// has length equal to the number of columns.  Modifications to the returned
// slice update the underlying matrix values.
func (m *Mat) Row(i int) []float32 {
	if i < 0 || i >= m.R {
		panic("row index out of range")
	}
	start := i * m.Stride
	return m.Data[start : start+m.C]
}

// AddRowScaled adds a*x element-wise into row i.  x must have at least C
// elements.
func (m *Mat) AddRowScaled(x []float32, i int, a float32) {
	row := m.Row(i)
	if len(x) < m.C {
		panic("vector too short for row add")
	}
	for j := range row {
		row[j] += a * x[j]
	}
}

// DotRow returns the dot product of row i with x.  x must have at least C
// elements.
func (m *Mat) DotRow(x []float32, i int) float32 {
	row := m.Row(i)
	if len(x) < m.C {
		panic("vector too short for row dot")
	}
	var sum float32
	for j := range row {
		sum += row[j] * x[j]
	}
	return sum
}

// Zero resets every element of the matrix.
func (m *Mat) Zero() {
	clear(m.Data)
}

// FillRand fills the matrix with reproducible pseudo-random values drawn
// uniformly from (-scale, scale).  The seed controls the random sequence;
// multiple calls with the same seed produce identical matrices.
func FillRand(m *Mat, seed int64, scale float32) {
	rng := rand.New(rand.NewSource(seed))
	for i := range m.Data {
		m.Data[i] = (rng.Float32()*2 - 1) * scale
	}
}
