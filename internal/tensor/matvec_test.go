package tensor

import (
	"math"
	"testing"
)

func matVecNaive(dst []float32, w *Mat, x []float32) {
	for i := 0; i < w.R; i++ {
		row := w.Data[i*w.Stride : i*w.Stride+w.C]
		var sum float32
		for j := 0; j < w.C; j++ {
			sum += row[j] * x[j]
		}
		dst[i] = sum
	}
}

func TestMatVecMatchesNaive(t *testing.T) {
	// Cover both the serial path and the parallel path.
	for _, shape := range [][2]int{{3, 5}, {127, 33}, {1024, 64}} {
		r, c := shape[0], shape[1]
		w := NewMat(r, c)
		FillRand(&w, int64(r), 0.5)
		x := make([]float32, c)
		for j := range x {
			x[j] = float32(j%7) - 3
		}
		want := make([]float32, r)
		got := make([]float32, r)
		matVecNaive(want, &w, x)
		MatVec(got, &w, x)
		for i := range want {
			if math.Abs(float64(want[i]-got[i])) > 1e-5 {
				t.Fatalf("%dx%d row %d: got %g want %g", r, c, i, got[i], want[i])
			}
		}
	}
}

func TestMatVecEmpty(t *testing.T) {
	w := NewMat(0, 4)
	MatVec(nil, &w, []float32{1, 2, 3, 4}) // must not panic
}

func BenchmarkMatVec(b *testing.B) {
	r, c := 2048, 128
	w := NewMat(r, c)
	x := make([]float32, c)
	dst := make([]float32, r)
	FillRand(&w, 1, 0.1)

	for b.Loop() {
		MatVec(dst, &w, x)
	}
}
