package tensor

import (
	"runtime"
	"sync"
)

// matVecSerialCutoff is the row count below which fanning work out to
// goroutines costs more than it saves.  Softmax output matrices for typical
// label spaces sit well under this, so the common path stays serial.
const matVecSerialCutoff = 512

// MatVec computes dst = w * x where w is a matrix and x is a vector.
// Large matrices are split into row ranges processed in parallel.
func MatVec(dst []float32, w *Mat, x []float32) {
	if w.R == 0 || w.C == 0 {
		return
	}
	if len(dst) < w.R || len(x) < w.C {
		panic("matvec shape mismatch")
	}

	workers := runtime.GOMAXPROCS(0)
	if w.R < matVecSerialCutoff || workers <= 1 {
		matVecRange(dst, w, x, 0, w.R)
		return
	}
	if workers > w.R {
		workers = w.R
	}

	var wg sync.WaitGroup
	chunk := (w.R + workers - 1) / workers
	for i := range workers {
		rs := i * chunk
		re := min(rs+chunk, w.R)
		if rs >= re {
			break
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			matVecRange(dst, w, x, rs, re)
		}()
	}
	wg.Wait()
}

func matVecRange(dst []float32, w *Mat, x []float32, rs, re int) {
	for r := rs; r < re; r++ {
		row := w.Data[r*w.Stride : r*w.Stride+w.C]
		var sum float32
		for j, v := range row {
			sum += v * x[j]
		}
		dst[r] = sum
	}
}
