package tensor

// Vector helpers operate on plain []float32 slices.  Hidden vectors,
// gradients and output distributions are all ordinary slices; keeping them
// free of wrapper types keeps the inner training loop allocation-free.

// Zero resets every element of v.
func Zero(v []float32) {
	clear(v)
}

// Scale multiplies every element of v by a.
func Scale(v []float32, a float32) {
	for i := range v {
		v[i] *= a
	}
}

// AddScaled adds a*src element-wise into dst.  src must be at least as long
// as dst.
func AddScaled(dst, src []float32, a float32) {
	if len(src) < len(dst) {
		panic("source vector too short")
	}
	for i := range dst {
		dst[i] += a * src[i]
	}
}

// Dot returns the dot product of a and b.  b must be at least as long as a.
func Dot(a, b []float32) float32 {
	if len(b) < len(a) {
		panic("vector length mismatch")
	}
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
