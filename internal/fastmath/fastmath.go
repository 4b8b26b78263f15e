// Package fastmath provides the precomputed sigmoid and log lookup tables
// used by the training inner loop.  The tables are built once at package
// initialisation, are never mutated afterwards, and are therefore safe for
// unsynchronized concurrent reads from any number of training workers.
package fastmath

import "math"

const (
	sigmoidTableSize = 512
	maxSigmoid       = 8
	logTableSize     = 512
)

var (
	sigmoidTable [sigmoidTableSize + 1]float32
	logTable     [logTableSize + 1]float32
)

func init() {
	for i := range sigmoidTable {
		x := float64(i*2*maxSigmoid)/sigmoidTableSize - maxSigmoid
		sigmoidTable[i] = float32(1.0 / (1.0 + math.Exp(-x)))
	}
	for i := range logTable {
		x := (float64(i) + 1e-5) / logTableSize
		logTable[i] = float32(math.Log(x))
	}
}

// Sigmoid returns the logistic function of x from a 513-sample table over
// [-8, 8].  Outside that range the result saturates to exactly 0 or 1.
// Within it, x maps to the nearest table bucket with no interpolation;
// callers must tolerate quantization error bounded by the bucket width.
func Sigmoid(x float32) float32 {
	if x < -maxSigmoid {
		return 0
	}
	if x > maxSigmoid {
		return 1
	}
	i := int((x + maxSigmoid) * sigmoidTableSize / maxSigmoid / 2)
	return sigmoidTable[i]
}

// Log returns the natural log of x from a 513-sample table over (0, 1].
// For x > 1 it returns exactly 0, treating 1 as a probability ceiling.
// The table is offset by 1e-5 so Log(0) is a large negative value rather
// than -Inf.
func Log(x float32) float32 {
	if x > 1.0 {
		return 0
	}
	i := int(x * logTableSize)
	return logTable[i]
}

// SafeLog returns ln(x + 1e-5) computed exactly.  The prediction search uses
// it so that scores on zero-probability branches stay finite and orderable.
func SafeLog(x float32) float32 {
	return float32(math.Log(float64(x) + 1e-5))
}
