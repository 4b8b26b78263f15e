package fastmath

import (
	"math"
	"testing"
)

func TestSigmoidSaturation(t *testing.T) {
	if got := Sigmoid(-8.001); got != 0 {
		t.Fatalf("Sigmoid(-8.001) = %g, want exactly 0", got)
	}
	if got := Sigmoid(8.001); got != 1 {
		t.Fatalf("Sigmoid(8.001) = %g, want exactly 1", got)
	}
	if got := Sigmoid(-100); got != 0 {
		t.Fatalf("Sigmoid(-100) = %g, want exactly 0", got)
	}
}

func TestSigmoidQuantization(t *testing.T) {
	// Bucket width in x is 16/512 = 0.03125; the logistic slope is at most
	// 1/4, so the lookup can be off by no more than ~0.008 plus float noise.
	const tol = 0.01
	for x := -7.9; x <= 7.9; x += 0.113 {
		want := 1.0 / (1.0 + math.Exp(-x))
		got := float64(Sigmoid(float32(x)))
		if math.Abs(got-want) > tol {
			t.Fatalf("Sigmoid(%g) = %g, want %g +/- %g", x, got, want, tol)
		}
	}
}

func TestSigmoidBoundaryIndices(t *testing.T) {
	// The extreme in-range arguments must index the first and last table
	// entries without going out of bounds.
	lo := Sigmoid(-8)
	hi := Sigmoid(8)
	if lo <= 0 || lo > 0.001 {
		t.Fatalf("Sigmoid(-8) = %g, want small positive", lo)
	}
	if hi < 0.999 || hi > 1 {
		t.Fatalf("Sigmoid(8) = %g, want close to 1", hi)
	}
}

func TestLogCeiling(t *testing.T) {
	if got := Log(1.5); got != 0 {
		t.Fatalf("Log(1.5) = %g, want exactly 0", got)
	}
	if got := Log(2); got != 0 {
		t.Fatalf("Log(2) = %g, want exactly 0", got)
	}
}

func TestLogQuantization(t *testing.T) {
	// Bucket width is 1/512; relative error grows toward 0 where the log
	// curve steepens, so test away from the origin.
	const tol = 0.02
	for x := 0.05; x <= 1.0; x += 0.0317 {
		want := math.Log(x)
		got := float64(Log(float32(x)))
		if math.Abs(got-want) > tol {
			t.Fatalf("Log(%g) = %g, want %g +/- %g", x, got, want, tol)
		}
	}
}

func TestLogZeroFinite(t *testing.T) {
	got := Log(0)
	if math.IsInf(float64(got), 0) || math.IsNaN(float64(got)) {
		t.Fatalf("Log(0) = %g, want finite", got)
	}
	if got >= 0 {
		t.Fatalf("Log(0) = %g, want large negative", got)
	}
}

func TestSafeLog(t *testing.T) {
	got := SafeLog(0)
	want := math.Log(1e-5)
	if math.Abs(float64(got)-want) > 1e-6 {
		t.Fatalf("SafeLog(0) = %g, want %g", got, want)
	}
	if math.IsInf(float64(got), 0) {
		t.Fatalf("SafeLog(0) must be finite")
	}
	if a, b := SafeLog(0.25), SafeLog(0.5); a >= b {
		t.Fatalf("SafeLog must be monotonic: %g >= %g", a, b)
	}
}
