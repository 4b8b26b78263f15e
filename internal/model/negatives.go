package model

import "math"

// initTableNegatives builds the frequency-proportional multiset of label ids
// used to draw negatives without per-draw computation.  Each label receives
// floor(sqrt(count)/Z * tableSize) slots -- the square root attenuates the
// skew toward very frequent labels -- and the table is shuffled once with the
// model's seeded RNG.
func (m *Model) initTableNegatives(counts []int64) {
	size := m.cfg.NegativeTableSize
	if size <= 0 {
		size = DefaultNegativeTableSize
	}
	var z float64
	for _, c := range counts {
		z += math.Sqrt(float64(c))
	}
	negatives := make([]int32, 0, size)
	for i, c := range counts {
		slots := int(math.Sqrt(float64(c)) * float64(size) / z)
		for j := 0; j < slots; j++ {
			negatives = append(negatives, int32(i))
		}
	}
	m.rng.Shuffle(len(negatives), func(a, b int) {
		negatives[a], negatives[b] = negatives[b], negatives[a]
	})
	m.negatives = negatives
	m.negpos = 0
}

// drawNegative returns the next table entry that differs from target,
// advancing the cursor cyclically.  A table whose every entry equals the
// target (single-label data) would otherwise spin forever, so after one full
// cycle it fails with ErrNoNegatives.
func (m *Model) drawNegative(target int32) (int32, error) {
	for range m.negatives {
		neg := m.negatives[m.negpos]
		m.negpos = (m.negpos + 1) % len(m.negatives)
		if neg != target {
			return neg, nil
		}
	}
	return 0, ErrNoNegatives
}
