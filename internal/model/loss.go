package model

import (
	"github.com/samcharles93/loam/internal/fastmath"
	"github.com/samcharles93/loam/internal/tensor"
)

// binaryLogistic is the single differentiable primitive shared by negative
// sampling and hierarchical softmax.  It scores output row target against the
// hidden vector, accumulates the gradient over the hidden representation, and
// nudges the output row toward (label=true) or away from (label=false) the
// hidden vector.  The return value is the negative log-likelihood of the
// observed label.
func (m *Model) binaryLogistic(target int32, label bool, lr float32) float32 {
	score := fastmath.Sigmoid(m.wo.DotRow(m.hidden, int(target)))
	var y float32
	if label {
		y = 1
	}
	alpha := lr * (y - score)
	tensor.AddScaled(m.grad, m.wo.Row(int(target)), alpha)
	m.wo.AddRowScaled(m.hidden, int(target), alpha)
	if label {
		return -fastmath.Log(score)
	}
	return -fastmath.Log(1.0 - score)
}

// negativeSampling contrasts the true target against cfg.Negatives labels
// drawn from the frequency table.  Every negative is drawn before the first
// gradient step, so a failed draw leaves both matrices untouched.
func (m *Model) negativeSampling(target int32, lr float32) (float32, error) {
	negs := m.negdraw[:0]
	for n := 0; n < m.cfg.Negatives; n++ {
		neg, err := m.drawNegative(target)
		if err != nil {
			return 0, err
		}
		negs = append(negs, neg)
	}
	m.negdraw = negs

	tensor.Zero(m.grad)
	loss := m.binaryLogistic(target, true, lr)
	for _, neg := range negs {
		loss += m.binaryLogistic(neg, false, lr)
	}
	return loss, nil
}

// hierarchicalSoftmax walks the target's stored root path, treating each
// internal node as an independent binary decision.  No full output
// distribution is ever materialized.
func (m *Model) hierarchicalSoftmax(target int32, lr float32) float32 {
	tensor.Zero(m.grad)
	var loss float32
	path := m.paths[target]
	code := m.codes[target]
	for i := range path {
		loss += m.binaryLogistic(path[i], code[i], lr)
	}
	return loss
}

// softmax computes the full output distribution and applies the multiclass
// cross-entropy gradient to every output row.
func (m *Model) softmax(target int32, lr float32) float32 {
	tensor.Zero(m.grad)
	m.computeOutputSoftmax(m.hidden, m.output)
	for i := 0; i < m.osz; i++ {
		var label float32
		if int32(i) == target {
			label = 1
		}
		alpha := lr * (label - m.output[i])
		tensor.AddScaled(m.grad, m.wo.Row(i), alpha)
		m.wo.AddRowScaled(m.hidden, i, alpha)
	}
	return -fastmath.Log(m.output[target])
}
