package model

import (
	"container/heap"
	"math"
	"sort"

	"github.com/samcharles93/loam/internal/fastmath"
)

// Prediction pairs a label id with its score, the natural log of the label's
// probability (computed through SafeLog, so never -Inf).
type Prediction struct {
	Score float32
	Label int32
}

// Predict returns up to k labels whose probability is at least threshold,
// sorted by descending score.  Flat losses scan the full softmax
// distribution; hierarchical softmax runs a pruned depth-first search over
// the Huffman tree instead, so the full distribution is never materialized.
func (m *Model) Predict(input []int32, k int, threshold float32) ([]Prediction, error) {
	if k < 1 {
		return nil, ErrInvalidK
	}
	if !m.cfg.Supervised {
		return nil, ErrNotClassifier
	}
	if len(input) == 0 {
		return nil, ErrEmptyInput
	}
	m.computeHidden(input, m.hidden)

	h := predHeap{items: make([]Prediction, 0, k+1)}
	if m.cfg.Loss == LossHierarchicalSoftmax {
		if m.tree == nil {
			return nil, ErrNoTargetCounts
		}
		m.dfs(k, threshold, &h)
	} else {
		m.findKBest(k, threshold, &h)
	}

	out := h.items
	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out, nil
}

// findKBest linear-scans the full softmax distribution, skipping labels below
// the probability threshold and keeping the k best scores in a bounded heap.
func (m *Model) findKBest(k int, threshold float32, h *predHeap) {
	m.computeOutputSoftmax(m.hidden, m.output)
	for i := 0; i < m.osz; i++ {
		p := m.output[i]
		if p < threshold {
			continue
		}
		score := fastmath.SafeLog(p)
		if h.Len() == k && score < h.worst() {
			continue
		}
		h.push(k, Prediction{Score: score, Label: int32(i)})
	}
}

type dfsFrame struct {
	node  int32
	score float32
}

// dfs searches the Huffman tree from the root (node 2n-2) carrying an
// accumulated log-score.  A branch is pruned as soon as its score falls below
// the threshold's log or below the current k-th best: scores only decrease
// along a path, so no descendant can recover.  Recursion is replaced by an
// explicit stack; its depth is bounded by the tree depth.
func (m *Model) dfs(k int, threshold float32, h *predHeap) {
	logThreshold := fastmath.SafeLog(threshold)
	stack := make([]dfsFrame, 0, 64)
	stack = append(stack, dfsFrame{node: int32(2*m.osz - 2)})

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if f.score < logThreshold {
			continue
		}
		if h.Len() == k && f.score < h.worst() {
			continue
		}

		n := &m.tree[f.node]
		if n.Left == -1 && n.Right == -1 {
			h.push(k, Prediction{Score: f.score, Label: f.node})
			continue
		}

		// Go-right probability from this internal node's output row.  The
		// exact exponential is used here, not the lookup table: quantization
		// noise would compound along the path.
		raw := m.wo.DotRow(m.hidden, int(f.node)-m.osz)
		p := float32(1.0 / (1.0 + math.Exp(-float64(raw))))

		stack = append(stack,
			dfsFrame{node: n.Left, score: f.score + fastmath.SafeLog(1.0-p)},
			dfsFrame{node: n.Right, score: f.score + fastmath.SafeLog(p)},
		)
	}
}

// predHeap is a min-heap on score.  Bounded to k entries, its root is the
// current k-th best score, which is exactly the pruning bound the searches
// need.
type predHeap struct {
	items []Prediction
}

func (h *predHeap) Len() int           { return len(h.items) }
func (h *predHeap) Less(i, j int) bool { return h.items[i].Score < h.items[j].Score }
func (h *predHeap) Swap(i, j int)      { h.items[i], h.items[j] = h.items[j], h.items[i] }
func (h *predHeap) Push(x any)         { h.items = append(h.items, x.(Prediction)) }
func (h *predHeap) Pop() any {
	last := h.items[len(h.items)-1]
	h.items = h.items[:len(h.items)-1]
	return last
}

func (h *predHeap) worst() float32 { return h.items[0].Score }

func (h *predHeap) push(k int, p Prediction) {
	heap.Push(h, p)
	if h.Len() > k {
		heap.Pop(h)
	}
}
