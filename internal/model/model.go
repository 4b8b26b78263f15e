// Package model implements the training and prediction engine for shallow
// word/label representations: per-example SGD updates through one of three
// output-layer strategies (full softmax, hierarchical softmax over a Huffman
// tree, negative sampling) and k-best label prediction.
package model

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/samcharles93/loam/internal/tensor"
)

// LossKind selects the output-layer strategy.  It is fixed at construction;
// every strategy implements the same (target, hidden, learning rate) ->
// (loss, gradient) contract.
type LossKind uint8

const (
	LossSoftmax LossKind = iota
	LossHierarchicalSoftmax
	LossNegativeSampling
)

func (k LossKind) String() string {
	switch k {
	case LossSoftmax:
		return "softmax"
	case LossHierarchicalSoftmax:
		return "hs"
	case LossNegativeSampling:
		return "ns"
	default:
		return fmt.Sprintf("loss(%d)", uint8(k))
	}
}

// ParseLossKind converts a loss name ("softmax", "hs", "ns") to a LossKind.
func ParseLossKind(s string) (LossKind, error) {
	switch s {
	case "softmax":
		return LossSoftmax, nil
	case "hs":
		return LossHierarchicalSoftmax, nil
	case "ns":
		return LossNegativeSampling, nil
	default:
		return 0, fmt.Errorf("unknown loss %q", s)
	}
}

// DefaultNegativeTableSize is the length of the negative-sampling table when
// Config.NegativeTableSize is zero.  It is large enough that even rare labels
// receive at least one slot in realistic label distributions.
const DefaultNegativeTableSize = 10000000

// Config fixes the shape and behaviour of a Model.
type Config struct {
	// Dim is the embedding dimension (columns of both matrices).
	Dim int
	// Loss selects the output-layer strategy.
	Loss LossKind
	// Negatives is the number of negative labels drawn per positive when
	// Loss is LossNegativeSampling.
	Negatives int
	// Supervised marks classification-style training.  In this mode the
	// gradient is divided by the token count before being distributed into
	// the input rows, matching the averaged hidden vector; embedding-style
	// training must leave it unscaled.  Prediction requires Supervised.
	Supervised bool
	// NegativeTableSize overrides DefaultNegativeTableSize when positive.
	NegativeTableSize int
}

// Model is a single-worker training and prediction engine.
//
// A Model owns private scratch state (hidden, output and gradient vectors, the
// negative-sampling cursor, its RNG) and is not safe for concurrent use; run
// one Model per goroutine.  The input and output matrices, however, are meant
// to be shared between many Models.  Workers add into overlapping rows with no
// synchronization: the resulting lost updates are an intentional
// throughput/accuracy tradeoff of the training design and must not be "fixed"
// with locking, which would change convergence behaviour.  The Huffman tree
// and negative table are built once by SetTargetCounts and read-only
// afterwards, so sharing them for reads is safe.
type Model struct {
	wi  *tensor.Mat
	wo  *tensor.Mat
	cfg Config

	osz int // output rows: number of distinct labels
	hsz int // hidden dimension

	hidden []float32
	output []float32
	grad   []float32

	rng *rand.Rand

	negatives []int32
	negpos    int
	negdraw   []int32

	tree  []Node
	paths [][]int32
	codes [][]bool

	loss      float64
	nexamples int64
}

// New creates a Model over the shared input and output matrices.  The seed
// drives the negative-table shuffle and any stochastic draws; two Models with
// the same seed and inputs behave identically.
func New(wi, wo *tensor.Mat, cfg Config, seed int64) *Model {
	if wi.C != cfg.Dim || wo.C != cfg.Dim {
		panic("matrix columns do not match embedding dimension")
	}
	return &Model{
		wi:      wi,
		wo:      wo,
		cfg:     cfg,
		osz:     wo.R,
		hsz:     cfg.Dim,
		hidden:  make([]float32, cfg.Dim),
		output:  make([]float32, wo.R),
		grad:    make([]float32, cfg.Dim),
		negdraw: make([]int32, 0, cfg.Negatives),
		rng:     rand.New(rand.NewSource(seed)),
	}
}

// SetTargetCounts supplies the per-label frequency counts and builds the
// auxiliary structure the configured loss needs: the negative-sampling table
// for LossNegativeSampling, the Huffman tree for LossHierarchicalSoftmax.
// It must be called once before training or prediction with those losses.
func (m *Model) SetTargetCounts(counts []int64) error {
	if len(counts) != m.osz {
		return fmt.Errorf("%w: got %d, want %d", ErrCountsMismatch, len(counts), m.osz)
	}
	switch m.cfg.Loss {
	case LossNegativeSampling:
		m.initTableNegatives(counts)
	case LossHierarchicalSoftmax:
		m.buildTree(counts)
	}
	return nil
}

// Update applies one SGD step for a single example.  input holds the token
// ids whose embeddings are averaged into the hidden vector; target is the
// true label.  An empty input is a silent no-op.  The scalar loss is
// accumulated internally; Loss reports the running mean.
func (m *Model) Update(input []int32, target int32, lr float32) error {
	if len(input) == 0 {
		return nil
	}
	if target < 0 || int(target) >= m.osz {
		return fmt.Errorf("%w: %d (labels: %d)", ErrTargetOutOfRange, target, m.osz)
	}
	m.computeHidden(input, m.hidden)

	var loss float32
	switch m.cfg.Loss {
	case LossNegativeSampling:
		if m.negatives == nil {
			return ErrNoTargetCounts
		}
		var err error
		loss, err = m.negativeSampling(target, lr)
		if err != nil {
			return err
		}
	case LossHierarchicalSoftmax:
		if m.paths == nil {
			return ErrNoTargetCounts
		}
		loss = m.hierarchicalSoftmax(target, lr)
	default:
		loss = m.softmax(target, lr)
	}
	m.loss += float64(loss)
	m.nexamples++

	// Classification averages the hidden vector over the input tokens, so
	// the gradient flowing back to each token row is averaged the same way.
	// Embedding-style training distributes it unscaled.
	if m.cfg.Supervised {
		tensor.Scale(m.grad, 1/float32(len(input)))
	}
	for _, id := range input {
		m.wi.AddRowScaled(m.grad, int(id), 1)
	}
	return nil
}

// computeHidden fills hidden with the average of the input rows.
func (m *Model) computeHidden(input []int32, hidden []float32) {
	tensor.Zero(hidden)
	for _, id := range input {
		tensor.AddScaled(hidden, m.wi.Row(int(id)), 1)
	}
	tensor.Scale(hidden, 1/float32(len(input)))
}

// computeOutputSoftmax fills output with the normalized softmax distribution
// of wo*hidden.  The row maximum is subtracted before exponentiating so that
// large-magnitude scores cannot overflow the exponential.
func (m *Model) computeOutputSoftmax(hidden, output []float32) {
	tensor.MatVec(output, m.wo, hidden)
	maxv := output[0]
	for _, v := range output[1:] {
		if v > maxv {
			maxv = v
		}
	}
	var z float32
	for i := range output {
		output[i] = float32(math.Exp(float64(output[i] - maxv)))
		z += output[i]
	}
	for i := range output {
		output[i] /= z
	}
}

// Loss returns the mean loss over all examples seen so far, or 0 before the
// first example.
func (m *Model) Loss() float32 {
	if m.nexamples == 0 {
		return 0
	}
	return float32(m.loss / float64(m.nexamples))
}

// Stats returns the accumulated loss total and example count, for callers
// aggregating across workers.
func (m *Model) Stats() (loss float64, examples int64) {
	return m.loss, m.nexamples
}

// NumLabels returns the size of the label space.
func (m *Model) NumLabels() int { return m.osz }
