// Package classify provides the end-to-end text classifier: corpus in,
// trained model out, with prediction and LMF persistence on top of the
// dictionary, trainer and model packages.
package classify

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/samcharles93/loam/internal/dict"
	"github.com/samcharles93/loam/internal/logger"
	"github.com/samcharles93/loam/internal/model"
	"github.com/samcharles93/loam/internal/tensor"
	"github.com/samcharles93/loam/internal/train"
	"github.com/samcharles93/loam/pkg/lmf"
)

var (
	ErrEmptyCorpus = errors.New("training corpus is empty")
	ErrNoLabels    = errors.New("training corpus contains no labels")
	ErrNoWords     = errors.New("training corpus contains no words above min count")
)

// Config collects every training knob.  Zero values fall back to the
// defaults documented per field.
type Config struct {
	Dim           int     // embedding dimension (default 100)
	Lr            float32 // initial learning rate (default 0.1)
	Epochs        int     // passes over the corpus (default 5)
	Workers       int     // training goroutines (default: NumCPU)
	Loss          model.LossKind
	Negatives     int   // negatives per positive for ns loss (default 5)
	MinCount      int64 // minimal word count (default 1)
	MinCountLabel int64 // minimal label count (default 1)
	WordNgrams    int   // word n-gram order (default 1)
	Bucket        int   // hash bucket rows for n-gram features (default 2000000)
	MinN          int   // min character n-gram length (0 disables subwords)
	MaxN          int   // max character n-gram length (0 disables subwords)
	Seed          int64
}

func (cfg *Config) fillDefaults() {
	if cfg.Dim <= 0 {
		cfg.Dim = 100
	}
	if cfg.Lr <= 0 {
		cfg.Lr = 0.1
	}
	if cfg.Epochs <= 0 {
		cfg.Epochs = 5
	}
	if cfg.Negatives <= 0 {
		cfg.Negatives = 5
	}
	if cfg.MinCount <= 0 {
		cfg.MinCount = 1
	}
	if cfg.MinCountLabel <= 0 {
		cfg.MinCountLabel = 1
	}
	if cfg.WordNgrams <= 0 {
		cfg.WordNgrams = 1
	}
	if cfg.Bucket <= 0 {
		cfg.Bucket = 2000000
	}
	// Without word n-grams or subwords the bucket rows would sit unused in
	// the input matrix; drop them.
	if cfg.WordNgrams <= 1 && cfg.MaxN <= 0 {
		cfg.Bucket = 0
	}
}

// Result is one predicted label with its probability.
type Result struct {
	Label       string  `json:"label"`
	Probability float32 `json:"probability"`
}

// Classifier is a trained text classifier.  Prediction is safe for
// concurrent use.
type Classifier struct {
	cfg  Config
	dict *dict.Dictionary
	wi   tensor.Mat
	wo   tensor.Mat

	// mu guards the prediction model's scratch buffers.
	mu   sync.Mutex
	pred *model.Model

	loss     float32
	examples int64
}

// Train builds the vocabulary over lines, trains the matrices and returns a
// ready classifier.
func Train(ctx context.Context, lines []string, cfg Config, log logger.Logger) (*Classifier, error) {
	cfg.fillDefaults()
	if len(lines) == 0 {
		return nil, ErrEmptyCorpus
	}

	d := dict.New(dict.Config{
		WordNgrams: cfg.WordNgrams,
		Bucket:     cfg.Bucket,
		MinN:       cfg.MinN,
		MaxN:       cfg.MaxN,
	})
	for _, l := range lines {
		d.AddLine(l)
	}
	d.Finalize(cfg.MinCount, cfg.MinCountLabel)
	if d.Labels() == 0 {
		return nil, ErrNoLabels
	}
	if d.Words() == 0 {
		return nil, ErrNoWords
	}
	log.Info("vocabulary built",
		"words", d.Words(),
		"labels", d.Labels(),
		"tokens", d.Tokens(),
		"input_rows", d.InputRows())

	wi := tensor.NewMat(d.InputRows(), cfg.Dim)
	tensor.FillRand(&wi, cfg.Seed, 1/float32(cfg.Dim))
	wo := tensor.NewMat(int(d.Labels()), cfg.Dim)

	mcfg := model.Config{
		Dim:        cfg.Dim,
		Loss:       cfg.Loss,
		Negatives:  cfg.Negatives,
		Supervised: true,
	}
	stats, err := train.Run(ctx, d, &wi, &wo, mcfg, lines, train.Config{
		Lr:      cfg.Lr,
		Epochs:  cfg.Epochs,
		Workers: cfg.Workers,
		Seed:    cfg.Seed,
	}, log)
	if err != nil {
		return nil, err
	}
	log.Info("training finished", "loss", stats.Loss, "examples", stats.Examples)

	c := &Classifier{
		cfg:      cfg,
		dict:     d,
		wi:       wi,
		wo:       wo,
		loss:     stats.Loss,
		examples: stats.Examples,
	}
	if err := c.initPredictor(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Classifier) initPredictor() error {
	mcfg := model.Config{
		Dim:        c.cfg.Dim,
		Loss:       c.cfg.Loss,
		Negatives:  c.cfg.Negatives,
		Supervised: true,
	}
	m := model.New(&c.wi, &c.wo, mcfg, c.cfg.Seed)
	if c.cfg.Loss == model.LossHierarchicalSoftmax {
		if err := m.SetTargetCounts(c.dict.LabelCounts()); err != nil {
			return err
		}
	}
	c.pred = m
	return nil
}

// Predict returns up to k labels for text, highest probability first, keeping
// only labels at or above threshold.
func (c *Classifier) Predict(text string, k int, threshold float32) ([]Result, error) {
	tokens, _ := c.dict.Line(text)
	if len(tokens) == 0 {
		return nil, model.ErrEmptyInput
	}

	c.mu.Lock()
	preds, err := c.pred.Predict(tokens, k, threshold)
	c.mu.Unlock()
	if err != nil {
		return nil, err
	}

	out := make([]Result, len(preds))
	for i, p := range preds {
		out[i] = Result{
			Label:       c.dict.LabelText(p.Label),
			Probability: float32(math.Exp(float64(p.Score))),
		}
	}
	return out, nil
}

// Loss returns the mean training loss, and Examples the number of SGD updates
// the model was trained on.  Both are zero for loaded models.
func (c *Classifier) Loss() float32   { return c.loss }
func (c *Classifier) Examples() int64 { return c.examples }

// Words and Labels report the vocabulary shape.
func (c *Classifier) Words() int  { return int(c.dict.Words()) }
func (c *Classifier) Labels() int { return int(c.dict.Labels()) }

// LabelNames returns every label, in id order.
func (c *Classifier) LabelNames() []string {
	names := make([]string, c.dict.Labels())
	for i := range names {
		names[i] = c.dict.LabelText(int32(i))
	}
	return names
}

// Dim returns the embedding dimension.
func (c *Classifier) Dim() int { return c.cfg.Dim }

// LossKind returns the output-layer strategy the model was trained with.
func (c *Classifier) LossKind() model.LossKind { return c.cfg.Loss }

// Save writes the classifier to path in LMF format.
func (c *Classifier) Save(path string) error {
	entries := c.dict.Entries()
	out := &lmf.Model{
		Dim:        int32(c.cfg.Dim),
		Loss:       c.cfg.Loss.String(),
		WordNgrams: int32(c.cfg.WordNgrams),
		Bucket:     int32(c.cfg.Bucket),
		MinN:       int32(c.cfg.MinN),
		MaxN:       int32(c.cfg.MaxN),
		Tokens:     c.dict.Tokens(),
		Entries:    make([]lmf.Entry, len(entries)),
		Input: lmf.Matrix{
			Rows: int64(c.wi.R),
			Cols: int64(c.wi.C),
			Data: c.wi.Data,
		},
		Output: lmf.Matrix{
			Rows: int64(c.wo.R),
			Cols: int64(c.wo.C),
			Data: c.wo.Data,
		},
	}
	for i, e := range entries {
		out.Entries[i] = lmf.Entry{
			Text:  e.Text,
			Count: e.Count,
			Label: e.Type == dict.Label,
		}
	}
	return lmf.WriteFile(path, out)
}

// Load reads an LMF model from path and rebuilds a ready classifier.
func Load(path string) (*Classifier, error) {
	m, err := lmf.Open(path)
	if err != nil {
		return nil, err
	}
	return fromModel(m)
}

func fromModel(m *lmf.Model) (*Classifier, error) {
	loss, err := model.ParseLossKind(m.Loss)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", lmf.ErrCorruptFile, err)
	}

	entries := make([]dict.Entry, len(m.Entries))
	for i, e := range m.Entries {
		typ := dict.Word
		if e.Label {
			typ = dict.Label
		}
		entries[i] = dict.Entry{Text: e.Text, Count: e.Count, Type: typ}
	}
	cfg := Config{
		Dim:        int(m.Dim),
		Loss:       loss,
		WordNgrams: int(m.WordNgrams),
		Bucket:     int(m.Bucket),
		MinN:       int(m.MinN),
		MaxN:       int(m.MaxN),
	}
	d := dict.FromEntries(dict.Config{
		WordNgrams: cfg.WordNgrams,
		Bucket:     cfg.Bucket,
		MinN:       cfg.MinN,
		MaxN:       cfg.MaxN,
	}, entries, m.Tokens)

	if int(m.Input.Rows) != d.InputRows() {
		return nil, fmt.Errorf("%w: input matrix rows %d, vocabulary needs %d",
			lmf.ErrCorruptFile, m.Input.Rows, d.InputRows())
	}
	if int(m.Output.Rows) != int(d.Labels()) {
		return nil, fmt.Errorf("%w: output matrix rows %d, labels %d",
			lmf.ErrCorruptFile, m.Output.Rows, d.Labels())
	}

	c := &Classifier{
		cfg:  cfg,
		dict: d,
		wi:   tensor.NewMatFromData(int(m.Input.Rows), int(m.Input.Cols), m.Input.Data),
		wo:   tensor.NewMatFromData(int(m.Output.Rows), int(m.Output.Cols), m.Output.Data),
	}
	if err := c.initPredictor(); err != nil {
		return nil, err
	}
	return c, nil
}
