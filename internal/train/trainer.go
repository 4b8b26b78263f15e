// Package train runs multi-worker SGD over a finalized dictionary and a
// shared pair of matrices.  Workers follow the Hogwild scheme: each goroutine
// owns a private model.Model but writes into the same input and output
// matrices without locks.
package train

import (
	"context"
	"math/rand"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/samcharles93/loam/internal/dict"
	"github.com/samcharles93/loam/internal/logger"
	"github.com/samcharles93/loam/internal/model"
	"github.com/samcharles93/loam/internal/tensor"
)

// Config fixes the training schedule.
type Config struct {
	// Lr is the initial learning rate, decayed linearly to zero over the
	// whole run.
	Lr float32
	// Epochs is the number of passes over the corpus.
	Epochs int
	// Workers is the number of training goroutines.  Zero or negative means
	// runtime.NumCPU().
	Workers int
	// Seed drives the per-worker RNGs.  Worker w uses Seed+w, so a
	// single-worker run with a fixed seed is reproducible.
	Seed int64
	// ProgressEvery is the number of lines between progress log records
	// from the reporting worker.  Zero means defaultProgressEvery.
	ProgressEvery int
}

// Stats summarizes a finished run.
type Stats struct {
	// Loss is the mean loss across every example seen by every worker.
	Loss float32
	// Examples is the total number of SGD updates applied.
	Examples int64
}

// defaultProgressEvery is the line interval between progress log records when
// Config.ProgressEvery is zero.
const defaultProgressEvery = 10000

// Run trains the shared matrices over lines for the configured number of
// epochs and returns the aggregate loss.  Each worker walks its own stripe of
// the corpus, re-tokenizing lines through the dictionary; lines with multiple
// labels contribute one update against a randomly chosen label, mirroring the
// sampling the corpus frequencies were counted under.
//
// Run stops early and returns the context error if ctx is cancelled.
func Run(ctx context.Context, d *dict.Dictionary, wi, wo *tensor.Mat, mcfg model.Config, lines []string, cfg Config, log logger.Logger) (Stats, error) {
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(lines) && len(lines) > 0 {
		workers = len(lines)
	}
	if cfg.Epochs <= 0 || len(lines) == 0 {
		return Stats{}, nil
	}

	counts := d.LabelCounts()
	models := make([]*model.Model, workers)
	for w := range models {
		m := model.New(wi, wo, mcfg, cfg.Seed+int64(w))
		if err := m.SetTargetCounts(counts); err != nil {
			return Stats{}, err
		}
		models[w] = m
	}

	// Total token count driving the linear learning-rate decay.  Label
	// tokens count too: progress tracks corpus position, not update count.
	total := int64(cfg.Epochs) * d.Tokens()
	var seen atomic.Int64

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	errs := make([]error, workers)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			if err := trainWorker(runCtx, d, models[w], lines, w, workers, cfg, total, &seen, log); err != nil {
				errs[w] = err
				cancel()
			}
		}(w)
	}
	wg.Wait()

	var stats Stats
	var lossTotal float64
	for _, m := range models {
		l, n := m.Stats()
		lossTotal += l
		stats.Examples += n
	}
	if stats.Examples > 0 {
		stats.Loss = float32(lossTotal / float64(stats.Examples))
	}

	for _, err := range errs {
		if err != nil {
			return stats, err
		}
	}
	if err := ctx.Err(); err != nil {
		return stats, err
	}
	return stats, nil
}

func trainWorker(ctx context.Context, d *dict.Dictionary, m *model.Model, lines []string, w, workers int, cfg Config, total int64, seen *atomic.Int64, log logger.Logger) error {
	rng := rand.New(rand.NewSource(cfg.Seed + int64(w)))
	every := cfg.ProgressEvery
	if every <= 0 {
		every = defaultProgressEvery
	}
	processed := 0
	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		for i := w; i < len(lines); i += workers {
			if err := ctx.Err(); err != nil {
				return err
			}
			tokens, labels := d.Line(lines[i])
			// Progress advances in raw corpus tokens, the unit the
			// d.Tokens() decay total is counted in.  The hashed n-gram and
			// subword ids in tokens are expansions, not corpus position.
			n := seen.Add(rawTokenCount(lines[i]))
			if len(tokens) == 0 || len(labels) == 0 {
				continue
			}
			lr := cfg.Lr * (1 - float32(n)/float32(total))
			if lr < 0 {
				lr = 0
			}
			target := labels[0]
			if len(labels) > 1 {
				target = labels[rng.Intn(len(labels))]
			}
			if err := m.Update(tokens, target, lr); err != nil {
				return err
			}
			processed++
			if w == 0 && processed%every == 0 {
				log.Info("training progress",
					"epoch", epoch+1,
					"progress", float64(n)/float64(total),
					"lr", lr,
					"loss", m.Loss())
			}
		}
	}
	return nil
}

// rawTokenCount is the number of whitespace tokens on a corpus line,
// including labels and out-of-vocabulary words.
func rawTokenCount(line string) int64 {
	return int64(len(strings.Fields(line)))
}
