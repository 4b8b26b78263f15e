package main

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/loam/internal/classify"
	"github.com/samcharles93/loam/internal/logger"
	"github.com/samcharles93/loam/internal/model"
)

// scannerBufSize bounds single corpus lines; 1 MiB covers even pathological
// concatenated documents.
const scannerBufSize = 1 << 20

func trainCmd() *cli.Command {
	var (
		input         string
		output        string
		dim           int64
		lr            float64
		epochs        int64
		loss          string
		negatives     int64
		minCount      int64
		minCountLabel int64
		wordNgrams    int64
		bucket        int64
		minn          int64
		maxn          int64
		threads       int64
		seed          int64
	)

	return &cli.Command{
		Name:  "train",
		Usage: "Train a text classifier on a labeled corpus",
		Flags: append(loggingFlags(),
			&cli.StringFlag{
				Name:        "input",
				Aliases:     []string{"i"},
				Usage:       "training corpus, one labeled example per line",
				Required:    true,
				Destination: &input,
			},
			&cli.StringFlag{
				Name:        "output",
				Aliases:     []string{"o"},
				Usage:       "path for the trained .lmf model",
				Required:    true,
				Destination: &output,
			},
			&cli.Int64Flag{
				Name:        "dim",
				Usage:       "embedding dimension",
				Value:       100,
				Destination: &dim,
			},
			&cli.Float64Flag{
				Name:        "lr",
				Usage:       "initial learning rate",
				Value:       0.1,
				Destination: &lr,
			},
			&cli.Int64Flag{
				Name:        "epoch",
				Usage:       "number of passes over the corpus",
				Value:       5,
				Destination: &epochs,
			},
			&cli.StringFlag{
				Name:        "loss",
				Usage:       "loss function (softmax, hs, ns)",
				Value:       "softmax",
				Destination: &loss,
			},
			&cli.Int64Flag{
				Name:        "neg",
				Usage:       "negatives sampled per positive (ns loss)",
				Value:       5,
				Destination: &negatives,
			},
			&cli.Int64Flag{
				Name:        "min-count",
				Usage:       "minimal word occurrence count",
				Value:       1,
				Destination: &minCount,
			},
			&cli.Int64Flag{
				Name:        "min-count-label",
				Usage:       "minimal label occurrence count",
				Value:       1,
				Destination: &minCountLabel,
			},
			&cli.Int64Flag{
				Name:        "word-ngrams",
				Usage:       "max word n-gram order",
				Value:       1,
				Destination: &wordNgrams,
			},
			&cli.Int64Flag{
				Name:        "bucket",
				Usage:       "hash bucket rows for n-gram features",
				Value:       2000000,
				Destination: &bucket,
			},
			&cli.Int64Flag{
				Name:        "minn",
				Usage:       "min character n-gram length (0 disables subwords)",
				Destination: &minn,
			},
			&cli.Int64Flag{
				Name:        "maxn",
				Usage:       "max character n-gram length (0 disables subwords)",
				Destination: &maxn,
			},
			&cli.Int64Flag{
				Name:        "threads",
				Usage:       "training goroutines (0: all CPUs)",
				Destination: &threads,
			},
			&cli.Int64Flag{
				Name:        "seed",
				Usage:       "random seed",
				Destination: &seed,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			fileCfg := LoadConfig()
			applyLoggingConfig(cmd, fileCfg)
			applyTrainConfig(cmd, fileCfg, &dim, &epochs, &threads, &wordNgrams, &bucket, &lr, &loss)

			log := setupLogger()
			ctx = logger.WithContext(ctx, log)

			lossKind, err := model.ParseLossKind(loss)
			if err != nil {
				return err
			}
			lines, err := readLines(input)
			if err != nil {
				return fmt.Errorf("read corpus: %w", err)
			}
			log.Info("corpus loaded", "path", input, "lines", len(lines))

			c, err := classify.Train(ctx, lines, classify.Config{
				Dim:           int(dim),
				Lr:            float32(lr),
				Epochs:        int(epochs),
				Workers:       int(threads),
				Loss:          lossKind,
				Negatives:     int(negatives),
				MinCount:      minCount,
				MinCountLabel: minCountLabel,
				WordNgrams:    int(wordNgrams),
				Bucket:        int(bucket),
				MinN:          int(minn),
				MaxN:          int(maxn),
				Seed:          seed,
			}, log)
			if err != nil {
				return err
			}

			if err := c.Save(output); err != nil {
				return fmt.Errorf("save model: %w", err)
			}
			log.Info("model saved",
				"path", output,
				"words", c.Words(),
				"labels", c.Labels(),
				"dim", c.Dim(),
				"loss", c.Loss())
			return nil
		},
	}
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), scannerBufSize)
	for scanner.Scan() {
		if line := scanner.Text(); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
