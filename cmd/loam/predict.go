package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"

	json "github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/loam/internal/classify"
	"github.com/samcharles93/loam/internal/model"
)

func predictCmd() *cli.Command {
	var (
		input     string
		k         int64
		threshold float64
		asJSON    bool
	)

	return &cli.Command{
		Name:  "predict",
		Usage: "Predict labels for text from a file or stdin",
		Flags: append(append(commonModelFlags(), loggingFlags()...),
			&cli.StringFlag{
				Name:        "input",
				Aliases:     []string{"i"},
				Usage:       "text file to classify, one example per line (default: stdin)",
				Destination: &input,
			},
			&cli.Int64Flag{
				Name:        "k",
				Usage:       "number of labels to return per line",
				Value:       1,
				Destination: &k,
			},
			&cli.Float64Flag{
				Name:        "threshold",
				Usage:       "minimal probability for a label to be reported",
				Destination: &threshold,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "emit one JSON array per line instead of text",
				Destination: &asJSON,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applyLoggingConfig(cmd, LoadConfig())
			log := setupLogger()

			if modelPath == "" {
				return errors.New("--model is required")
			}
			c, err := classify.Load(modelPath)
			if err != nil {
				return fmt.Errorf("load model: %w", err)
			}
			log.Debug("model loaded", "path", modelPath, "labels", c.Labels())

			in := os.Stdin
			if input != "" {
				f, err := os.Open(input)
				if err != nil {
					return err
				}
				defer func() { _ = f.Close() }()
				in = f
			}

			out := bufio.NewWriter(os.Stdout)
			defer func() { _ = out.Flush() }()

			scanner := bufio.NewScanner(in)
			scanner.Buffer(make([]byte, 0, 64*1024), scannerBufSize)
			for scanner.Scan() {
				line := scanner.Text()
				if line == "" {
					continue
				}
				results, err := c.Predict(line, int(k), float32(threshold))
				if err != nil && !errors.Is(err, model.ErrEmptyInput) {
					return err
				}
				if err := writeResults(out, results, asJSON); err != nil {
					return err
				}
			}
			return scanner.Err()
		},
	}
}

func writeResults(out *bufio.Writer, results []classify.Result, asJSON bool) error {
	if asJSON {
		b, err := json.Marshal(results)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(out, "%s\n", b)
		return err
	}
	for i, r := range results {
		if i > 0 {
			if _, err := out.WriteString(" "); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(out, "__label__%s %.4f", r.Label, r.Probability); err != nil {
			return err
		}
	}
	return out.WriteByte('\n')
}
