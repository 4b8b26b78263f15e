package main

import (
	"context"
	"errors"
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/loam/pkg/lmf"
)

// modelSummary is the JSON shape printed by `loam inspect`.
type modelSummary struct {
	Dim        int32    `json:"dim"`
	Loss       string   `json:"loss"`
	WordNgrams int32    `json:"word_ngrams"`
	Bucket     int32    `json:"bucket"`
	MinN       int32    `json:"minn"`
	MaxN       int32    `json:"maxn"`
	Tokens     int64    `json:"tokens"`
	Words      int      `json:"words"`
	Labels     []string `json:"labels"`
	InputRows  int64    `json:"input_rows"`
	OutputRows int64    `json:"output_rows"`
}

func inspectCmd() *cli.Command {
	var topWords int64

	return &cli.Command{
		Name:  "inspect",
		Usage: "Print a summary of a trained model file",
		Flags: append(commonModelFlags(),
			&cli.Int64Flag{
				Name:        "top-words",
				Usage:       "also list the N most frequent words",
				Destination: &topWords,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if modelPath == "" {
				return errors.New("--model is required")
			}
			m, err := lmf.Open(modelPath)
			if err != nil {
				return fmt.Errorf("open model: %w", err)
			}

			summary := modelSummary{
				Dim:        m.Dim,
				Loss:       m.Loss,
				WordNgrams: m.WordNgrams,
				Bucket:     m.Bucket,
				MinN:       m.MinN,
				MaxN:       m.MaxN,
				Tokens:     m.Tokens,
				InputRows:  m.Input.Rows,
				OutputRows: m.Output.Rows,
			}
			for _, e := range m.Entries {
				if e.Label {
					summary.Labels = append(summary.Labels, e.Text)
				} else {
					summary.Words++
				}
			}

			b, err := json.MarshalIndent(summary, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(b))

			if topWords > 0 {
				// Entries are stored words-first in descending count order.
				fmt.Println("\ntop words:")
				n := int64(0)
				for _, e := range m.Entries {
					if e.Label {
						continue
					}
					fmt.Printf("  %-24s %d\n", e.Text, e.Count)
					if n++; n >= topWords {
						break
					}
				}
			}
			return nil
		},
	}
}
