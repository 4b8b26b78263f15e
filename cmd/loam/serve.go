package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/loam/internal/api"
	"github.com/samcharles93/loam/internal/classify"
	"github.com/samcharles93/loam/internal/logger"
)

func serveCmd() *cli.Command {
	var (
		addr        string
		readTimeout time.Duration
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the prediction REST API",
		Flags: append(append(commonModelFlags(), loggingFlags()...),
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address",
				Value:       "127.0.0.1:8080",
				Destination: &addr,
			},
			&cli.DurationFlag{
				Name:        "read-timeout",
				Usage:       "read timeout",
				Value:       30 * time.Second,
				Destination: &readTimeout,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			fileCfg := LoadConfig()
			applyLoggingConfig(cmd, fileCfg)
			applyServeConfig(cmd, fileCfg, &addr)

			log := setupLogger()
			ctx = logger.WithContext(ctx, log)

			if modelPath == "" {
				return errors.New("--model is required")
			}
			c, err := classify.Load(modelPath)
			if err != nil {
				return fmt.Errorf("load model: %w", err)
			}
			log.Info("model loaded",
				"path", modelPath,
				"words", c.Words(),
				"labels", c.Labels(),
				"dim", c.Dim())

			modelName := filepath.Base(modelPath)
			server := api.NewServer(c, modelName)
			e := echo.New()
			e.Use(middleware.RequestLogger())
			e.Use(middleware.Recover())
			server.Register(e)

			log.Info("starting server", "address", addr)
			sc := echo.StartConfig{
				Address: addr,
				BeforeServeFunc: func(srv *http.Server) error {
					srv.ReadHeaderTimeout = readTimeout
					return nil
				},
			}
			return sc.Start(ctx, e)
		},
	}
}
