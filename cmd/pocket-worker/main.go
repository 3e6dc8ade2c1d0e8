package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"pocket/internal/amqp"
	"pocket/internal/backend"
	"pocket/internal/cli"
	"pocket/internal/gateway/gsheet"
	applog "pocket/internal/log"
	"pocket/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(logger)

	logger.Info("Starting pocket-worker")

	if cfg.GoogleSpreadsheetID == "" {
		logger.Error("GOOGLE_SPREADSHEET_ID is required, the worker mirrors state to Google Sheets")
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required, the worker consumes mutation events")
		os.Exit(1)
	}

	// The worker reads state through the same backend the server writes.
	gw, err := backend.Open(cfg, logger.Logger)
	if err != nil {
		logger.Error("Failed to open persistence backend", "error", err, "backend", cfg.Backend)
		os.Exit(1)
	}
	defer gw.Close()

	mirror, err := gsheet.NewFromEnv(context.Background())
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", "error", err)
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	w := worker.NewMirrorWorker(gw, mirror)

	ctx, stop := cli.ShutdownContext()
	defer stop()

	// Catch up on anything missed while the worker was down.
	if err := w.MirrorNow(ctx); err != nil {
		logger.Error("Startup mirror failed, will retry on next event", "error", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return client.ConsumeMutations(gctx, w.HandleMutation)
	})

	g.Go(func() error {
		ticker := time.NewTicker(cfg.MirrorInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case <-ticker.C:
				if err := w.MirrorNow(gctx); err != nil {
					logger.Error("Periodic mirror failed", "error", err)
				}
			}
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}
