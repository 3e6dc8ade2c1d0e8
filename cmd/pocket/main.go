package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	"pocket/internal/amqp"
	"pocket/internal/backend"
	"pocket/internal/cli"
	"pocket/internal/gateway"
	apphttp "pocket/internal/http"
	applog "pocket/internal/log"
	"pocket/internal/saver"
	"pocket/internal/services"
	"pocket/internal/store"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	gw, err := backend.Open(cfg, logger.Logger)
	if err != nil {
		logger.Error("Failed to open persistence backend", "error", err, "backend", cfg.Backend)
		os.Exit(1)
	}
	defer gw.Close()

	// State is read once at startup; a nil snapshot seeds the defaults.
	snap, err := gw.Load(context.Background())
	if err != nil {
		logger.Error("Failed to load persisted state", "error", err)
		os.Exit(1)
	}
	if snap == nil {
		logger.Info("No persisted state found, seeding default categories")
	} else {
		logger.Info("Loaded persisted state",
			"accounts", len(snap.Accounts),
			"expenses", len(snap.Expenses),
			"categories", len(snap.Categories))
	}

	var sv gateway.Saver = gw
	var saveQueue *saver.Queue
	if cfg.AsyncSave {
		saveQueue = saver.New(gw, func(err error) {
			logger.Error("Background save failed", "error", err)
		})
		sv = saveQueue
		logger.Info("Using asynchronous saves")
	}

	st := store.New(snap, sv)

	var events *services.EventPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to connect to AMQP, continuing without events", "error", err)
		} else {
			events = services.NewEventPublisher(client)
			logger.Info("Publishing mutation events", "exchange", cfg.AMQPExchange)
		}
	}
	defer events.Close()

	srv := apphttp.NewServer(":"+cfg.Port, st, events)

	ctx, stop := cli.ShutdownContext()
	defer stop()

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		logger.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cli.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		if saveQueue != nil {
			if err := saveQueue.Close(shutdownCtx); err != nil {
				logger.Error("Failed to flush pending saves", "error", err)
			}
		}
	}()

	logger.Info("Starting pocket server", "port", cfg.Port, "backend", cfg.Backend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-done
	logger.Info("Server stopped gracefully")
}
