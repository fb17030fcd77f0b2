package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"celengan/internal/amqp"
	"celengan/internal/config"
	"celengan/internal/ledger"
	lgoogle "celengan/internal/ledger/google"
	lmemory "celengan/internal/ledger/memory"
	applog "celengan/internal/log"
	"celengan/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logger := applog.New(applog.Config{
		Level:     slog.LevelInfo,
		Component: applog.ComponentWorker,
	})
	applog.SetDefault(logger)

	logger.Info("Starting celengan-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Ledger destination: Google Sheets when configured, otherwise an
	// in-memory sink so local runs still drain the queue.
	var writer ledger.Writer
	if cfg.GoogleSpreadsheetID != "" {
		client, err := lgoogle.New(ctx, cfg)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		writer = client
		logger.Info("Google Sheets ledger initialized",
			"spreadsheet_id", cfg.GoogleSpreadsheetID,
			"sheet", cfg.GoogleSheetName)
	} else {
		writer = lmemory.New()
		logger.Info("Google Sheets disabled - using in-memory ledger")
	}

	// AMQP client for consuming transaction events
	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	exportWorker := worker.NewExportWorker(writer, cfg.ExportBatchSize, cfg.ExportInterval)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return amqpClient.ConsumeTransactions(ctx, func(event *amqp.TransactionEvent) error {
			return exportWorker.HandleTransactionEvent(ctx, event)
		})
	})
	g.Go(func() error {
		return exportWorker.Run(ctx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Event consumption failed", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
