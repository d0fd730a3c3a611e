package main

import (
	"context"
	"errors"
	"os"
	"time"

	"fiscora/internal/amqp"
	"fiscora/internal/cli"
	"fiscora/internal/config"
	applog "fiscora/internal/log"
	"fiscora/internal/services"
	"fiscora/internal/sheets/google"
	"fiscora/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg, logger := cli.LoadAndValidateConfig((*config.Config).Validate, (*config.Config).ValidateWorker)
	logger = logger.WithComponent(applog.ComponentWorker)

	logger.Info("Starting fiscora-worker")

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	exporter, err := google.NewExporter(context.Background(), google.Config{
		SpreadsheetID:     cfg.GoogleSpreadsheetID,
		TransactionsSheet: cfg.GoogleSheetName,
		SummarySheet:      cfg.GoogleSummarySheetName,
		CredentialsFile:   cfg.GoogleCredentialsFile,
		CredentialsJSON:   cfg.GoogleCredentialsJSON,
	})
	if err != nil {
		logger.Error("Failed to initialize Google Sheets exporter", applog.FieldError, err.Error())
		os.Exit(1)
	}
	logger.Info("Google Sheets exporter initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	events, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err.Error())
		os.Exit(1)
	}
	defer events.Close()

	summaries := services.NewSummaryService(repo, cfg.OpenEndedHorizonMonths, logger)
	exportWorker := worker.NewExportWorker(repo, exporter, summaries)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	if err := events.ConsumeTransactionEvents(ctx, exportWorker.HandleEvent); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Event consumption failed", applog.FieldError, err.Error())
		_ = events.Close()
		_ = repo.Close()
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped gracefully")
}
