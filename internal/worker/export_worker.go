package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"fiscora/internal/amqp"
	"fiscora/internal/backend"
	"fiscora/internal/core"
)

// Exporter receives transaction rows and year summaries.
type Exporter interface {
	UpsertTransaction(ctx context.Context, tx core.Transaction) (string, error)
	WriteYearSummary(ctx context.Context, year int, summary core.YearSummary) error
}

// YearSummarizer computes the monthly totals of one year.
type YearSummarizer interface {
	Year(ctx context.Context, year int) (core.YearSummary, error)
}

// ExportWorker mirrors stored transactions into a spreadsheet. Events only
// carry IDs; the current state is always read back from the store.
type ExportWorker struct {
	store     backend.TransactionStore
	exporter  Exporter
	summaries YearSummarizer
}

func NewExportWorker(store backend.TransactionStore, exporter Exporter, summaries YearSummarizer) *ExportWorker {
	return &ExportWorker{
		store:     store,
		exporter:  exporter,
		summaries: summaries,
	}
}

// HandleEvent processes one transaction event. Returning an error makes the
// consumer requeue the event, so every step is idempotent.
func (w *ExportWorker) HandleEvent(ctx context.Context, evt *amqp.TransactionEvent) error {
	slog.InfoContext(ctx, "Processing transaction event",
		"component", "worker",
		"event_kind", evt.Kind,
		"transaction_id", evt.TransactionID,
		"years", evt.Years)

	if evt.Kind != amqp.EventDeleted {
		if err := w.exportRow(ctx, evt.TransactionID); err != nil {
			return err
		}
	}

	for _, year := range evt.Years {
		summary, err := w.summaries.Year(ctx, year)
		if err != nil {
			return fmt.Errorf("summarize %d: %w", year, err)
		}
		if err := w.exporter.WriteYearSummary(ctx, year, summary); err != nil {
			return fmt.Errorf("export summary %d: %w", year, err)
		}
	}
	return nil
}

func (w *ExportWorker) exportRow(ctx context.Context, id int64) error {
	tx, err := w.store.GetTransaction(ctx, id)
	if errors.Is(err, core.ErrNotFound) {
		// deleted before we got here; its delete event refreshes the summaries
		slog.WarnContext(ctx, "Transaction gone before export, skipping row",
			"component", "worker",
			"transaction_id", id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("load transaction %d: %w", id, err)
	}
	if _, err := w.exporter.UpsertTransaction(ctx, tx); err != nil {
		return fmt.Errorf("export transaction %d: %w", id, err)
	}
	return nil
}
