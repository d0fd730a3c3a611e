package worker

import (
	"context"
	"errors"
	"slices"
	"testing"

	"fiscora/internal/amqp"
	"fiscora/internal/backend/memory"
	"fiscora/internal/core"
)

type fakeExporter struct {
	rows       []int64
	summaries  []int
	summaryErr error
}

func (f *fakeExporter) UpsertTransaction(_ context.Context, tx core.Transaction) (string, error) {
	f.rows = append(f.rows, tx.ID)
	return "A2:J2", nil
}

func (f *fakeExporter) WriteYearSummary(_ context.Context, year int, summary core.YearSummary) error {
	if f.summaryErr != nil {
		return f.summaryErr
	}
	if len(summary) != 12 {
		return errors.New("summary without twelve months")
	}
	f.summaries = append(f.summaries, year)
	return nil
}

type fakeSummarizer struct{}

func (fakeSummarizer) Year(context.Context, int) (core.YearSummary, error) {
	return core.NewYearSummary(), nil
}

func TestExportWorker_HandleEvent(t *testing.T) {
	ctx := context.Background()
	store := memory.New(nil, nil)
	tx, err := store.CreateTransaction(ctx, core.Transaction{Amount: core.Money{Cents: 500}, Description: "Tea",
		Type: "Groceries", StartDate: core.NewDate(2024, 5, 1)})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name          string
		evt           amqp.TransactionEvent
		wantRows      []int64
		wantSummaries []int
	}{
		{"created exports row and summary", amqp.TransactionEvent{Kind: amqp.EventCreated, TransactionID: tx.ID, Years: []int{2024}},
			[]int64{tx.ID}, []int{2024}},
		{"updated across years", amqp.TransactionEvent{Kind: amqp.EventUpdated, TransactionID: tx.ID, Years: []int{2023, 2024}},
			[]int64{tx.ID}, []int{2023, 2024}},
		{"deleted refreshes summary only", amqp.TransactionEvent{Kind: amqp.EventDeleted, TransactionID: 99, Years: []int{2024}},
			nil, []int{2024}},
		{"created but already gone", amqp.TransactionEvent{Kind: amqp.EventCreated, TransactionID: 99, Years: []int{2024}},
			nil, []int{2024}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exp := &fakeExporter{}
			w := NewExportWorker(store, exp, fakeSummarizer{})
			evt := tt.evt
			if err := w.HandleEvent(ctx, &evt); err != nil {
				t.Fatal(err)
			}
			if !slices.Equal(exp.rows, tt.wantRows) {
				t.Errorf("rows = %v, want %v", exp.rows, tt.wantRows)
			}
			if !slices.Equal(exp.summaries, tt.wantSummaries) {
				t.Errorf("summaries = %v, want %v", exp.summaries, tt.wantSummaries)
			}
		})
	}
}

func TestExportWorker_ErrorsRequeue(t *testing.T) {
	ctx := context.Background()
	exp := &fakeExporter{summaryErr: errors.New("quota exceeded")}
	w := NewExportWorker(memory.New(nil, nil), exp, fakeSummarizer{})
	err := w.HandleEvent(ctx, &amqp.TransactionEvent{Kind: amqp.EventDeleted, TransactionID: 1, Years: []int{2024}})
	if err == nil {
		t.Fatal("expected error so the event is requeued")
	}
}
