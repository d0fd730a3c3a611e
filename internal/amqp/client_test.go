package amqp

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"fiscora/internal/core"
)

func TestNewTransactionEventYears(t *testing.T) {
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		tx   core.Transaction
		want []int
	}{
		{"one-off", core.Transaction{ID: 1, StartDate: core.NewDate(2024, 3, 1)}, []int{2024}},
		{"bounded series", core.Transaction{ID: 2, StartDate: core.NewDate(2024, 11, 1), Recurring: true,
			EndDate: core.NewDate(2025, 2, 1), Interval: core.Monthly}, []int{2024, 2025}},
		{"open-ended runs to now", core.Transaction{ID: 3, StartDate: core.NewDate(2024, 1, 1), Recurring: true,
			Interval: core.Weekly}, []int{2024, 2025, 2026}},
		{"long series keeps latest years", core.Transaction{ID: 4, StartDate: core.NewDate(2000, 1, 1), Recurring: true,
			EndDate: core.NewDate(2030, 1, 1), Interval: core.Monthly},
			[]int{2021, 2022, 2023, 2024, 2025, 2026, 2027, 2028, 2029, 2030}},
		{"no start", core.Transaction{ID: 5}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evt := NewTransactionEvent(EventUpdated, tt.tx, now)
			if !slices.Equal(evt.Years, tt.want) {
				t.Errorf("Years = %v, want %v", evt.Years, tt.want)
			}
			if evt.TransactionID != tt.tx.ID || !evt.Timestamp.Equal(now) {
				t.Errorf("unexpected event %+v", evt)
			}
		})
	}
}

func TestNewTransactionEventIncludesPreviousYears(t *testing.T) {
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	old := core.Transaction{ID: 7, StartDate: core.NewDate(2023, 5, 1)}
	moved := core.Transaction{ID: 7, StartDate: core.NewDate(2024, 5, 1)}

	evt := NewTransactionEvent(EventUpdated, moved, now, old)
	if !slices.Equal(evt.Years, []int{2023, 2024}) {
		t.Errorf("Years = %v, want [2023 2024]", evt.Years)
	}

	same := NewTransactionEvent(EventUpdated, moved, now, moved)
	if !slices.Equal(same.Years, []int{2024}) {
		t.Errorf("Years = %v, want [2024]", same.Years)
	}
}

func TestTransactionEventJSON(t *testing.T) {
	evt := NewTransactionEvent(EventCreated, core.Transaction{ID: 9, StartDate: core.NewDate(2024, 1, 1)}, time.Now())
	body, err := evt.ToJSON()
	if err != nil {
		t.Fatal(err)
	}
	got, err := TransactionEventFromJSON(body)
	if err != nil {
		t.Fatal(err)
	}
	if got.Kind != EventCreated || got.TransactionID != 9 || !slices.Equal(got.Years, []int{2024}) {
		t.Errorf("decoded %+v", got)
	}

	for _, bad := range []string{`not json`, `{"kind":"renamed","transaction_id":1}`, `{"kind":"created"}`} {
		if _, err := TransactionEventFromJSON([]byte(bad)); err == nil {
			t.Errorf("%s: expected error", bad)
		}
	}
}

func TestDispatch(t *testing.T) {
	ctx := context.Background()
	good := []byte(`{"kind":"deleted","transaction_id":3,"years":[2024]}`)

	tests := []struct {
		name    string
		body    []byte
		handler EventHandler
		want    outcome
	}{
		{"handled", good, func(context.Context, *TransactionEvent) error { return nil }, outcomeAck},
		{"handler fails", good, func(context.Context, *TransactionEvent) error { return errors.New("sheets down") }, outcomeRequeue},
		{"malformed", []byte(`{`), func(context.Context, *TransactionEvent) error {
			t.Error("handler called for malformed body")
			return nil
		}, outcomeDrop},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := dispatch(ctx, tt.body, tt.handler); got != tt.want {
				t.Errorf("dispatch() = %v, want %v", got, tt.want)
			}
		})
	}
}
