package services

import (
	"errors"
	"reflect"
	"slices"
	"testing"

	"fiscora/internal/core"
)

func money(cents int64) core.Money { return core.Money{Cents: cents} }

func sampleLedger() []core.Transaction {
	return []core.Transaction{
		{ID: 1, Amount: money(300000), Incoming: true, Description: "Salary", Type: "Salary",
			StartDate: core.NewDate(2024, 1, 25), Recurring: true, EndDate: core.NewDate(2024, 12, 31), Interval: core.Monthly},
		{ID: 2, Amount: money(120000), Description: "Rent", Type: "Rent",
			StartDate: core.NewDate(2024, 1, 1), Recurring: true, EndDate: core.NewDate(2024, 6, 1), Interval: core.Monthly},
		{ID: 3, Amount: money(4550), Description: "Dinner", Type: "Other",
			StartDate: core.NewDate(2024, 3, 14)},
		{ID: 4, Amount: money(1000), Description: "Coffee", Type: "Groceries",
			StartDate: core.NewDate(2024, 3, 1), Recurring: true, EndDate: core.NewDate(2024, 3, 21), Interval: core.Weekly},
	}
}

func TestAggregator_SummarizeMonth(t *testing.T) {
	agg := Aggregator{}
	tests := []struct {
		name        string
		month, year int
		income, exp int64
	}{
		{"january", 1, 2024, 300000, 120000},
		// rent + dinner + 3 weekly coffees (1st, 8th, 15th)
		{"march", 3, 2024, 300000, 120000 + 4550 + 3000},
		{"june rent ends inclusive", 6, 2024, 300000, 120000},
		{"july after rent", 7, 2024, 300000, 0},
		{"before anything", 12, 2023, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := agg.SummarizeMonth(sampleLedger(), tt.month, tt.year)
			if got.Income.Cents != tt.income || got.Expense.Cents != tt.exp {
				t.Errorf("SummarizeMonth() = %d/%d, want %d/%d", got.Income.Cents, got.Expense.Cents, tt.income, tt.exp)
			}
		})
	}
}

func TestAggregator_SummarizeYearMatchesMonths(t *testing.T) {
	agg := Aggregator{}
	txs := sampleLedger()
	year := agg.SummarizeYear(txs, 2024)
	if len(year) != 12 {
		t.Fatalf("got %d months", len(year))
	}
	for m := 1; m <= 12; m++ {
		want := agg.SummarizeMonth(txs, m, 2024)
		if year[m] != want {
			t.Errorf("month %d: year view %+v, month view %+v", m, year[m], want)
		}
	}
	total := year.Total()
	if total.Income.Cents != 12*300000 {
		t.Errorf("yearly income = %d", total.Income.Cents)
	}
}

func TestAggregator_SingleOccurrenceCountedOnce(t *testing.T) {
	agg := Aggregator{}
	txs := []core.Transaction{{ID: 9, Amount: money(100), Type: "Other", StartDate: core.NewDate(2024, 2, 29)}}
	for m := 1; m <= 12; m++ {
		s := agg.SummarizeMonth(txs, m, 2024)
		want := int64(0)
		if m == 2 {
			want = 100
		}
		if s.Expense.Cents != want {
			t.Errorf("month %d expense = %d, want %d", m, s.Expense.Cents, want)
		}
	}
}

func TestAggregator_OpenEndedHorizon(t *testing.T) {
	txs := []core.Transaction{{ID: 1, Amount: money(100), Incoming: true, Type: "Dividend",
		StartDate: core.NewDate(2024, 1, 10), Recurring: true, Interval: core.Monthly}}

	unbounded := Aggregator{}.SummarizeYear(txs, 2024).Total()
	if unbounded.Income.Cents != 1200 {
		t.Fatalf("open-ended series should run to period end, got %d", unbounded.Income.Cents)
	}

	capped := Aggregator{Horizon: core.NewDate(2024, 3, 31)}.SummarizeYear(txs, 2024).Total()
	if capped.Income.Cents != 300 {
		t.Fatalf("horizon should cap the series, got %d", capped.Income.Cents)
	}
}

func TestAggregator_BreakdownByType(t *testing.T) {
	agg := Aggregator{}
	got := agg.BreakdownByType(sampleLedger(), core.MonthPeriod(2024, 3), false)
	want := map[string]int64{"Rent": 120000, "Other": 4550, "Groceries": 3000}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for k, v := range want {
		if got[k].Cents != v {
			t.Errorf("%s = %d, want %d", k, got[k].Cents, v)
		}
	}

	income := agg.BreakdownByType(sampleLedger(), core.YearPeriod(2024), true)
	if len(income) != 1 || income["Salary"].Cents != 12*300000 {
		t.Errorf("income breakdown = %v", income)
	}

	empty := agg.BreakdownByType(nil, core.YearPeriod(2024), true)
	if empty == nil || len(empty) != 0 {
		t.Errorf("empty breakdown = %v", empty)
	}
}

func TestAggregator_SkipsMalformed(t *testing.T) {
	var skipped []error
	agg := Aggregator{OnSkip: func(err error) { skipped = append(skipped, err) }}
	txs := append(sampleLedger(),
		core.Transaction{ID: 50, Amount: money(999), Type: "Other"},
		core.Transaction{ID: 51, Amount: money(999), Type: "Other", StartDate: core.NewDate(2024, 1, 1),
			Recurring: true, Interval: core.Other},
	)

	got := agg.SummarizeMonth(txs, 1, 2024)
	if got.Expense.Cents != 120000 {
		t.Errorf("malformed records leaked into totals: %d", got.Expense.Cents)
	}
	if len(skipped) != 2 {
		t.Fatalf("OnSkip called %d times, want 2", len(skipped))
	}
	var aerr *core.AggregationInputError
	if !errors.As(skipped[0], &aerr) || aerr.TransactionID != 50 {
		t.Errorf("unexpected skip error %v", skipped[0])
	}
	if n := len(agg.Skipped(txs)); n != 2 {
		t.Errorf("Skipped() = %d, want 2", n)
	}
}

func TestAggregator_Idempotent(t *testing.T) {
	agg := Aggregator{}
	txs := sampleLedger()
	before := slices.Clone(txs)

	first := agg.SummarizeMonth(txs, 3, 2024)
	second := agg.SummarizeMonth(txs, 3, 2024)
	if first != second {
		t.Errorf("repeated SummarizeMonth differs: %+v vs %+v", first, second)
	}
	if y1, y2 := agg.SummarizeYear(txs, 2024), agg.SummarizeYear(txs, 2024); !reflect.DeepEqual(y1, y2) {
		t.Errorf("repeated SummarizeYear differs: %v vs %v", y1, y2)
	}
	if b1, b2 := agg.BreakdownByType(txs, core.YearPeriod(2024), false), agg.BreakdownByType(txs, core.YearPeriod(2024), false); !reflect.DeepEqual(b1, b2) {
		t.Errorf("repeated BreakdownByType differs: %v vs %v", b1, b2)
	}
	if !reflect.DeepEqual(txs, before) {
		t.Error("aggregation mutated its input")
	}
}

func TestAggregator_MonthlySeriesByMonth(t *testing.T) {
	tests := []struct {
		name   string
		tx     core.Transaction
		months map[int]int64
	}{
		{
			"rent january to march",
			core.Transaction{ID: 1, Amount: money(5000), Description: "Rent", Type: "Rent",
				StartDate: core.NewDate(2024, 1, 1), Recurring: true, EndDate: core.NewDate(2024, 3, 1), Interval: core.Monthly},
			map[int]int64{1: 5000, 2: 5000, 3: 5000},
		},
		{
			"salary one-off",
			core.Transaction{ID: 2, Amount: money(200000), Incoming: true, Description: "Salary", Type: "Salary",
				StartDate: core.NewDate(2024, 1, 15)},
			map[int]int64{1: 200000},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			year := Aggregator{}.SummarizeYear([]core.Transaction{tt.tx}, 2024)
			for m := 1; m <= 12; m++ {
				got := year[m].Expense.Cents
				if tt.tx.Incoming {
					got = year[m].Income.Cents
				}
				if got != tt.months[m] {
					t.Errorf("month %d = %d, want %d", m, got, tt.months[m])
				}
			}
		})
	}
}

func TestAggregator_MonthOutOfRange(t *testing.T) {
	agg := Aggregator{}
	for _, month := range []int{0, 13, -1} {
		if got := agg.SummarizeMonth(sampleLedger(), month, 2024); got != (core.PeriodSummary{}) {
			t.Errorf("month %d = %+v, want zero", month, got)
		}
	}
	if got := agg.BreakdownByType(sampleLedger(), core.MonthPeriod(2024, 13), false); len(got) != 0 {
		t.Errorf("breakdown for month 13 = %v", got)
	}
}
