package google

import (
	"testing"

	"fiscora/internal/core"
)

func TestTransactionRow(t *testing.T) {
	tests := []struct {
		name string
		tx   core.Transaction
		want []any
	}{
		{
			name: "one-off expense",
			tx: core.Transaction{ID: 7, Amount: core.Money{Cents: 1250}, Description: "Lunch", Type: "Groceries",
				StartDate: core.NewDate(2024, 3, 2)},
			want: []any{int64(7), "2024-03-02", "Lunch", "Groceries", "Expense", 12.5, "No", "", "", ""},
		},
		{
			name: "recurring income every n days",
			tx: core.Transaction{ID: 8, Amount: core.Money{Cents: 10000}, Incoming: true, Description: "Rent in", Type: "Passive",
				StartDate: core.NewDate(2024, 1, 1), Recurring: true, Interval: core.Other, DaysInterval: 14,
				EndDate: core.NewDate(2024, 6, 30)},
			want: []any{int64(8), "2024-01-01", "Rent in", "Passive", "Income", 100.0, "Yes", "Other", "14", "2024-06-30"},
		},
		{
			name: "open-ended series",
			tx: core.Transaction{ID: 9, Amount: core.Money{Cents: 999}, Description: "Music", Type: "Subscriptions",
				StartDate: core.NewDate(2024, 1, 31), Recurring: true, Interval: core.Monthly},
			want: []any{int64(9), "2024-01-31", "Music", "Subscriptions", "Expense", 9.99, "Yes", "Monthly", "", ""},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := transactionRow(tt.tx)
			if len(got) != len(transactionHeader) {
				t.Fatalf("row has %d cells, header %d", len(got), len(transactionHeader))
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("cell %d = %#v, want %#v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestSummaryRows(t *testing.T) {
	year := core.NewYearSummary()
	year[1] = core.PeriodSummary{Income: core.Money{Cents: 300000}, Expense: core.Money{Cents: 125050}}
	year[12] = core.PeriodSummary{Expense: core.Money{Cents: 5000}}

	rows := summaryRows(year)
	if len(rows) != 14 {
		t.Fatalf("got %d rows", len(rows))
	}
	if rows[1][0] != "January" || rows[1][1] != 3000.0 || rows[1][2] != 1250.5 || rows[1][3] != 1749.5 {
		t.Errorf("january row = %v", rows[1])
	}
	if rows[12][0] != "December" || rows[12][3] != -50.0 {
		t.Errorf("december row = %v", rows[12])
	}
	if rows[13][0] != "Total" || rows[13][2] != 1300.5 {
		t.Errorf("total row = %v", rows[13])
	}
}

func TestFindRow(t *testing.T) {
	values := [][]any{{"ID"}, {"3"}, {}, {int64(12)}, {" 40 "}}
	tests := []struct {
		id   int64
		want int
	}{{3, 2}, {12, 4}, {40, 5}, {99, 0}}
	for _, tt := range tests {
		if got := findRow(values, tt.id); got != tt.want {
			t.Errorf("findRow(%d) = %d, want %d", tt.id, got, tt.want)
		}
	}
}

func TestYearPrefixedName(t *testing.T) {
	tests := []struct{ base, want string }{
		{"Summary", "2024 Summary"},
		{"2023 Summary", "2023 Summary"},
		{"  ", ""},
	}
	for _, tt := range tests {
		if got := yearPrefixedName(tt.base, 2024); got != tt.want {
			t.Errorf("yearPrefixedName(%q) = %q, want %q", tt.base, got, tt.want)
		}
	}
	if got := quoteSheet("Bob's 2024"); got != "'Bob''s 2024'" {
		t.Errorf("quoteSheet = %q", got)
	}
}
