package core

import (
	"encoding/json"
	"testing"
)

func TestPeriodBounds(t *testing.T) {
	cases := []struct {
		p          Period
		start, end string
	}{
		{MonthPeriod(2024, 2), "2024-02-01", "2024-02-29"},
		{MonthPeriod(2023, 2), "2023-02-01", "2023-02-28"},
		{MonthPeriod(2024, 12), "2024-12-01", "2024-12-31"},
		{YearPeriod(2024), "2024-01-01", "2024-12-31"},
	}
	for i, tc := range cases {
		if tc.p.Start().String() != tc.start || tc.p.End().String() != tc.end {
			t.Fatalf("case %d: got %s..%s", i, tc.p.Start(), tc.p.End())
		}
	}
	if !MonthPeriod(2024, 2).Contains(NewDate(2024, 2, 29)) {
		t.Fatal("period must include its last day")
	}
	if MonthPeriod(2024, 2).Contains(NewDate(2024, 3, 1)) {
		t.Fatal("period must exclude the next month")
	}
	if err := MonthPeriod(2024, 13).Validate(); err == nil {
		t.Fatal("expected error for month 13")
	}
	if err := YearPeriod(0).Validate(); err == nil {
		t.Fatal("expected error for year 0")
	}
}

func TestYearSummary(t *testing.T) {
	s := NewYearSummary()
	if len(s) != 12 {
		t.Fatalf("got %d months", len(s))
	}
	s[3] = PeriodSummary{Income: Money{Cents: 500}, Expense: Money{Cents: 200}}
	s[11] = PeriodSummary{Expense: Money{Cents: 50}}
	total := s.Total()
	if total.Income.Cents != 500 || total.Expense.Cents != 250 || total.Net().Cents != 250 {
		t.Fatalf("unexpected total %+v", total)
	}

	b, err := json.Marshal(YearSummary{1: {Income: Money{Cents: 100}}})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"1":{"income":1.00,"expense":0.00}}` {
		t.Fatalf("got %s", b)
	}
}

func TestTypeBreakdownJSONDropsZeros(t *testing.T) {
	b, err := json.Marshal(TypeBreakdown{"Rent": Money{Cents: 90000}, "Travel": Money{}})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"Rent":900.00}` {
		t.Fatalf("got %s", b)
	}
}
