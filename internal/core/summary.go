package core

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Period is a calendar month (Month 1-12) or a whole year (Month 0).
type Period struct {
	Year  int
	Month int
}

func MonthPeriod(year, month int) Period { return Period{Year: year, Month: month} }

func YearPeriod(year int) Period { return Period{Year: year} }

func (p Period) IsMonth() bool { return p.Month != 0 }

func (p Period) Validate() error {
	if p.Year < 1 || p.Year > 9999 {
		return fmt.Errorf("%w: %d", ErrInvalidYear, p.Year)
	}
	if p.Month < 0 || p.Month > 12 {
		return fmt.Errorf("%w: %d", ErrInvalidMonth, p.Month)
	}
	return nil
}

// Start is the first day of the period.
func (p Period) Start() Date {
	if p.IsMonth() {
		return NewDate(p.Year, p.Month, 1)
	}
	return NewDate(p.Year, 1, 1)
}

// End is the last day of the period, inclusive.
func (p Period) End() Date {
	if p.IsMonth() {
		return NewDate(p.Year, p.Month, DaysIn(p.Year, p.Month))
	}
	return NewDate(p.Year, 12, 31)
}

func (p Period) Contains(d Date) bool {
	return !d.Before(p.Start().Time) && !d.After(p.End().Time)
}

func (p Period) String() string {
	if p.IsMonth() {
		return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
	}
	return strconv.Itoa(p.Year)
}

// PeriodSummary totals income and expense for one period.
type PeriodSummary struct {
	Income  Money `json:"income"`
	Expense Money `json:"expense"`
}

// Net is income minus expense; it may be negative.
func (s PeriodSummary) Net() Money {
	return Money{Cents: s.Income.Cents - s.Expense.Cents}
}

func (s PeriodSummary) Add(o PeriodSummary) PeriodSummary {
	return PeriodSummary{Income: s.Income.Add(o.Income), Expense: s.Expense.Add(o.Expense)}
}

// YearSummary maps month numbers 1-12 to their totals. A summary built by
// the aggregator always carries all twelve keys.
type YearSummary map[int]PeriodSummary

// NewYearSummary returns a summary with all twelve months zeroed.
func NewYearSummary() YearSummary {
	s := make(YearSummary, 12)
	for m := 1; m <= 12; m++ {
		s[m] = PeriodSummary{}
	}
	return s
}

// Total folds the twelve months into one.
func (s YearSummary) Total() PeriodSummary {
	var out PeriodSummary
	for m := 1; m <= 12; m++ {
		out = out.Add(s[m])
	}
	return out
}

// TypeBreakdown maps a transaction type to its total.
type TypeBreakdown map[string]Money

// NonZero returns a copy without zero entries.
func (b TypeBreakdown) NonZero() TypeBreakdown {
	out := make(TypeBreakdown, len(b))
	for k, v := range b {
		if !v.IsZero() {
			out[k] = v
		}
	}
	return out
}

// MarshalJSON omits zero totals so clients only see types that moved money.
func (b TypeBreakdown) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]Money(b.NonZero()))
}
