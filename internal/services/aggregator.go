package services

import (
	"fiscora/internal/core"
)

// Aggregator folds transactions into period totals. It is a pure value:
// the same input always yields the same output and nothing is retained
// between calls, so one Aggregator may be shared across goroutines.
//
// Every occurrence of a transaction that falls in the period is counted once,
// so a daily series contributes once per day and a monthly one once per month.
// Records that cannot be expanded (see core.Transaction.CheckSchedule) are
// skipped and passed to OnSkip.
type Aggregator struct {
	// Horizon caps open-ended series. When zero they run to the period end.
	Horizon core.Date
	// OnSkip, if set, receives a *core.AggregationInputError per skipped record.
	OnSkip func(error)
}

// SummarizeMonth totals income and expense occurring in month/year. A month
// outside 1-12 yields zero totals.
func (a Aggregator) SummarizeMonth(txs []core.Transaction, month, year int) core.PeriodSummary {
	var out core.PeriodSummary
	if month < 1 || month > 12 {
		return out
	}
	a.fold(txs, core.MonthPeriod(year, month), func(tx core.Transaction, _ core.Date) {
		out = bucket(out, tx)
	})
	return out
}

// SummarizeYear totals each month of year. The result always has keys 1-12.
func (a Aggregator) SummarizeYear(txs []core.Transaction, year int) core.YearSummary {
	out := core.NewYearSummary()
	a.fold(txs, core.YearPeriod(year), func(tx core.Transaction, d core.Date) {
		out[d.Month()] = bucket(out[d.Month()], tx)
	})
	return out
}

// BreakdownByType totals the occurrences in p of one direction, keyed by type.
// Types with no occurrence are absent; the map is never nil.
func (a Aggregator) BreakdownByType(txs []core.Transaction, p core.Period, incoming bool) core.TypeBreakdown {
	out := core.TypeBreakdown{}
	a.fold(txs, p, func(tx core.Transaction, _ core.Date) {
		if tx.Incoming != incoming {
			return
		}
		out[tx.Type] = out[tx.Type].Add(tx.Amount)
	})
	return out
}

// Skipped lists the records aggregation would skip, one error each.
func (a Aggregator) Skipped(txs []core.Transaction) []error {
	var out []error
	for _, tx := range txs {
		if err := tx.CheckSchedule(); err != nil {
			out = append(out, err)
		}
	}
	return out
}

func (a Aggregator) fold(txs []core.Transaction, p core.Period, visit func(core.Transaction, core.Date)) {
	if p.Validate() != nil {
		return
	}
	start, end := p.Start(), p.End()
	horizon := end
	if !a.Horizon.IsZero() && a.Horizon.Before(end.Time) {
		horizon = a.Horizon
	}
	for _, tx := range txs {
		if err := tx.CheckSchedule(); err != nil {
			if a.OnSkip != nil {
				a.OnSkip(err)
			}
			continue
		}
		if tx.StartDate.After(end.Time) {
			continue
		}
		for d := range core.Occurrences(tx, horizon) {
			if d.After(end.Time) {
				break
			}
			if d.Before(start.Time) {
				continue
			}
			visit(tx, d)
		}
	}
}

func bucket(s core.PeriodSummary, tx core.Transaction) core.PeriodSummary {
	if tx.Incoming {
		s.Income = s.Income.Add(tx.Amount)
	} else {
		s.Expense = s.Expense.Add(tx.Amount)
	}
	return s
}
