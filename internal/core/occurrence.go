package core

import (
	"fmt"
	"iter"
)

// AggregationInputError describes a stored transaction that cannot be
// expanded into occurrences. Aggregation skips such records and reports them.
type AggregationInputError struct {
	TransactionID int64
	Field         Field
	Reason        string
}

func (e *AggregationInputError) Error() string {
	return fmt.Sprintf("transaction %d: %s: %s", e.TransactionID, e.Field, e.Reason)
}

// CheckSchedule reports whether t carries enough schedule data to be expanded.
// An absent end date on a recurring transaction is allowed (open-ended series).
func (t Transaction) CheckSchedule() error {
	bad := func(f Field, reason string) error {
		return &AggregationInputError{TransactionID: t.ID, Field: f, Reason: reason}
	}
	if err := t.StartDate.Validate(); err != nil {
		return bad(FieldStartDate, "missing or unparseable start date")
	}
	if !t.Recurring {
		return nil
	}
	c, err := CadenceFor(t.Interval)
	if err != nil {
		return bad(FieldInterval, err.Error())
	}
	if c.NeedsDays() && t.DaysInterval <= 0 {
		return bad(FieldDaysInterval, "interval requires a positive day count")
	}
	if !t.EndDate.IsZero() {
		if err := t.EndDate.Validate(); err != nil {
			return bad(FieldEndDate, "unparseable end date")
		}
		if t.EndDate.Before(t.StartDate.Time) {
			return bad(FieldEndDate, "end date before start date")
		}
	}
	return nil
}

// Occurrences yields the dates on which t takes effect, in ascending order.
//
// A one-off transaction yields its start date once. A recurring one yields
// start, then every cadence step up to and including EndDate. When EndDate is
// absent the series stops at horizon; with no horizon either, only the start
// date is yielded. Transactions failing CheckSchedule yield nothing.
//
// The sequence holds no state between iterations and can be ranged over again.
func Occurrences(t Transaction, horizon Date) iter.Seq[Date] {
	return func(yield func(Date) bool) {
		if t.CheckSchedule() != nil {
			return
		}
		if !t.Recurring {
			yield(t.StartDate)
			return
		}
		until := t.EndDate
		if until.IsZero() {
			until = horizon
		}
		if until.IsZero() {
			yield(t.StartDate)
			return
		}
		c, _ := CadenceFor(t.Interval)
		prev := Date{}
		for k := 0; ; k++ {
			d := c.Occurrence(t.StartDate, k, t.DaysInterval)
			if d.After(until.Time) {
				return
			}
			// a cadence that stops advancing would never terminate
			if k > 0 && !d.After(prev.Time) {
				return
			}
			if !yield(d) {
				return
			}
			prev = d
		}
	}
}
