package core

// TransactionFilter narrows a transaction listing. Zero fields do not filter:
// a zero Period (Year 0) matches every date, a nil Incoming both directions.
type TransactionFilter struct {
	Period   Period
	Incoming *bool
}

// Matches reports whether t passes the filter. For a period filter t must
// have at least one occurrence inside the period; open-ended series are
// expanded up to horizon, or to the period end when horizon is zero.
func (f TransactionFilter) Matches(t Transaction, horizon Date) bool {
	if f.Incoming != nil && t.Incoming != *f.Incoming {
		return false
	}
	if f.Period.Year == 0 {
		return true
	}
	start, end := f.Period.Start(), f.Period.End()
	if horizon.IsZero() || horizon.After(end.Time) {
		horizon = end
	}
	for d := range Occurrences(t, horizon) {
		if d.After(end.Time) {
			break
		}
		if !d.Before(start.Time) {
			return true
		}
	}
	return false
}
