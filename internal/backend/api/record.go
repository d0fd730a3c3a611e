package api

import (
	"fiscora/internal/core"
)

// transactionRecord is the remote wire shape. Dates stay strings so one bad
// record cannot fail a whole listing.
type transactionRecord struct {
	ID           int64      `json:"id"`
	Amount       core.Money `json:"amount"`
	Incoming     bool       `json:"incoming"`
	Description  string     `json:"description"`
	StartDate    *string    `json:"startDate"`
	Recurring    bool       `json:"recurring"`
	EndDate      *string    `json:"endDate"`
	Interval     *string    `json:"interval"`
	DaysInterval *int       `json:"daysInterval"`
	Type         string     `json:"type"`
}

func (r transactionRecord) toCore() core.Transaction {
	tx := core.Transaction{
		ID:          r.ID,
		Amount:      r.Amount,
		Incoming:    r.Incoming,
		Description: r.Description,
		StartDate:   lenientDate(r.StartDate),
		Recurring:   r.Recurring,
		EndDate:     lenientDate(r.EndDate),
		Type:        r.Type,
	}
	// older records carried the direction in the sign
	if tx.Amount.Cents < 0 {
		tx.Amount.Cents = -tx.Amount.Cents
		tx.Incoming = false
	}
	if r.Interval != nil {
		if i, ok := core.ParseInterval(*r.Interval); ok {
			tx.Interval = i
		} else {
			tx.Interval = core.Interval(*r.Interval)
		}
	}
	if r.DaysInterval != nil {
		tx.DaysInterval = *r.DaysInterval
	}
	return tx
}

func recordFromCore(tx core.Transaction) transactionRecord {
	r := transactionRecord{
		ID:          tx.ID,
		Amount:      tx.Amount,
		Incoming:    tx.Incoming,
		Description: tx.Description,
		Recurring:   tx.Recurring,
		Type:        tx.Type,
	}
	if s := tx.StartDate.String(); s != "" {
		r.StartDate = &s
	}
	if s := tx.EndDate.String(); s != "" {
		r.EndDate = &s
	}
	if tx.Recurring && tx.Interval != "" {
		i := string(tx.Interval)
		r.Interval = &i
	}
	if tx.DaysInterval > 0 {
		d := tx.DaysInterval
		r.DaysInterval = &d
	}
	return r
}

func lenientDate(s *string) core.Date {
	if s == nil {
		return core.Date{}
	}
	d, err := core.ParseDate(*s)
	if err != nil {
		return core.Date{}
	}
	return d
}
