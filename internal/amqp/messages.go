package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"fiscora/internal/core"
)

// EventKind says what happened to a transaction
type EventKind string

const (
	EventCreated EventKind = "created"
	EventUpdated EventKind = "updated"
	EventDeleted EventKind = "deleted"
)

// maxEventYears bounds how many summary years one event asks to refresh
const maxEventYears = 10

// TransactionEvent is a lightweight change notification. It carries the ID
// and the calendar years whose totals may have moved; consumers fetch the
// transaction itself from storage.
type TransactionEvent struct {
	Kind          EventKind `json:"kind"`
	TransactionID int64     `json:"transaction_id"`
	Years         []int     `json:"years"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewTransactionEvent builds an event for tx. Open-ended series are treated
// as running until now. The years of each previous version of tx are
// included too, so an update that moves a transaction out of a year still
// refreshes that year.
func NewTransactionEvent(kind EventKind, tx core.Transaction, now time.Time, previous ...core.Transaction) *TransactionEvent {
	years := affectedYears(tx, now)
	for _, old := range previous {
		years = append(years, affectedYears(old, now)...)
	}
	if len(previous) > 0 {
		slices.Sort(years)
		years = slices.Compact(years)
	}
	return &TransactionEvent{
		Kind:          kind,
		TransactionID: tx.ID,
		Years:         years,
		Timestamp:     now.UTC(),
	}
}

func affectedYears(tx core.Transaction, now time.Time) []int {
	if tx.StartDate.IsZero() {
		return nil
	}
	first := tx.StartDate.Year()
	last := first
	if tx.Recurring {
		switch {
		case !tx.EndDate.IsZero():
			last = tx.EndDate.Year()
		case now.Year() > first:
			last = now.Year()
		}
	}
	if last-first+1 > maxEventYears {
		first = last - maxEventYears + 1
	}
	years := make([]int, 0, last-first+1)
	for y := first; y <= last; y++ {
		years = append(years, y)
	}
	return years
}

// Validate rejects events a consumer cannot act on
func (e *TransactionEvent) Validate() error {
	switch e.Kind {
	case EventCreated, EventUpdated, EventDeleted:
	default:
		return fmt.Errorf("unknown event kind %q", e.Kind)
	}
	if e.TransactionID <= 0 {
		return errors.New("event without transaction id")
	}
	return nil
}

func (e *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var e TransactionEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return &e, nil
}
