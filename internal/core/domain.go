package core

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"
)

// NewTransactionID marks a transaction that has not been persisted yet.
const NewTransactionID int64 = -1

// DateLayout is the calendar-day wire format.
const DateLayout = "2006-01-02"

// MaxDescriptionLength bounds a transaction description, counted in runes.
const MaxDescriptionLength = 512

type (
	Date struct {
		time.Time
	}

	// Money is an unsigned magnitude in cents. Direction lives on the owner
	// (Transaction.Incoming), never in the sign.
	Money struct {
		Cents int64
	}

	Transaction struct {
		ID           int64    `json:"id"`
		Amount       Money    `json:"amount"`
		Incoming     bool     `json:"incoming"`
		Description  string   `json:"description"`
		StartDate    Date     `json:"startDate"`
		Recurring    bool     `json:"recurring"`
		EndDate      Date     `json:"endDate"`
		Interval     Interval `json:"interval,omitempty"`
		DaysInterval int      `json:"daysInterval,omitempty"`
		Type         string   `json:"type"`
	}
)

var (
	ErrInvalidDay    = errors.New("invalid day")
	ErrInvalidMonth  = errors.New("invalid month")
	ErrInvalidYear   = errors.New("invalid year")
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrNotFound      = errors.New("not found")
	ErrUnauthorized  = errors.New("unauthorized")
)

// Income and expense categories offered to clients.
var (
	IncomeTypes = []string{
		"Salary",
		"Passive",
		"Capital Gains",
		"Dividend",
		"Government Payment",
		"Other",
	}

	ExpenseTypes = []string{
		"Mortgage",
		"Rent",
		"Utilities",
		"Fixed",
		"Groceries",
		"Insurance",
		"Travel",
		"Taxes",
		"Interest",
		"Subscriptions",
		"Other",
	}
)

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	y, month, day := d.Date()
	if y < 1 || y > 9999 {
		return ErrInvalidYear
	}
	if day < 1 || day > 31 {
		return ErrInvalidDay
	}
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day in UTC.
func DateOf(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return NewDate(y, int(m), d)
}

// ParseDate accepts a plain calendar day or a full RFC 3339 timestamp.
// The time-of-day part, if any, is dropped.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, ErrInvalidDate
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return DateOf(t), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	// keep the calendar day the client wrote, not its UTC shift
	y, m, day := t.Date()
	return NewDate(y, int(m), day), nil
}

// AddDays moves d by n calendar days.
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// AddMonthsClamped moves d by n months keeping its day of month, clamped to
// the last day of the target month (Jan 31 + 1 month = Feb 28/29).
func (d Date) AddMonthsClamped(n int) Date {
	y, m, day := d.Date()
	first := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC).AddDate(0, n, 0)
	last := DaysIn(first.Year(), int(first.Month()))
	if day > last {
		day = last
	}
	return NewDate(first.Year(), int(first.Month()), day)
}

// DaysIn returns the number of days in the given month.
func DaysIn(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// IsEmpty returns true if the date is zero (for optional dates)
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format(DateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) || bytes.Equal(b, []byte(`""`)) {
		*d = Date{}
		return nil
	}
	if len(b) < 2 || b[0] != '"' || b[len(b)-1] != '"' {
		return fmt.Errorf("%w: %s", ErrInvalidDate, b)
	}
	parsed, err := ParseDate(string(b[1 : len(b)-1]))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

func (m Money) IsZero() bool {
	return m.Cents == 0
}

// Validate checks a transaction already built from trusted input.
// Untrusted input goes through ValidateTransaction instead.
func (t Transaction) Validate() error {
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Description) == "" {
		return errors.New("empty description")
	}
	if err := t.StartDate.Validate(); err != nil {
		return fmt.Errorf("start date: %w", err)
	}
	if strings.TrimSpace(t.Type) == "" {
		return errors.New("empty transaction type")
	}
	return t.CheckSchedule()
}

// IsNew reports whether the transaction has not been stored yet.
func (t Transaction) IsNew() bool {
	return t.ID == NewTransactionID || t.ID == 0
}
