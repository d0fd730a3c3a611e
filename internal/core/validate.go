package core

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// Field names a user-editable form field. Values match the JSON keys clients send.
type Field string

const (
	FieldAmount       Field = "amount"
	FieldDescription  Field = "description"
	FieldStartDate    Field = "startDate"
	FieldEndDate      Field = "endDate"
	FieldInterval     Field = "interval"
	FieldDaysInterval Field = "daysInterval"
	FieldType         Field = "type"

	FieldName            Field = "name"
	FieldAllocatedAmount Field = "allocatedAmount"
	FieldCurrentAmount   Field = "currentAmount"
)

// FieldValidationError is one failed check on one field.
type FieldValidationError struct {
	Field   Field  `json:"field"`
	Message string `json:"message"`
}

func (e FieldValidationError) Error() string {
	return string(e.Field) + ": " + e.Message
}

// ValidationErrors lists field errors in evaluation order, at most one per field.
type ValidationErrors []FieldValidationError

func (ve ValidationErrors) Error() string {
	parts := make([]string, len(ve))
	for i, e := range ve {
		parts[i] = e.Error()
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Fields is the per-field view of ve.
func (ve ValidationErrors) Fields() FieldErrors {
	out := make(FieldErrors, len(ve))
	for _, e := range ve {
		out[e.Field] = e.Message
	}
	return out
}

// FieldErrors is the per-field view of a failed validation: each key is a
// form field, each value its message. Fields that passed are absent.
type FieldErrors map[Field]string

// TransactionFieldErrors is FieldErrors for a transaction form.
type TransactionFieldErrors = FieldErrors

// Result is the outcome of validating a form. It is either valid and carries
// the normalized value, or invalid and carries field errors. The zero value
// is invalid with no errors.
type Result[T any] struct {
	valid  bool
	value  T
	errors ValidationErrors
}

// TransactionResult is the outcome of ValidateTransaction.
type TransactionResult = Result[Transaction]

// Valid is the single gate callers check before using the value.
func (r Result[T]) Valid() bool { return r.valid }

// Value returns the normalized value; ok is false for an invalid result.
func (r Result[T]) Value() (T, bool) {
	if !r.valid {
		var zero T
		return zero, false
	}
	return r.value, true
}

// Transaction is Value for transaction results.
func (r Result[T]) Transaction() (T, bool) { return r.Value() }

// FieldErrors returns a fresh per-field map; empty when valid.
func (r Result[T]) FieldErrors() FieldErrors {
	return r.errors.Fields()
}

// Err returns nil for a valid result, otherwise a ValidationErrors.
func (r Result[T]) Err() error {
	if r.valid {
		return nil
	}
	return r.errors
}

// rule is one declarative check. A rule applies when `when` is nil or true;
// `check` returning false records message for field. Only the first failing
// rule per field is kept, so ordering within a field expresses precedence.
type rule[D any] struct {
	field   Field
	when    func(D) bool
	check   func(D) bool
	message string
}

func evaluate[D any](d D, rules []rule[D]) ValidationErrors {
	var out ValidationErrors
	failed := make(map[Field]bool)
	for _, r := range rules {
		if failed[r.field] {
			continue
		}
		if r.when != nil && !r.when(d) {
			continue
		}
		if !r.check(d) {
			failed[r.field] = true
			out = append(out, FieldValidationError{Field: r.field, Message: r.message})
		}
	}
	return out
}

func valid[T any](v T) Result[T] { return Result[T]{valid: true, value: v} }

func invalid[T any](errs ValidationErrors) Result[T] { return Result[T]{errors: errs} }

// TransactionForm is the raw, untrusted shape of a transaction as a client
// submits it. Text fields are kept as strings so that parse failures can be
// reported per field.
type TransactionForm struct {
	ID           int64
	Amount       string
	Incoming     bool
	Description  string
	StartDate    string
	Recurring    bool
	EndDate      string
	Interval     string
	DaysInterval string
	Type         string
}

// transactionDraft holds the form plus every value parsed out of it once.
type transactionDraft struct {
	form     TransactionForm
	amount   Money
	amountOK bool
	start    Date
	startOK  bool
	end      Date
	endOK    bool
	interval Interval
	known    bool
	days     int
	daysOK   bool
}

func newTransactionDraft(f TransactionForm) *transactionDraft {
	d := &transactionDraft{form: f}
	if m, err := ParseAmount(f.Amount); err == nil {
		d.amount, d.amountOK = m, true
	}
	if dt, err := ParseDate(f.StartDate); err == nil && dt.Validate() == nil {
		d.start, d.startOK = dt, true
	}
	if dt, err := ParseDate(f.EndDate); err == nil && dt.Validate() == nil {
		d.end, d.endOK = dt, true
	}
	d.interval, d.known = ParseInterval(f.Interval)
	if n, err := strconv.Atoi(strings.TrimSpace(f.DaysInterval)); err == nil {
		d.days, d.daysOK = n, true
	}
	return d
}

func (d *transactionDraft) recurring() bool    { return d.form.Recurring }
func (d *transactionDraft) oneOff() bool       { return !d.form.Recurring }
func (d *transactionDraft) description() string { return strings.TrimSpace(d.form.Description) }

func (d *transactionDraft) needsDays() bool {
	if !d.form.Recurring || !d.known {
		return false
	}
	c, err := CadenceFor(d.interval)
	return err == nil && c.NeedsDays()
}

var transactionRules = []rule[*transactionDraft]{
	{FieldAmount, nil, func(d *transactionDraft) bool { return strings.TrimSpace(d.form.Amount) != "" }, "Please enter an amount."},
	{FieldAmount, nil, func(d *transactionDraft) bool { return d.amountOK }, "Please enter a valid amount."},
	{FieldAmount, nil, func(d *transactionDraft) bool { return d.amount.Cents != 0 }, "Amount cannot be 0."},
	{FieldAmount, nil, func(d *transactionDraft) bool { return d.amount.Cents > 0 }, "Amount must be positive, mark the transaction as incoming instead."},

	{FieldDescription, nil, func(d *transactionDraft) bool { return d.description() != "" }, "Please enter a description."},
	{FieldDescription, nil, func(d *transactionDraft) bool {
		return utf8.RuneCountInString(d.description()) <= MaxDescriptionLength
	}, "Description cannot be more than 512 characters."},

	{FieldStartDate, (*transactionDraft).oneOff, func(d *transactionDraft) bool { return d.startOK }, "Please enter a valid date."},
	{FieldStartDate, (*transactionDraft).recurring, func(d *transactionDraft) bool { return d.startOK }, "Please enter a valid start date."},

	{FieldEndDate, (*transactionDraft).recurring, func(d *transactionDraft) bool { return d.endOK }, "Please enter a valid end date."},
	{FieldEndDate, (*transactionDraft).recurring, func(d *transactionDraft) bool {
		return !d.startOK || !d.end.Before(d.start.Time)
	}, "End date cannot be before the start date."},

	{FieldInterval, (*transactionDraft).recurring, func(d *transactionDraft) bool { return d.known }, "Please enter a valid interval."},

	{FieldDaysInterval, (*transactionDraft).needsDays, func(d *transactionDraft) bool { return d.daysOK }, "Please enter a valid number."},
	{FieldDaysInterval, (*transactionDraft).needsDays, func(d *transactionDraft) bool { return d.days > 0 }, "Please enter a number greater than 0."},

	{FieldType, nil, func(d *transactionDraft) bool { return strings.TrimSpace(d.form.Type) != "" }, "Transaction type is required."},
}

// ValidateTransaction checks a submitted form and, when every rule passes,
// returns the normalized Transaction. Fields that do not apply to the chosen
// shape (end date and interval on a one-off, day count on a fixed cadence)
// are ignored and cleared in the result.
func ValidateTransaction(form TransactionForm) TransactionResult {
	d := newTransactionDraft(form)
	if errs := evaluate(d, transactionRules); len(errs) > 0 {
		return invalid[Transaction](errs)
	}
	return valid(d.normalize())
}

func (d *transactionDraft) normalize() Transaction {
	id := d.form.ID
	if id == 0 {
		id = NewTransactionID
	}
	t := Transaction{
		ID:          id,
		Amount:      d.amount,
		Incoming:    d.form.Incoming,
		Description: d.description(),
		StartDate:   d.start,
		Recurring:   d.form.Recurring,
		Type:        strings.TrimSpace(d.form.Type),
	}
	if t.Recurring {
		t.EndDate = d.end
		t.Interval = d.interval
		if d.needsDays() {
			t.DaysInterval = d.days
		}
	}
	return t
}
