package core

import (
	"errors"
	"strings"
	"testing"
)

func validOneOff() TransactionForm {
	return TransactionForm{
		Amount:      "42.50",
		Description: "Groceries run",
		StartDate:   "2024-05-03",
		Type:        "Groceries",
	}
}

func validRecurring() TransactionForm {
	return TransactionForm{
		Amount:      "1200",
		Incoming:    true,
		Description: "Salary",
		StartDate:   "2024-01-31",
		Recurring:   true,
		EndDate:     "2024-12-31",
		Interval:    "monthly",
		Type:        "Salary",
	}
}

func TestValidateTransactionValid(t *testing.T) {
	res := ValidateTransaction(validOneOff())
	if !res.Valid() {
		t.Fatalf("expected valid, got %v", res.Err())
	}
	tx, ok := res.Transaction()
	if !ok {
		t.Fatal("Transaction() not ok on valid result")
	}
	if tx.ID != NewTransactionID {
		t.Errorf("ID = %d, want new sentinel", tx.ID)
	}
	if tx.Amount.Cents != 4250 || tx.StartDate.String() != "2024-05-03" || tx.Recurring {
		t.Errorf("unexpected transaction %+v", tx)
	}
	if len(res.FieldErrors()) != 0 || res.Err() != nil {
		t.Errorf("valid result carries errors")
	}

	res = ValidateTransaction(validRecurring())
	tx, ok = res.Transaction()
	if !ok {
		t.Fatalf("expected valid recurring, got %v", res.Err())
	}
	if tx.Interval != Monthly || tx.EndDate.String() != "2024-12-31" || !tx.Incoming {
		t.Errorf("unexpected recurring transaction %+v", tx)
	}
}

func TestValidateTransactionFieldErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*TransactionForm)
		field  Field
		msg    string
	}{
		{"zero amount", func(f *TransactionForm) { f.Amount = "0" }, FieldAmount, "Amount cannot be 0."},
		{"missing amount", func(f *TransactionForm) { f.Amount = "" }, FieldAmount, "Please enter an amount."},
		{"non-numeric amount", func(f *TransactionForm) { f.Amount = "lots" }, FieldAmount, "Please enter a valid amount."},
		{"huge exponent", func(f *TransactionForm) { f.Amount = "1e2000000000" }, FieldAmount, "Please enter a valid amount."},
		{"tiny exponent", func(f *TransactionForm) { f.Amount = "1e-2000000000" }, FieldAmount, "Please enter a valid amount."},
		{"negative amount", func(f *TransactionForm) { f.Amount = "-5" }, FieldAmount, "Amount must be positive, mark the transaction as incoming instead."},
		{"blank description", func(f *TransactionForm) { f.Description = "   " }, FieldDescription, "Please enter a description."},
		{"long description", func(f *TransactionForm) { f.Description = strings.Repeat("é", 513) }, FieldDescription, "Description cannot be more than 512 characters."},
		{"bad date", func(f *TransactionForm) { f.StartDate = "yesterday" }, FieldStartDate, "Please enter a valid date."},
		{"missing type", func(f *TransactionForm) { f.Type = "" }, FieldType, "Transaction type is required."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validOneOff()
			tt.mutate(&form)
			res := ValidateTransaction(form)
			if res.Valid() {
				t.Fatal("expected invalid")
			}
			if _, ok := res.Transaction(); ok {
				t.Fatal("invalid result exposed a transaction")
			}
			errs := res.FieldErrors()
			if len(errs) != 1 || errs[tt.field] != tt.msg {
				t.Errorf("FieldErrors() = %v, want %s=%q", errs, tt.field, tt.msg)
			}
		})
	}
}

func TestValidateTransactionRecurringRules(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*TransactionForm)
		want   FieldErrors
	}{
		{"bad start", func(f *TransactionForm) { f.StartDate = "" },
			FieldErrors{FieldStartDate: "Please enter a valid start date."}},
		{"bad end", func(f *TransactionForm) { f.EndDate = "2024-13-01" },
			FieldErrors{FieldEndDate: "Please enter a valid end date."}},
		{"end before start", func(f *TransactionForm) { f.EndDate = "2023-12-31" },
			FieldErrors{FieldEndDate: "End date cannot be before the start date."}},
		{"no interval", func(f *TransactionForm) { f.Interval = "" },
			FieldErrors{FieldInterval: "Please enter a valid interval."}},
		{"unknown interval", func(f *TransactionForm) { f.Interval = "Fortnightly" },
			FieldErrors{FieldInterval: "Please enter a valid interval."}},
		{"other without days", func(f *TransactionForm) { f.Interval = "Other" },
			FieldErrors{FieldDaysInterval: "Please enter a valid number."}},
		{"other with zero days", func(f *TransactionForm) { f.Interval = "Other"; f.DaysInterval = "0" },
			FieldErrors{FieldDaysInterval: "Please enter a number greater than 0."}},
		{"several fields at once", func(f *TransactionForm) { f.Amount = "0"; f.Interval = ""; f.Type = "" },
			FieldErrors{FieldAmount: "Amount cannot be 0.", FieldInterval: "Please enter a valid interval.", FieldType: "Transaction type is required."}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validRecurring()
			tt.mutate(&form)
			res := ValidateTransaction(form)
			if res.Valid() {
				t.Fatal("expected invalid")
			}
			got := res.FieldErrors()
			if len(got) != len(tt.want) {
				t.Fatalf("FieldErrors() = %v, want %v", got, tt.want)
			}
			for f, msg := range tt.want {
				if got[f] != msg {
					t.Errorf("%s: got %q, want %q", f, got[f], msg)
				}
			}
		})
	}
}

func TestValidateTransactionIgnoresInapplicableFields(t *testing.T) {
	form := validOneOff()
	form.EndDate = "garbage"
	form.Interval = "nope"
	form.DaysInterval = "-3"
	tx, ok := ValidateTransaction(form).Transaction()
	if !ok {
		t.Fatal("one-off must ignore recurrence fields")
	}
	if !tx.EndDate.IsZero() || tx.Interval != "" || tx.DaysInterval != 0 {
		t.Errorf("recurrence fields not cleared: %+v", tx)
	}

	form = validRecurring()
	form.DaysInterval = "abc"
	tx, ok = ValidateTransaction(form).Transaction()
	if !ok {
		t.Fatal("fixed cadence must ignore daysInterval")
	}
	if tx.DaysInterval != 0 {
		t.Errorf("DaysInterval = %d, want 0", tx.DaysInterval)
	}
}

func TestValidationErrorsOrder(t *testing.T) {
	form := TransactionForm{}
	err := ValidateTransaction(form).Err()
	var ve ValidationErrors
	if !errors.As(err, &ve) {
		t.Fatalf("Err() = %T, want ValidationErrors", err)
	}
	want := []Field{FieldAmount, FieldDescription, FieldStartDate, FieldType}
	if len(ve) != len(want) {
		t.Fatalf("got %v", ve)
	}
	for i, f := range want {
		if ve[i].Field != f {
			t.Errorf("error %d on %s, want %s", i, ve[i].Field, f)
		}
	}
}

func TestZeroResultIsInvalid(t *testing.T) {
	var r TransactionResult
	if r.Valid() {
		t.Fatal("zero result must not be valid")
	}
}
