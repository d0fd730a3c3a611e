package core

import (
	"strings"
	"testing"
)

func TestValidateBudget(t *testing.T) {
	good := BudgetForm{
		Name:        "Holidays",
		Description: "Summer trip",
		Amount:      "1500",
		StartDate:   "2024-06-01",
		EndDate:     "2024-08-31",
	}
	b, ok := ValidateBudget(good).Value()
	if !ok {
		t.Fatal("expected valid budget")
	}
	if b.Amount.Cents != 150000 || b.EndDate.String() != "2024-08-31" {
		t.Errorf("unexpected budget %+v", b)
	}

	cases := []struct {
		mutate func(*BudgetForm)
		field  Field
		msg    string
	}{
		{func(f *BudgetForm) { f.Name = "" }, FieldName, "Please enter a name."},
		{func(f *BudgetForm) { f.Description = "" }, FieldDescription, "Please enter a description."},
		{func(f *BudgetForm) { f.Description = strings.Repeat("x", 257) }, FieldDescription, "Description cannot be more than 256 characters."},
		{func(f *BudgetForm) { f.Amount = "0" }, FieldAmount, "Amount must be greater than 0."},
		{func(f *BudgetForm) { f.Amount = "x" }, FieldAmount, "Please enter a valid amount."},
		{func(f *BudgetForm) { f.StartDate = "" }, FieldStartDate, "Please enter a valid start date."},
		{func(f *BudgetForm) { f.EndDate = "2024-05-01" }, FieldEndDate, "End date cannot be before the start date."},
	}
	for i, tc := range cases {
		form := good
		tc.mutate(&form)
		errs := ValidateBudget(form).FieldErrors()
		if errs[tc.field] != tc.msg {
			t.Fatalf("case %d: got %v, want %s=%q", i, errs, tc.field, tc.msg)
		}
	}
}

func TestValidateBudgetExpense(t *testing.T) {
	e, ok := ValidateBudgetExpense(BudgetExpenseForm{BudgetID: "b1", Name: "Flights", AllocatedAmount: "400"}).Value()
	if !ok {
		t.Fatal("expected valid expense")
	}
	if e.CurrentAmount.Cents != 0 || e.AllocatedAmount.Cents != 40000 {
		t.Errorf("unexpected expense %+v", e)
	}

	bads := []BudgetExpenseForm{
		{Name: "", AllocatedAmount: "1"},
		{Name: "a", AllocatedAmount: "0"},
		{Name: "a", AllocatedAmount: "1", CurrentAmount: "-1"},
		{Name: "a", AllocatedAmount: "1", CurrentAmount: "many"},
	}
	for i, f := range bads {
		if ValidateBudgetExpense(f).Valid() {
			t.Fatalf("case %d expected invalid", i)
		}
	}
}

func TestBudgetTotals(t *testing.T) {
	b := Budget{Expenses: []BudgetExpense{
		{AllocatedAmount: Money{Cents: 100}, CurrentAmount: Money{Cents: 40}},
		{AllocatedAmount: Money{Cents: 250}, CurrentAmount: Money{Cents: 10}},
	}}
	if b.Allocated().Cents != 350 || b.Spent().Cents != 50 {
		t.Fatalf("Allocated=%d Spent=%d", b.Allocated().Cents, b.Spent().Cents)
	}
}
