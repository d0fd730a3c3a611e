package core

import (
	"strings"
	"time"
	"unicode/utf8"
)

// MaxBudgetDescriptionLength bounds a budget description, counted in runes.
const MaxBudgetDescriptionLength = 256

type (
	Budget struct {
		ID          string          `json:"id"`
		Name        string          `json:"name"`
		Description string          `json:"description"`
		Amount      Money           `json:"amount"`
		StartDate   Date            `json:"startDate"`
		EndDate     Date            `json:"endDate"`
		Created     time.Time       `json:"created"`
		Updated     time.Time       `json:"updated"`
		Expenses    []BudgetExpense `json:"expenses"`
	}

	BudgetExpense struct {
		ID              int64  `json:"id"`
		BudgetID        string `json:"budgetId"`
		Name            string `json:"name"`
		Description     string `json:"description"`
		AllocatedAmount Money  `json:"allocatedAmount"`
		CurrentAmount   Money  `json:"currentAmount"`
	}

	BudgetForm struct {
		ID          string
		Name        string
		Description string
		Amount      string
		StartDate   string
		EndDate     string
	}

	BudgetExpenseForm struct {
		ID              int64
		BudgetID        string
		Name            string
		Description     string
		AllocatedAmount string
		CurrentAmount   string
	}

	BudgetResult        = Result[Budget]
	BudgetExpenseResult = Result[BudgetExpense]
)

// Allocated sums the allocated amounts of every expense line.
func (b Budget) Allocated() Money {
	var total Money
	for _, e := range b.Expenses {
		total = total.Add(e.AllocatedAmount)
	}
	return total
}

// Spent sums the current amounts of every expense line.
func (b Budget) Spent() Money {
	var total Money
	for _, e := range b.Expenses {
		total = total.Add(e.CurrentAmount)
	}
	return total
}

type budgetDraft struct {
	form     BudgetForm
	amount   Money
	amountOK bool
	start    Date
	startOK  bool
	end      Date
	endOK    bool
}

var budgetRules = []rule[*budgetDraft]{
	{FieldName, nil, func(d *budgetDraft) bool { return strings.TrimSpace(d.form.Name) != "" }, "Please enter a name."},
	{FieldDescription, nil, func(d *budgetDraft) bool { return strings.TrimSpace(d.form.Description) != "" }, "Please enter a description."},
	{FieldDescription, nil, func(d *budgetDraft) bool {
		return utf8.RuneCountInString(strings.TrimSpace(d.form.Description)) <= MaxBudgetDescriptionLength
	}, "Description cannot be more than 256 characters."},
	{FieldAmount, nil, func(d *budgetDraft) bool { return d.amountOK }, "Please enter a valid amount."},
	{FieldAmount, nil, func(d *budgetDraft) bool { return d.amount.Cents > 0 }, "Amount must be greater than 0."},
	{FieldStartDate, nil, func(d *budgetDraft) bool { return d.startOK }, "Please enter a valid start date."},
	{FieldEndDate, nil, func(d *budgetDraft) bool { return d.endOK }, "Please enter a valid end date."},
	{FieldEndDate, nil, func(d *budgetDraft) bool {
		return !d.startOK || !d.end.Before(d.start.Time)
	}, "End date cannot be before the start date."},
}

// ValidateBudget checks a submitted budget form.
func ValidateBudget(form BudgetForm) BudgetResult {
	d := &budgetDraft{form: form}
	if m, err := ParseAmount(form.Amount); err == nil {
		d.amount, d.amountOK = m, true
	}
	if dt, err := ParseDate(form.StartDate); err == nil && dt.Validate() == nil {
		d.start, d.startOK = dt, true
	}
	if dt, err := ParseDate(form.EndDate); err == nil && dt.Validate() == nil {
		d.end, d.endOK = dt, true
	}
	if errs := evaluate(d, budgetRules); len(errs) > 0 {
		return invalid[Budget](errs)
	}
	return valid(Budget{
		ID:          strings.TrimSpace(form.ID),
		Name:        strings.TrimSpace(form.Name),
		Description: strings.TrimSpace(form.Description),
		Amount:      d.amount,
		StartDate:   d.start,
		EndDate:     d.end,
	})
}

type budgetExpenseDraft struct {
	form        BudgetExpenseForm
	allocated   Money
	allocatedOK bool
	current     Money
	currentOK   bool
}

var budgetExpenseRules = []rule[*budgetExpenseDraft]{
	{FieldName, nil, func(d *budgetExpenseDraft) bool { return strings.TrimSpace(d.form.Name) != "" }, "Please enter a name."},
	{FieldDescription, nil, func(d *budgetExpenseDraft) bool {
		return utf8.RuneCountInString(strings.TrimSpace(d.form.Description)) <= MaxBudgetDescriptionLength
	}, "Description cannot be more than 256 characters."},
	{FieldAllocatedAmount, nil, func(d *budgetExpenseDraft) bool { return d.allocatedOK }, "Please enter a valid amount."},
	{FieldAllocatedAmount, nil, func(d *budgetExpenseDraft) bool { return d.allocated.Cents > 0 }, "Amount must be greater than 0."},
	{FieldCurrentAmount, nil, func(d *budgetExpenseDraft) bool { return d.currentOK }, "Please enter a valid amount."},
	{FieldCurrentAmount, nil, func(d *budgetExpenseDraft) bool { return d.current.Cents >= 0 }, "Amount cannot be negative."},
}

// ValidateBudgetExpense checks a submitted expense line. An empty current
// amount means nothing has been spent yet.
func ValidateBudgetExpense(form BudgetExpenseForm) BudgetExpenseResult {
	d := &budgetExpenseDraft{form: form}
	if m, err := ParseAmount(form.AllocatedAmount); err == nil {
		d.allocated, d.allocatedOK = m, true
	}
	if strings.TrimSpace(form.CurrentAmount) == "" {
		d.currentOK = true
	} else if m, err := ParseAmount(form.CurrentAmount); err == nil {
		d.current, d.currentOK = m, true
	}
	if errs := evaluate(d, budgetExpenseRules); len(errs) > 0 {
		return invalid[BudgetExpense](errs)
	}
	return valid(BudgetExpense{
		ID:              form.ID,
		BudgetID:        strings.TrimSpace(form.BudgetID),
		Name:            strings.TrimSpace(form.Name),
		Description:     strings.TrimSpace(form.Description),
		AllocatedAmount: d.allocated,
		CurrentAmount:   d.current,
	})
}
