package services

import (
	"context"
	"fmt"

	"fiscora/internal/backend"
	"fiscora/internal/core"
	applog "fiscora/internal/log"
)

// BudgetService gates every budget write behind form validation.
type BudgetService struct {
	store  backend.BudgetStore
	logger *applog.Logger
}

func NewBudgetService(store backend.BudgetStore, logger *applog.Logger) *BudgetService {
	return &BudgetService{store: store, logger: orDefault(logger, applog.ComponentBudget)}
}

func (s *BudgetService) List(ctx context.Context) ([]core.Budget, error) {
	budgets, err := s.store.ListBudgets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	if budgets == nil {
		budgets = []core.Budget{}
	}
	return budgets, nil
}

func (s *BudgetService) Get(ctx context.Context, id string) (core.Budget, error) {
	return s.store.GetBudget(ctx, id)
}

func (s *BudgetService) Create(ctx context.Context, form core.BudgetForm) (core.Budget, error) {
	res := core.ValidateBudget(form)
	b, ok := res.Value()
	if !ok {
		return core.Budget{}, res.Err()
	}
	saved, err := s.store.CreateBudget(ctx, b)
	if err != nil {
		return core.Budget{}, fmt.Errorf("create budget: %w", err)
	}
	s.logger.InfoContext(ctx, "Budget created",
		applog.FieldBudgetID, saved.ID,
		applog.FieldAmountCents, saved.Amount.Cents,
		applog.FieldOperation, applog.OpCreate)
	return saved, nil
}

func (s *BudgetService) Update(ctx context.Context, id string, form core.BudgetForm) (core.Budget, error) {
	form.ID = id
	res := core.ValidateBudget(form)
	b, ok := res.Value()
	if !ok {
		return core.Budget{}, res.Err()
	}
	saved, err := s.store.UpdateBudget(ctx, b)
	if err != nil {
		return core.Budget{}, fmt.Errorf("update budget %s: %w", id, err)
	}
	s.logger.InfoContext(ctx, "Budget updated", applog.FieldBudgetID, id, applog.FieldOperation, applog.OpUpdate)
	return saved, nil
}

func (s *BudgetService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteBudget(ctx, id); err != nil {
		return fmt.Errorf("delete budget %s: %w", id, err)
	}
	s.logger.InfoContext(ctx, "Budget deleted", applog.FieldBudgetID, id, applog.FieldOperation, applog.OpDelete)
	return nil
}

func (s *BudgetService) AddExpense(ctx context.Context, budgetID string, form core.BudgetExpenseForm) (core.BudgetExpense, error) {
	form.ID = 0
	form.BudgetID = budgetID
	res := core.ValidateBudgetExpense(form)
	e, ok := res.Value()
	if !ok {
		return core.BudgetExpense{}, res.Err()
	}
	saved, err := s.store.AddBudgetExpense(ctx, e)
	if err != nil {
		return core.BudgetExpense{}, fmt.Errorf("add expense to budget %s: %w", budgetID, err)
	}
	return saved, nil
}

func (s *BudgetService) UpdateExpense(ctx context.Context, budgetID string, id int64, form core.BudgetExpenseForm) (core.BudgetExpense, error) {
	form.ID = id
	form.BudgetID = budgetID
	res := core.ValidateBudgetExpense(form)
	e, ok := res.Value()
	if !ok {
		return core.BudgetExpense{}, res.Err()
	}
	saved, err := s.store.UpdateBudgetExpense(ctx, e)
	if err != nil {
		return core.BudgetExpense{}, fmt.Errorf("update budget expense %d: %w", id, err)
	}
	return saved, nil
}

func (s *BudgetService) DeleteExpense(ctx context.Context, budgetID string, id int64) error {
	if err := s.store.DeleteBudgetExpense(ctx, budgetID, id); err != nil {
		return fmt.Errorf("delete budget expense %d: %w", id, err)
	}
	return nil
}
