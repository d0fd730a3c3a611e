package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"fiscora/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "nested", "fiscora.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestRunMigrationsIsRepeatable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fiscora.db")
	first, err := RunMigrations(path)
	if err != nil {
		t.Fatal(err)
	}
	if first == 0 {
		t.Fatal("expected a schema version after migrating")
	}
	second, err := RunMigrations(path)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second != first {
		t.Errorf("version moved from %d to %d without new migrations", first, second)
	}
}

func TestTransactionsRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	gym := core.Transaction{
		Amount: core.Money{Cents: 3990}, Description: "Gym", Type: "Subscriptions",
		StartDate: core.NewDate(2024, 1, 31), Recurring: true, Interval: core.Monthly,
	}
	created, err := repo.CreateTransaction(ctx, gym)
	if err != nil {
		t.Fatal(err)
	}
	if created.ID <= 0 {
		t.Fatalf("expected generated id, got %d", created.ID)
	}

	got, err := repo.GetTransaction(ctx, created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.StartDate.String() != "2024-01-31" || !got.EndDate.IsZero() || got.Interval != core.Monthly || got.Amount.Cents != 3990 {
		t.Errorf("round trip = %+v", got)
	}

	got.EndDate = core.NewDate(2024, 6, 30)
	got.Description = "Gym (student)"
	if _, err := repo.UpdateTransaction(ctx, got); err != nil {
		t.Fatal(err)
	}
	again, _ := repo.GetTransaction(ctx, created.ID)
	if again.EndDate.String() != "2024-06-30" || again.Description != "Gym (student)" {
		t.Errorf("update not persisted: %+v", again)
	}

	if err := repo.DeleteTransaction(ctx, created.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.GetTransaction(ctx, created.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := repo.DeleteTransaction(ctx, created.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
	missing := again
	missing.ID = 999
	if _, err := repo.UpdateTransaction(ctx, missing); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound updating unknown id, got %v", err)
	}
}

func TestListTransactionsFilter(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	seed := []core.Transaction{
		{Amount: core.Money{Cents: 1000}, Description: "Lunch", Type: "Groceries", StartDate: core.NewDate(2024, 3, 12)},
		{Amount: core.Money{Cents: 250000}, Incoming: true, Description: "Salary", Type: "Salary",
			StartDate: core.NewDate(2023, 12, 27), Recurring: true, Interval: core.Monthly},
		{Amount: core.Money{Cents: 6000}, Description: "Quarterly water", Type: "Utilities",
			StartDate: core.NewDate(2024, 1, 15), Recurring: true, EndDate: core.NewDate(2024, 12, 31),
			Interval: core.Other, DaysInterval: 90},
		{Amount: core.Money{Cents: 9000}, Description: "Old insurance", Type: "Insurance",
			StartDate: core.NewDate(2022, 1, 1), Recurring: true, EndDate: core.NewDate(2023, 1, 1), Interval: core.Monthly},
	}
	for _, tx := range seed {
		if _, err := repo.CreateTransaction(ctx, tx); err != nil {
			t.Fatal(err)
		}
	}

	incoming := true
	tests := []struct {
		name   string
		filter core.TransactionFilter
		want   []string
	}{
		{"march", core.TransactionFilter{Period: core.MonthPeriod(2024, 3)}, []string{"Salary", "Lunch"}},
		// water falls on Jan 15 and Apr 14
		{"april", core.TransactionFilter{Period: core.MonthPeriod(2024, 4)}, []string{"Salary", "Quarterly water"}},
		{"march incoming", core.TransactionFilter{Period: core.MonthPeriod(2024, 3), Incoming: &incoming}, []string{"Salary"}},
		{"whole 2022", core.TransactionFilter{Period: core.YearPeriod(2022)}, []string{"Old insurance"}},
		{"everything", core.TransactionFilter{}, []string{"Old insurance", "Salary", "Quarterly water", "Lunch"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.ListTransactions(ctx, tt.filter)
			if err != nil {
				t.Fatal(err)
			}
			var names []string
			for _, tx := range got {
				names = append(names, tx.Description)
			}
			if len(names) != len(tt.want) {
				t.Fatalf("got %v, want %v", names, tt.want)
			}
			for i := range names {
				if names[i] != tt.want[i] {
					t.Fatalf("got %v, want %v", names, tt.want)
				}
			}
		})
	}
}

func TestCreateTransactionRejectsInvalid(t *testing.T) {
	repo := newTestRepo(t)
	bad := core.Transaction{Amount: core.Money{Cents: 100}, Description: "x", Type: "Other",
		StartDate: core.NewDate(2024, 1, 1), Recurring: true, Interval: core.Other}
	if _, err := repo.CreateTransaction(context.Background(), bad); err == nil {
		t.Fatal("expected error for Other interval without days")
	}
}

func TestBudgets(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	b, err := repo.CreateBudget(ctx, core.Budget{Name: "Wedding", Description: "Summer", Amount: core.Money{Cents: 1500000},
		StartDate: core.NewDate(2024, 1, 1), EndDate: core.NewDate(2024, 7, 1)})
	if err != nil {
		t.Fatal(err)
	}
	venue, err := repo.AddBudgetExpense(ctx, core.BudgetExpense{BudgetID: b.ID, Name: "Venue", AllocatedAmount: core.Money{Cents: 800000}})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := repo.AddBudgetExpense(ctx, core.BudgetExpense{BudgetID: b.ID, Name: "Flowers", AllocatedAmount: core.Money{Cents: 50000},
		CurrentAmount: core.Money{Cents: 20000}}); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.AddBudgetExpense(ctx, core.BudgetExpense{BudgetID: "nope", Name: "x"}); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown budget, got %v", err)
	}

	venue.CurrentAmount = core.Money{Cents: 400000}
	if _, err := repo.UpdateBudgetExpense(ctx, venue); err != nil {
		t.Fatal(err)
	}

	got, err := repo.GetBudget(ctx, b.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Expenses) != 2 || got.Allocated().Cents != 850000 || got.Spent().Cents != 420000 {
		t.Errorf("unexpected budget %+v", got)
	}
	if got.Created.IsZero() || got.StartDate.String() != "2024-01-01" {
		t.Errorf("timestamps or dates lost: %+v", got)
	}

	got.Name = "Wedding 2024"
	if updated, err := repo.UpdateBudget(ctx, got); err != nil || updated.Name != "Wedding 2024" || len(updated.Expenses) != 2 {
		t.Fatalf("update = %+v err=%v", updated, err)
	}

	list, err := repo.ListBudgets(ctx)
	if err != nil || len(list) != 1 || len(list[0].Expenses) != 2 {
		t.Fatalf("list = %+v err=%v", list, err)
	}

	if err := repo.DeleteBudgetExpense(ctx, b.ID, venue.ID); err != nil {
		t.Fatal(err)
	}
	if err := repo.DeleteBudgetExpense(ctx, b.ID, venue.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := repo.DeleteBudget(ctx, b.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.GetBudget(ctx, b.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCatalogsSeeded(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	income, err := repo.IncomeTypes(ctx)
	if err != nil || len(income) != len(core.IncomeTypes) || income[0] != core.IncomeTypes[0] {
		t.Fatalf("income types = %v err=%v", income, err)
	}
	expense, _ := repo.ExpenseTypes(ctx)
	if len(expense) != len(core.ExpenseTypes) {
		t.Fatalf("expense types = %v", expense)
	}
	if err := repo.Ping(ctx); err != nil {
		t.Fatal(err)
	}
}
