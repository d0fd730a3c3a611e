package memory

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"fiscora/internal/core"
)

// Store keeps everything in process memory. It backs local development and
// tests; nothing survives a restart.
type Store struct {
	mu           sync.RWMutex
	incomeTypes  []string
	expenseTypes []string
	nextTxID     int64
	nextExpID    int64
	txs          map[int64]core.Transaction
	budgets      map[string]core.Budget
	now          func() time.Time
}

func New(incomeTypes, expenseTypes []string) *Store {
	return &Store{
		incomeTypes:  dedupe(incomeTypes),
		expenseTypes: dedupe(expenseTypes),
		nextTxID:     1,
		nextExpID:    1,
		txs:          make(map[int64]core.Transaction),
		budgets:      make(map[string]core.Budget),
		now:          time.Now,
	}
}

// NewFromFiles seeds catalogs from seed_income_types.txt and
// seed_expense_types.txt under base, falling back to the built-in lists.
func NewFromFiles(base string) *Store {
	income := readLines(filepath.Join(base, "seed_income_types.txt"))
	expense := readLines(filepath.Join(base, "seed_expense_types.txt"))
	if len(income) == 0 {
		income = core.IncomeTypes
	}
	if len(expense) == 0 {
		expense = core.ExpenseTypes
	}
	return New(income, expense)
}

func (s *Store) ListTransactions(_ context.Context, filter core.TransactionFilter) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Transaction, 0, len(s.txs))
	for _, tx := range s.txs {
		if filter.Matches(tx, core.Date{}) {
			out = append(out, tx)
		}
	}
	sortTransactions(out)
	return out, nil
}

func (s *Store) GetTransaction(_ context.Context, id int64) (core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tx, ok := s.txs[id]
	if !ok {
		return core.Transaction{}, fmt.Errorf("transaction %d: %w", id, core.ErrNotFound)
	}
	return tx, nil
}

func (s *Store) CreateTransaction(_ context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tx.ID = s.nextTxID
	s.nextTxID++
	s.txs[tx.ID] = tx
	return tx, nil
}

func (s *Store) UpdateTransaction(_ context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.txs[tx.ID]; !ok {
		return core.Transaction{}, fmt.Errorf("transaction %d: %w", tx.ID, core.ErrNotFound)
	}
	s.txs[tx.ID] = tx
	return tx, nil
}

func (s *Store) DeleteTransaction(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.txs[id]; !ok {
		return fmt.Errorf("transaction %d: %w", id, core.ErrNotFound)
	}
	delete(s.txs, id)
	return nil
}

func (s *Store) ListBudgets(_ context.Context) ([]core.Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Budget, 0, len(s.budgets))
	for _, b := range s.budgets {
		out = append(out, cloneBudget(b))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartDate.Equal(out[j].StartDate.Time) {
			return out[i].StartDate.Before(out[j].StartDate.Time)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) GetBudget(_ context.Context, id string) (core.Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.budgets[id]
	if !ok {
		return core.Budget{}, fmt.Errorf("budget %s: %w", id, core.ErrNotFound)
	}
	return cloneBudget(b), nil
}

func (s *Store) CreateBudget(_ context.Context, b core.Budget) (core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b.ID = uuid.NewString()
	b.Created = s.now().UTC()
	b.Updated = b.Created
	b.Expenses = nil
	s.budgets[b.ID] = b
	return cloneBudget(b), nil
}

func (s *Store) UpdateBudget(_ context.Context, b core.Budget) (core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.budgets[b.ID]
	if !ok {
		return core.Budget{}, fmt.Errorf("budget %s: %w", b.ID, core.ErrNotFound)
	}
	cur.Name = b.Name
	cur.Description = b.Description
	cur.Amount = b.Amount
	cur.StartDate = b.StartDate
	cur.EndDate = b.EndDate
	cur.Updated = s.now().UTC()
	s.budgets[b.ID] = cur
	return cloneBudget(cur), nil
}

func (s *Store) DeleteBudget(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.budgets[id]; !ok {
		return fmt.Errorf("budget %s: %w", id, core.ErrNotFound)
	}
	delete(s.budgets, id)
	return nil
}

func (s *Store) AddBudgetExpense(_ context.Context, e core.BudgetExpense) (core.BudgetExpense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.budgets[e.BudgetID]
	if !ok {
		return core.BudgetExpense{}, fmt.Errorf("budget %s: %w", e.BudgetID, core.ErrNotFound)
	}
	e.ID = s.nextExpID
	s.nextExpID++
	b.Expenses = append(append([]core.BudgetExpense(nil), b.Expenses...), e)
	b.Updated = s.now().UTC()
	s.budgets[b.ID] = b
	return e, nil
}

func (s *Store) UpdateBudgetExpense(_ context.Context, e core.BudgetExpense) (core.BudgetExpense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.budgets[e.BudgetID]
	if !ok {
		return core.BudgetExpense{}, fmt.Errorf("budget %s: %w", e.BudgetID, core.ErrNotFound)
	}
	exps := append([]core.BudgetExpense(nil), b.Expenses...)
	for i := range exps {
		if exps[i].ID == e.ID {
			exps[i] = e
			b.Expenses = exps
			b.Updated = s.now().UTC()
			s.budgets[b.ID] = b
			return e, nil
		}
	}
	return core.BudgetExpense{}, fmt.Errorf("budget expense %d: %w", e.ID, core.ErrNotFound)
}

func (s *Store) DeleteBudgetExpense(_ context.Context, budgetID string, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.budgets[budgetID]
	if !ok {
		return fmt.Errorf("budget %s: %w", budgetID, core.ErrNotFound)
	}
	exps := make([]core.BudgetExpense, 0, len(b.Expenses))
	found := false
	for _, e := range b.Expenses {
		if e.ID == id {
			found = true
			continue
		}
		exps = append(exps, e)
	}
	if !found {
		return fmt.Errorf("budget expense %d: %w", id, core.ErrNotFound)
	}
	b.Expenses = exps
	b.Updated = s.now().UTC()
	s.budgets[b.ID] = b
	return nil
}

func (s *Store) Intervals(_ context.Context) ([]string, error) {
	var out []string
	for _, i := range core.Intervals() {
		out = append(out, string(i))
	}
	return out, nil
}

func (s *Store) IncomeTypes(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.incomeTypes...), nil
}

func (s *Store) ExpenseTypes(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.expenseTypes...), nil
}

func (s *Store) Ping(context.Context) error { return nil }

func sortTransactions(txs []core.Transaction) {
	sort.Slice(txs, func(i, j int) bool {
		if !txs[i].StartDate.Equal(txs[j].StartDate.Time) {
			return txs[i].StartDate.Before(txs[j].StartDate.Time)
		}
		return txs[i].ID < txs[j].ID
	})
}

func cloneBudget(b core.Budget) core.Budget {
	b.Expenses = append([]core.BudgetExpense(nil), b.Expenses...)
	return b
}

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return dedupe(out)
}

// dedupe drops blanks and repeats, keeping first-seen order.
func dedupe(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
