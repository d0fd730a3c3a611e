package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"fiscora/internal/core"

	_ "modernc.org/sqlite"
)

const timestampLayout = time.RFC3339Nano

type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	repo := &SQLiteRepository{db: db, now: time.Now}
	if err := repo.seedTypes(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("seed transaction types: %w", err)
	}
	return repo, nil
}

// dsn enables foreign keys so budget expenses follow their budget on delete
func dsn(dbPath string) string {
	return "file:" + dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) seedTypes(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	insert := `INSERT OR IGNORE INTO transaction_types (name, incoming, position) VALUES (?, ?, ?)`
	for i, name := range core.IncomeTypes {
		if _, err := tx.ExecContext(ctx, insert, name, true, i); err != nil {
			return err
		}
	}
	for i, name := range core.ExpenseTypes {
		if _, err := tx.ExecContext(ctx, insert, name, false, i); err != nil {
			return err
		}
	}
	return tx.Commit()
}

const transactionColumns = `id, amount_cents, incoming, description, type, start_date, recurring, end_date, repeat_interval, days_interval`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t            core.Transaction
		start        string
		end          sql.NullString
		interval     sql.NullString
		daysInterval sql.NullInt64
	)
	if err := row.Scan(&t.ID, &t.Amount.Cents, &t.Incoming, &t.Description, &t.Type,
		&start, &t.Recurring, &end, &interval, &daysInterval); err != nil {
		return core.Transaction{}, err
	}

	var err error
	if t.StartDate, err = core.ParseDate(start); err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %d start date: %w", t.ID, err)
	}
	if end.Valid && end.String != "" {
		if t.EndDate, err = core.ParseDate(end.String); err != nil {
			return core.Transaction{}, fmt.Errorf("transaction %d end date: %w", t.ID, err)
		}
	}
	t.Interval = core.Interval(interval.String)
	t.DaysInterval = int(daysInterval.Int64)
	return t, nil
}

func transactionArgs(t core.Transaction) []any {
	var end, interval, days any
	if t.Recurring {
		if !t.EndDate.IsZero() {
			end = t.EndDate.String()
		}
		interval = string(t.Interval)
		if t.DaysInterval > 0 {
			days = t.DaysInterval
		}
	}
	return []any{t.Amount.Cents, t.Incoming, t.Description, t.Type, t.StartDate.String(), t.Recurring, end, interval, days}
}

// ListTransactions narrows candidates in SQL by date range and direction,
// then keeps those with an occurrence inside the period.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, filter core.TransactionFilter) ([]core.Transaction, error) {
	var (
		where []string
		args  []any
	)
	if filter.Period.Year != 0 {
		start, end := filter.Period.Start().String(), filter.Period.End().String()
		where = append(where, `start_date <= ?`,
			`((recurring = 0 AND start_date >= ?) OR (recurring = 1 AND (end_date IS NULL OR end_date >= ?)))`)
		args = append(args, end, start, start)
	}
	if filter.Incoming != nil {
		where = append(where, `incoming = ?`)
		args = append(args, *filter.Incoming)
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}
	query += ` ORDER BY start_date, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		if filter.Matches(t, core.Date{}) {
			out = append(out, t)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("transaction %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %d: %w", id, err)
	}
	return t, nil
}

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (amount_cents, incoming, description, type, start_date, recurring, end_date, repeat_interval, days_interval)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`, transactionArgs(t)...)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	if t.ID, err = res.LastInsertId(); err != nil {
		return core.Transaction{}, fmt.Errorf("read transaction id: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"transaction_id", t.ID,
		"amount_cents", t.Amount.Cents,
		"incoming", t.Incoming,
		"recurring", t.Recurring,
		"start_date", t.StartDate.String())

	return t, nil
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	args := append(transactionArgs(t), r.now().UTC().Format(timestampLayout), t.ID)
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET amount_cents = ?, incoming = ?, description = ?, type = ?, start_date = ?,
		 recurring = ?, end_date = ?, repeat_interval = ?, days_interval = ?, updated_at = ? WHERE id = ?`, args...)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction %d: %w", t.ID, err)
	}
	if err := expectRow(res, "transaction", t.ID); err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}
	return expectRow(res, "transaction", id)
}

func expectRow(res sql.Result, what string, id any) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s %v rows affected: %w", what, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %v: %w", what, id, core.ErrNotFound)
	}
	return nil
}

const budgetColumns = `id, name, description, amount_cents, start_date, end_date, created_at, updated_at`

func scanBudget(row rowScanner) (core.Budget, error) {
	var (
		b                core.Budget
		start, end       string
		created, updated string
	)
	if err := row.Scan(&b.ID, &b.Name, &b.Description, &b.Amount.Cents, &start, &end, &created, &updated); err != nil {
		return core.Budget{}, err
	}
	var err error
	if b.StartDate, err = core.ParseDate(start); err != nil {
		return core.Budget{}, fmt.Errorf("budget %s start date: %w", b.ID, err)
	}
	if b.EndDate, err = core.ParseDate(end); err != nil {
		return core.Budget{}, fmt.Errorf("budget %s end date: %w", b.ID, err)
	}
	b.Created, _ = time.Parse(timestampLayout, created)
	b.Updated, _ = time.Parse(timestampLayout, updated)
	return b, nil
}

func (r *SQLiteRepository) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+budgetColumns+` FROM budgets ORDER BY start_date, id`)
	if err != nil {
		return nil, fmt.Errorf("query budgets: %w", err)
	}
	var budgets []core.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		budgets = append(budgets, b)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate budgets: %w", err)
	}

	expenses, err := r.budgetExpenses(ctx, "")
	if err != nil {
		return nil, err
	}
	for i := range budgets {
		budgets[i].Expenses = expenses[budgets[i].ID]
	}
	return budgets, nil
}

func (r *SQLiteRepository) GetBudget(ctx context.Context, id string) (core.Budget, error) {
	b, err := scanBudget(r.db.QueryRowContext(ctx, `SELECT `+budgetColumns+` FROM budgets WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, fmt.Errorf("budget %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget %s: %w", id, err)
	}
	expenses, err := r.budgetExpenses(ctx, id)
	if err != nil {
		return core.Budget{}, err
	}
	b.Expenses = expenses[id]
	return b, nil
}

// budgetExpenses groups expense lines by budget; an empty id loads all.
func (r *SQLiteRepository) budgetExpenses(ctx context.Context, budgetID string) (map[string][]core.BudgetExpense, error) {
	query := `SELECT id, budget_id, name, description, allocated_amount_cents, current_amount_cents FROM budget_expenses`
	var args []any
	if budgetID != "" {
		query += ` WHERE budget_id = ?`
		args = append(args, budgetID)
	}
	query += ` ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query budget expenses: %w", err)
	}
	defer rows.Close()

	out := map[string][]core.BudgetExpense{}
	for rows.Next() {
		var e core.BudgetExpense
		if err := rows.Scan(&e.ID, &e.BudgetID, &e.Name, &e.Description, &e.AllocatedAmount.Cents, &e.CurrentAmount.Cents); err != nil {
			return nil, fmt.Errorf("scan budget expense: %w", err)
		}
		out[e.BudgetID] = append(out[e.BudgetID], e)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	b.ID = uuid.NewString()
	b.Created = r.now().UTC()
	b.Updated = b.Created
	b.Expenses = nil
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO budgets (`+budgetColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.Name, b.Description, b.Amount.Cents, b.StartDate.String(), b.EndDate.String(),
		b.Created.Format(timestampLayout), b.Updated.Format(timestampLayout))
	if err != nil {
		return core.Budget{}, fmt.Errorf("insert budget: %w", err)
	}
	return b, nil
}

func (r *SQLiteRepository) UpdateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE budgets SET name = ?, description = ?, amount_cents = ?, start_date = ?, end_date = ?, updated_at = ? WHERE id = ?`,
		b.Name, b.Description, b.Amount.Cents, b.StartDate.String(), b.EndDate.String(),
		r.now().UTC().Format(timestampLayout), b.ID)
	if err != nil {
		return core.Budget{}, fmt.Errorf("update budget %s: %w", b.ID, err)
	}
	if err := expectRow(res, "budget", b.ID); err != nil {
		return core.Budget{}, err
	}
	return r.GetBudget(ctx, b.ID)
}

func (r *SQLiteRepository) DeleteBudget(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM budgets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete budget %s: %w", id, err)
	}
	return expectRow(res, "budget", id)
}

// touchBudget bumps updated_at and reports ErrNotFound for unknown budgets
func (r *SQLiteRepository) touchBudget(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE budgets SET updated_at = ? WHERE id = ?`,
		r.now().UTC().Format(timestampLayout), id)
	if err != nil {
		return fmt.Errorf("touch budget %s: %w", id, err)
	}
	return expectRow(res, "budget", id)
}

func (r *SQLiteRepository) AddBudgetExpense(ctx context.Context, e core.BudgetExpense) (core.BudgetExpense, error) {
	if err := r.touchBudget(ctx, e.BudgetID); err != nil {
		return core.BudgetExpense{}, err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO budget_expenses (budget_id, name, description, allocated_amount_cents, current_amount_cents) VALUES (?, ?, ?, ?, ?)`,
		e.BudgetID, e.Name, e.Description, e.AllocatedAmount.Cents, e.CurrentAmount.Cents)
	if err != nil {
		return core.BudgetExpense{}, fmt.Errorf("insert budget expense: %w", err)
	}
	if e.ID, err = res.LastInsertId(); err != nil {
		return core.BudgetExpense{}, fmt.Errorf("read budget expense id: %w", err)
	}
	return e, nil
}

func (r *SQLiteRepository) UpdateBudgetExpense(ctx context.Context, e core.BudgetExpense) (core.BudgetExpense, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE budget_expenses SET name = ?, description = ?, allocated_amount_cents = ?, current_amount_cents = ?
		 WHERE id = ? AND budget_id = ?`,
		e.Name, e.Description, e.AllocatedAmount.Cents, e.CurrentAmount.Cents, e.ID, e.BudgetID)
	if err != nil {
		return core.BudgetExpense{}, fmt.Errorf("update budget expense %d: %w", e.ID, err)
	}
	if err := expectRow(res, "budget expense", e.ID); err != nil {
		return core.BudgetExpense{}, err
	}
	if err := r.touchBudget(ctx, e.BudgetID); err != nil {
		return core.BudgetExpense{}, err
	}
	return e, nil
}

func (r *SQLiteRepository) DeleteBudgetExpense(ctx context.Context, budgetID string, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM budget_expenses WHERE id = ? AND budget_id = ?`, id, budgetID)
	if err != nil {
		return fmt.Errorf("delete budget expense %d: %w", id, err)
	}
	if err := expectRow(res, "budget expense", id); err != nil {
		return err
	}
	return r.touchBudget(ctx, budgetID)
}

func (r *SQLiteRepository) Intervals(context.Context) ([]string, error) {
	var out []string
	for _, i := range core.Intervals() {
		out = append(out, string(i))
	}
	return out, nil
}

func (r *SQLiteRepository) IncomeTypes(ctx context.Context) ([]string, error) {
	return r.types(ctx, true)
}

func (r *SQLiteRepository) ExpenseTypes(ctx context.Context) ([]string, error) {
	return r.types(ctx, false)
}

func (r *SQLiteRepository) types(ctx context.Context, incoming bool) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name FROM transaction_types WHERE incoming = ? ORDER BY position, name`, incoming)
	if err != nil {
		return nil, fmt.Errorf("query transaction types: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan transaction type: %w", err)
		}
		out = append(out, name)
	}
	return out, rows.Err()
}
