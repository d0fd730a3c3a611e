package backend

import (
	"context"
	"time"

	"fiscora/internal/amqp"
	"fiscora/internal/core"
)

// TransactionStore persists transactions. Implementations return
// core.ErrNotFound for unknown IDs and core.ErrUnauthorized when the
// caller's credentials are rejected.
type TransactionStore interface {
	// ListTransactions returns transactions passing filter; a period filter
	// keeps those with at least one occurrence inside the period.
	ListTransactions(ctx context.Context, filter core.TransactionFilter) ([]core.Transaction, error)
	GetTransaction(ctx context.Context, id int64) (core.Transaction, error)
	CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error)
	UpdateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error)
	DeleteTransaction(ctx context.Context, id int64) error
}

// BudgetStore persists budgets and their expense lines.
type BudgetStore interface {
	ListBudgets(ctx context.Context) ([]core.Budget, error)
	GetBudget(ctx context.Context, id string) (core.Budget, error)
	CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error)
	UpdateBudget(ctx context.Context, b core.Budget) (core.Budget, error)
	DeleteBudget(ctx context.Context, id string) error
	AddBudgetExpense(ctx context.Context, e core.BudgetExpense) (core.BudgetExpense, error)
	UpdateBudgetExpense(ctx context.Context, e core.BudgetExpense) (core.BudgetExpense, error)
	DeleteBudgetExpense(ctx context.Context, budgetID string, id int64) error
}

// CatalogReader lists the values offered in transaction forms.
type CatalogReader interface {
	Intervals(ctx context.Context) ([]string, error)
	IncomeTypes(ctx context.Context) ([]string, error)
	ExpenseTypes(ctx context.Context) ([]string, error)
}

// Pinger is implemented by backends that can report readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Backend represents a unified backend interface that provides all necessary operations
type Backend interface {
	TransactionStore
	BudgetStore
	CatalogReader
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the backend instance, the optional event
// publisher and a cleanup function for both.
type BackendResult struct {
	Backend Backend
	// Events is nil when no broker is configured.
	Events  *amqp.Client
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Remote API specific
	APIURL     string
	APITimeout time.Duration

	// Optional event publishing
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Memory backend seed directory
	DataDirectory string

	// CatalogCacheTTL enables catalog caching when positive
	CatalogCacheTTL time.Duration
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	APIBackend    BackendType = "api"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, APIBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
