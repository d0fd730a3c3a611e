package services

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"fiscora/internal/backend"
	"fiscora/internal/core"
)

// Dashboard is everything the overview screen shows for one month.
type Dashboard struct {
	Year         int                `json:"year"`
	Month        int                `json:"month"`
	Summary      core.PeriodSummary `json:"summary"`
	YearSummary  core.YearSummary   `json:"yearSummary"`
	YearTotal    core.PeriodSummary `json:"yearTotal"`
	IncomeTypes  core.TypeBreakdown `json:"incomeByType"`
	ExpenseTypes core.TypeBreakdown `json:"expenseByType"`
	Recent       []core.Transaction `json:"recent"`
	Catalogs     Catalogs           `json:"catalogs"`
}

type Catalogs struct {
	Intervals    []string `json:"intervals"`
	IncomeTypes  []string `json:"incomeTypes"`
	ExpenseTypes []string `json:"expenseTypes"`
}

type DashboardService struct {
	store       backend.Backend
	summaries   *SummaryService
	recentLimit int
}

func NewDashboardService(store backend.Backend, summaries *SummaryService, recentLimit int) *DashboardService {
	return &DashboardService{store: store, summaries: summaries, recentLimit: recentLimit}
}

// Load reads the year's transactions and the three catalogs concurrently,
// then derives every figure from that single listing.
func (s *DashboardService) Load(ctx context.Context, year, month int) (*Dashboard, error) {
	period, err := monthPeriod(year, month)
	if err != nil {
		return nil, err
	}

	var (
		txs []core.Transaction
		cat Catalogs
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		txs, err = s.store.ListTransactions(gctx, core.TransactionFilter{Period: core.YearPeriod(year)})
		if err != nil {
			return fmt.Errorf("load transactions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		cat.Intervals, err = s.store.Intervals(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		cat.IncomeTypes, err = s.store.IncomeTypes(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		cat.ExpenseTypes, err = s.store.ExpenseTypes(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load dashboard: %w", err)
	}

	agg := s.summaries.aggregator(ctx)
	yearSummary := agg.SummarizeYear(txs, year)

	return &Dashboard{
		Year:         year,
		Month:        month,
		Summary:      yearSummary[month],
		YearSummary:  yearSummary,
		YearTotal:    yearSummary.Total(),
		IncomeTypes:  agg.BreakdownByType(txs, period, true),
		ExpenseTypes: agg.BreakdownByType(txs, period, false),
		Recent:       s.recent(txs, period),
		Catalogs:     cat,
	}, nil
}

// recent lists the month's transactions, latest start first.
func (s *DashboardService) recent(txs []core.Transaction, p core.Period) []core.Transaction {
	filter := core.TransactionFilter{Period: p}
	out := []core.Transaction{}
	for _, tx := range txs {
		if tx.CheckSchedule() == nil && filter.Matches(tx, core.Date{}) {
			out = append(out, tx)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].StartDate.Equal(out[j].StartDate.Time) {
			return out[i].StartDate.After(out[j].StartDate.Time)
		}
		return out[i].ID > out[j].ID
	})
	if s.recentLimit > 0 && len(out) > s.recentLimit {
		out = out[:s.recentLimit]
	}
	return out
}
