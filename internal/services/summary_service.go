package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"fiscora/internal/backend"
	"fiscora/internal/core"
	applog "fiscora/internal/log"
)

var twelve = decimal.NewFromInt(12)

// SummaryService reads the transactions touching a period and folds them
// through an Aggregator. Results are computed on every call.
type SummaryService struct {
	store backend.TransactionStore
	log   *applog.StructuredLogger
	// horizonMonths caps open-ended series at now + horizonMonths; 0 disables.
	horizonMonths int
	now           func() time.Time
}

func NewSummaryService(store backend.TransactionStore, horizonMonths int, logger *applog.Logger) *SummaryService {
	return &SummaryService{
		store:         store,
		log:           applog.NewStructuredLogger(orDefault(logger, applog.ComponentAggregator)),
		horizonMonths: horizonMonths,
		now:           time.Now,
	}
}

// aggregator builds a per-call Aggregator that reports skipped records
// against ctx.
func (s *SummaryService) aggregator(ctx context.Context) Aggregator {
	a := Aggregator{OnSkip: func(err error) { s.log.LogSkipped(ctx, err) }}
	if s.horizonMonths > 0 {
		a.Horizon = core.DateOf(s.now()).AddMonthsClamped(s.horizonMonths)
	}
	return a
}

func (s *SummaryService) load(ctx context.Context, p core.Period) ([]core.Transaction, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	txs, err := s.store.ListTransactions(ctx, core.TransactionFilter{Period: p})
	if err != nil {
		return nil, fmt.Errorf("load transactions for %s: %w", p, err)
	}
	return txs, nil
}

// monthPeriod rejects month 0, which Period otherwise reads as a whole year.
func monthPeriod(year, month int) (core.Period, error) {
	if month < 1 || month > 12 {
		return core.Period{}, fmt.Errorf("%w: %d", core.ErrInvalidMonth, month)
	}
	p := core.MonthPeriod(year, month)
	return p, p.Validate()
}

// Month totals income and expense for month/year.
func (s *SummaryService) Month(ctx context.Context, year, month int) (core.PeriodSummary, error) {
	p, err := monthPeriod(year, month)
	if err != nil {
		return core.PeriodSummary{}, err
	}
	txs, err := s.load(ctx, p)
	if err != nil {
		return core.PeriodSummary{}, err
	}
	return s.aggregator(ctx).SummarizeMonth(txs, month, year), nil
}

// Year totals every month of year.
func (s *SummaryService) Year(ctx context.Context, year int) (core.YearSummary, error) {
	txs, err := s.load(ctx, core.YearPeriod(year))
	if err != nil {
		return nil, err
	}
	return s.aggregator(ctx).SummarizeYear(txs, year), nil
}

// MonthByType breaks one direction of month/year down by type.
func (s *SummaryService) MonthByType(ctx context.Context, year, month int, incoming bool) (core.TypeBreakdown, error) {
	p, err := monthPeriod(year, month)
	if err != nil {
		return nil, err
	}
	txs, err := s.load(ctx, p)
	if err != nil {
		return nil, err
	}
	return s.aggregator(ctx).BreakdownByType(txs, p, incoming), nil
}

// YearByType breaks one direction of year down by type.
func (s *SummaryService) YearByType(ctx context.Context, year int, incoming bool) (core.TypeBreakdown, error) {
	p := core.YearPeriod(year)
	txs, err := s.load(ctx, p)
	if err != nil {
		return nil, err
	}
	return s.aggregator(ctx).BreakdownByType(txs, p, incoming), nil
}

// YearAverageByType is YearByType divided by 12, rounded half away from zero
// to the cent. Types averaging to zero are dropped.
func (s *SummaryService) YearAverageByType(ctx context.Context, year int, incoming bool) (core.TypeBreakdown, error) {
	totals, err := s.YearByType(ctx, year, incoming)
	if err != nil {
		return nil, err
	}
	return MonthlyAverage(totals), nil
}

// MonthlyAverage divides each total by 12.
func MonthlyAverage(totals core.TypeBreakdown) core.TypeBreakdown {
	out := core.TypeBreakdown{}
	for typ, total := range totals {
		avg := decimal.NewFromInt(total.Cents).Div(twelve).Round(0).IntPart()
		if avg != 0 {
			out[typ] = core.Money{Cents: avg}
		}
	}
	return out
}
