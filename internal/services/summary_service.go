package services

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"bilancio/internal/cache"
	"bilancio/internal/core"
	"bilancio/internal/log"
)

// SummaryService aggregates monthly summaries. With a cache it serves
// repeated reads from memory and acts as a ChangeNotifier to invalidate.
//
// Every invalidation bumps a generation for the period (or the global epoch
// for AllChanged). A computed summary is cached only if no invalidation
// happened while it was being computed.
type SummaryService struct {
	store SummaryStore
	cache cache.Cache[core.MonthlySummary]

	mu          sync.Mutex
	generations map[string]uint64
	epoch       uint64
	inflight    singleflight.Group
}

// NewSummaryService builds the service. summaries may be nil to disable caching.
func NewSummaryService(store SummaryStore, summaries cache.Cache[core.MonthlySummary]) *SummaryService {
	return &SummaryService{
		store:       store,
		cache:       summaries,
		generations: make(map[string]uint64),
	}
}

// generation identifies the cache state of a period.
type generation struct {
	epoch  uint64
	period uint64
}

func (s *SummaryService) generationOf(key string) generation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return generation{epoch: s.epoch, period: s.generations[key]}
}

// storeIfCurrent caches summary unless key was invalidated after gen was taken.
func (s *SummaryService) storeIfCurrent(key string, gen generation, summary core.MonthlySummary) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != (generation{epoch: s.epoch, period: s.generations[key]}) {
		return false
	}
	s.cache.Set(key, summary)
	return true
}

// GetMonthly returns the summary of a period.
func (s *SummaryService) GetMonthly(ctx context.Context, year, month int) (core.MonthlySummary, error) {
	p := core.NewPeriod(year, month)
	if err := p.Validate(); err != nil {
		return core.MonthlySummary{}, err
	}

	if s.cache != nil {
		if summary, ok := s.cache.Get(p.Key()); ok {
			return summary, nil
		}
	}

	if s.cache == nil {
		return s.compute(ctx, p)
	}

	key := p.Key()
	gen := s.generationOf(key)
	// Concurrent readers of the same generation share one computation.
	flight := fmt.Sprintf("%s/%d/%d", key, gen.epoch, gen.period)
	v, err, _ := s.inflight.Do(flight, func() (any, error) {
		summary, err := s.compute(ctx, p)
		if err != nil {
			return nil, err
		}
		if !s.storeIfCurrent(key, gen, summary) {
			log.FromContext(ctx).WithComponent(log.ComponentCache).DebugContext(ctx, "Summary not cached, invalidated during compute",
				log.FieldPeriod, key)
		}
		return summary, nil
	})
	if err != nil {
		return core.MonthlySummary{}, err
	}
	return v.(core.MonthlySummary), nil
}

func (s *SummaryService) compute(ctx context.Context, p core.Period) (core.MonthlySummary, error) {
	var income core.Money
	inc, err := s.store.GetIncome(ctx, p)
	switch {
	case err == nil:
		income = inc.Amount
	case !isNotFound(err):
		return core.MonthlySummary{}, fmt.Errorf("get income: %w", err)
	}

	txs, err := s.store.ListTransactions(ctx, &p)
	if err != nil {
		return core.MonthlySummary{}, fmt.Errorf("list transactions: %w", err)
	}

	invested, err := s.store.SumSavings(ctx, p)
	if err != nil {
		return core.MonthlySummary{}, fmt.Errorf("sum savings: %w", err)
	}

	summary := core.SummarizeMonth(p, income, txs, invested)
	log.FromContext(ctx).WithComponent(log.ComponentSummary).DebugContext(ctx, "Summary computed",
		log.FieldPeriod, p.Key(), "balance_cents", summary.Balance.Cents)
	return summary, nil
}

// BudgetUsage compares each expense category budget with the period spend.
func (s *SummaryService) BudgetUsage(ctx context.Context, year, month int) ([]core.BudgetUsage, error) {
	summary, err := s.GetMonthly(ctx, year, month)
	if err != nil {
		return nil, err
	}

	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	budgets, err := s.store.ListBudgets(ctx, summary.Period)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	return core.ComputeBudgetUsage(categories, budgets, summary), nil
}

// ActivePeriods lists every period that holds data, oldest first.
func (s *SummaryService) ActivePeriods(ctx context.Context) ([]core.Period, error) {
	periods, err := s.store.ListActivePeriods(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active periods: %w", err)
	}
	return periods, nil
}

func (s *SummaryService) PeriodChanged(ctx context.Context, p core.Period, reason string) {
	if s.cache == nil {
		return
	}
	s.mu.Lock()
	s.generations[p.Key()]++
	s.cache.Delete(p.Key())
	s.mu.Unlock()
	log.FromContext(ctx).WithComponent(log.ComponentCache).DebugContext(ctx, "Summary invalidated",
		log.FieldPeriod, p.Key(), log.FieldReason, reason)
}

func (s *SummaryService) AllChanged(ctx context.Context, reason string) {
	if s.cache == nil {
		return
	}
	s.mu.Lock()
	s.epoch++
	s.cache.Purge()
	s.mu.Unlock()
	log.FromContext(ctx).WithComponent(log.ComponentCache).DebugContext(ctx, "Summary cache purged",
		log.FieldReason, reason)
}
