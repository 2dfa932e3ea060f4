package services

import (
	"context"
	"fmt"

	"bilancio/internal/core"
	"bilancio/internal/log"
)

type IncomeService struct {
	store  IncomeStore
	notify ChangeNotifier
}

func NewIncomeService(store IncomeStore, notify ChangeNotifier) *IncomeService {
	return &IncomeService{store: store, notify: orNoop(notify)}
}

// Get returns the income of a period, zero when none was recorded.
func (s *IncomeService) Get(ctx context.Context, year, month int) (core.MonthlyIncome, error) {
	p := core.NewPeriod(year, month)
	if err := p.Validate(); err != nil {
		return core.MonthlyIncome{}, err
	}

	inc, err := s.store.GetIncome(ctx, p)
	if err != nil {
		if isNotFound(err) {
			return core.MonthlyIncome{Period: p}, nil
		}
		return core.MonthlyIncome{}, fmt.Errorf("get income: %w", err)
	}
	return inc, nil
}

// Upsert sets the income of a period, creating the row on first use.
func (s *IncomeService) Upsert(ctx context.Context, year, month int, amount core.Money) error {
	inc := core.MonthlyIncome{Period: core.NewPeriod(year, month), Amount: amount}
	if err := inc.Validate(); err != nil {
		return err
	}

	err := retryOnConflict(ctx, "income.upsert", func() error {
		_, err := s.store.GetIncome(ctx, inc.Period)
		if isNotFound(err) {
			return s.store.CreateIncome(ctx, inc)
		}
		if err != nil {
			return err
		}
		return s.store.UpdateIncome(ctx, inc)
	})
	if err != nil {
		return fmt.Errorf("upsert income: %w", translate(err, "income for "+inc.Period.Key()))
	}

	log.FromContext(ctx).WithComponent(log.ComponentIncome).InfoContext(ctx, "Income upserted",
		log.FieldPeriod, inc.Period.Key(), log.FieldAmountCents, inc.Amount.Cents)
	s.notify.PeriodChanged(ctx, inc.Period, "income.upsert")
	return nil
}
