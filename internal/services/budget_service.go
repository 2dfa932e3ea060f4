package services

import (
	"context"
	"fmt"

	"bilancio/internal/core"
	"bilancio/internal/log"
)

type BudgetService struct {
	store  BudgetStore
	notify ChangeNotifier
}

func NewBudgetService(store BudgetStore, notify ChangeNotifier) *BudgetService {
	return &BudgetService{store: store, notify: orNoop(notify)}
}

// Get lists the budgets of a period ordered by category name. Categories
// without a budget are absent.
func (s *BudgetService) Get(ctx context.Context, year, month int) ([]core.BudgetLine, error) {
	p := core.NewPeriod(year, month)
	if err := p.Validate(); err != nil {
		return nil, err
	}

	lines, err := s.store.ListBudgets(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	return lines, nil
}

// Upsert sets the budget of one category for a period.
func (s *BudgetService) Upsert(ctx context.Context, year, month int, categoryID string, amount core.Money) error {
	b := core.Budget{Period: core.NewPeriod(year, month), CategoryID: categoryID, Amount: amount}
	if err := b.Validate(); err != nil {
		return err
	}

	if _, err := s.store.GetCategory(ctx, categoryID); err != nil {
		if isNotFound(err) {
			return core.Validationf("category %s does not exist", categoryID)
		}
		return fmt.Errorf("get category: %w", err)
	}

	err := retryOnConflict(ctx, "budget.upsert", func() error {
		existing, err := s.store.GetBudget(ctx, b.Period, b.CategoryID)
		if isNotFound(err) {
			_, err = s.store.CreateBudget(ctx, b)
			return err
		}
		if err != nil {
			return err
		}
		return s.store.UpdateBudgetAmount(ctx, existing.ID, b.Amount)
	})
	if err != nil {
		return fmt.Errorf("upsert budget: %w", translate(err, "budget category"))
	}

	log.FromContext(ctx).WithComponent(log.ComponentBudget).InfoContext(ctx, "Budget upserted",
		log.FieldPeriod, b.Period.Key(), log.FieldCategoryID, categoryID, log.FieldAmountCents, amount.Cents)
	s.notify.PeriodChanged(ctx, b.Period, "budget.upsert")
	return nil
}
