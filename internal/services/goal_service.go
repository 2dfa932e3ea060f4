package services

import (
	"context"
	"fmt"

	"bilancio/internal/core"
	"bilancio/internal/log"
)

type GoalService struct {
	store  GoalStore
	notify ChangeNotifier
}

func NewGoalService(store GoalStore, notify ChangeNotifier) *GoalService {
	return &GoalService{store: store, notify: orNoop(notify)}
}

// GetMonthly returns the goal of a period with its savings, newest first.
// A period without a goal yields a zero view.
func (s *GoalService) GetMonthly(ctx context.Context, year, month int) (core.MonthlyGoalView, error) {
	p := core.NewPeriod(year, month)
	if err := p.Validate(); err != nil {
		return core.MonthlyGoalView{}, err
	}

	goal, err := s.store.GetGoal(ctx, p)
	if err != nil {
		if isNotFound(err) {
			return core.NewGoalView(p, nil, nil), nil
		}
		return core.MonthlyGoalView{}, fmt.Errorf("get goal: %w", err)
	}

	savings, err := s.store.ListSavings(ctx, goal.ID)
	if err != nil {
		return core.MonthlyGoalView{}, fmt.Errorf("list savings: %w", err)
	}
	return core.NewGoalView(p, &goal, savings), nil
}

// UpsertTarget sets the target of a period goal. Savings are untouched.
func (s *GoalService) UpsertTarget(ctx context.Context, year, month int, target core.Money) error {
	g := core.MonthlyGoal{Period: core.NewPeriod(year, month), Target: target}
	if err := g.Validate(); err != nil {
		return err
	}

	err := retryOnConflict(ctx, "goal.upsert", func() error {
		existing, err := s.store.GetGoal(ctx, g.Period)
		if isNotFound(err) {
			_, err = s.store.CreateGoal(ctx, g)
			return err
		}
		if err != nil {
			return err
		}
		return s.store.UpdateGoalTarget(ctx, existing.ID, g.Target)
	})
	if err != nil {
		return fmt.Errorf("upsert goal: %w", translate(err, "goal for "+g.Period.Key()))
	}

	log.FromContext(ctx).WithComponent(log.ComponentGoal).InfoContext(ctx, "Goal target upserted",
		log.FieldPeriod, g.Period.Key(), log.FieldAmountCents, target.Cents)
	s.notify.PeriodChanged(ctx, g.Period, "goal.upsert")
	return nil
}

// ensureGoal returns the goal of a period, creating it with a zero target
// in its own commit when missing.
func (s *GoalService) ensureGoal(ctx context.Context, p core.Period) (core.MonthlyGoal, error) {
	var goal core.MonthlyGoal
	err := retryOnConflict(ctx, "goal.ensure", func() error {
		existing, err := s.store.GetGoal(ctx, p)
		if err == nil {
			goal = existing
			return nil
		}
		if !isNotFound(err) {
			return err
		}
		created, err := s.store.CreateGoal(ctx, core.MonthlyGoal{Period: p})
		if err != nil {
			return err
		}
		goal = created
		return nil
	})
	return goal, err
}

// AddSaving records a saving for a period, creating the goal lazily.
func (s *GoalService) AddSaving(ctx context.Context, year, month int, amount core.Money, description string) (string, error) {
	p := core.NewPeriod(year, month)
	if err := p.Validate(); err != nil {
		return "", err
	}
	if err := amount.Validate(); err != nil {
		return "", err
	}
	description, err := core.NormalizeRequiredDescription(description)
	if err != nil {
		return "", err
	}

	goal, err := s.ensureGoal(ctx, p)
	if err != nil {
		return "", fmt.Errorf("ensure goal: %w", translate(err, "goal for "+p.Key()))
	}

	saving, err := s.store.CreateSaving(ctx, core.MonthlyGoalSaving{
		GoalID:      goal.ID,
		Amount:      amount,
		Description: description,
	})
	if err != nil {
		return "", fmt.Errorf("create saving: %w", translate(err, "saving goal"))
	}

	log.FromContext(ctx).WithComponent(log.ComponentGoal).InfoContext(ctx, "Saving added",
		log.FieldID, saving.ID, log.FieldPeriod, p.Key(), log.FieldAmountCents, amount.Cents)
	s.notify.PeriodChanged(ctx, p, "saving.create")
	return saving.ID, nil
}

// UpdateSaving changes amount and description of an existing saving.
func (s *GoalService) UpdateSaving(ctx context.Context, id string, amount core.Money, description string) error {
	if err := amount.Validate(); err != nil {
		return err
	}
	description, err := core.NormalizeRequiredDescription(description)
	if err != nil {
		return err
	}

	_, p, err := s.store.GetSaving(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return core.NotFoundf("saving %s not found", id)
		}
		return fmt.Errorf("get saving: %w", err)
	}

	if err := s.store.UpdateSaving(ctx, id, amount, description); err != nil {
		if isNotFound(err) {
			return core.NotFoundf("saving %s not found", id)
		}
		return fmt.Errorf("update saving: %w", err)
	}

	log.FromContext(ctx).WithComponent(log.ComponentGoal).InfoContext(ctx, "Saving updated",
		log.FieldID, id, log.FieldPeriod, p.Key(), log.FieldAmountCents, amount.Cents)
	s.notify.PeriodChanged(ctx, p, "saving.update")
	return nil
}

func (s *GoalService) DeleteSaving(ctx context.Context, id string) error {
	_, p, err := s.store.GetSaving(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return core.NotFoundf("saving %s not found", id)
		}
		return fmt.Errorf("get saving: %w", err)
	}

	if err := s.store.DeleteSaving(ctx, id); err != nil {
		if isNotFound(err) {
			return core.NotFoundf("saving %s not found", id)
		}
		return fmt.Errorf("delete saving: %w", err)
	}

	log.FromContext(ctx).WithComponent(log.ComponentGoal).InfoContext(ctx, "Saving deleted",
		log.FieldID, id, log.FieldPeriod, p.Key())
	s.notify.PeriodChanged(ctx, p, "saving.delete")
	return nil
}
