package storage

import (
	"context"
	"fmt"
	"log/slog"

	"bilancio/internal/core"
)

func (r *SQLiteRepository) GetGoal(ctx context.Context, p core.Period) (core.MonthlyGoal, error) {
	g := core.MonthlyGoal{Period: p}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, target_cents FROM monthly_goals WHERE year = ? AND month = ?`, p.Year, p.Month).
		Scan(&g.ID, &g.Target.Cents)
	if err != nil {
		return core.MonthlyGoal{}, mapError("get goal", err)
	}
	return g, nil
}

// CreateGoal commits the goal row on its own so savings can reference its id.
func (r *SQLiteRepository) CreateGoal(ctx context.Context, g core.MonthlyGoal) (core.MonthlyGoal, error) {
	g.ID = newID()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO monthly_goals (id, year, month, target_cents, updated_at) VALUES (?, ?, ?, ?, ?)`,
		g.ID, g.Period.Year, g.Period.Month, g.Target.Cents, r.timestamp())
	if err != nil {
		return core.MonthlyGoal{}, mapError("create goal", err)
	}

	slog.InfoContext(ctx, "Goal saved to SQLite", "id", g.ID, "period", g.Period.Key(), "target_cents", g.Target.Cents)
	return g, nil
}

func (r *SQLiteRepository) UpdateGoalTarget(ctx context.Context, id string, target core.Money) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE monthly_goals SET target_cents = ?, updated_at = ? WHERE id = ?`,
		target.Cents, r.timestamp(), id)
	if err != nil {
		return mapError("update goal target", err)
	}
	if err := expectOne(res); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Goal target updated in SQLite", "id", id, "target_cents", target.Cents)
	return nil
}

// ListSavings returns the savings of a goal, newest first.
func (r *SQLiteRepository) ListSavings(ctx context.Context, goalID string) ([]core.MonthlyGoalSaving, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, monthly_goal_id, amount_cents, description, created_at
		 FROM monthly_goal_savings
		 WHERE monthly_goal_id = ?
		 ORDER BY created_at DESC, rowid DESC`,
		goalID)
	if err != nil {
		return nil, mapError("list savings", err)
	}
	defer rows.Close()

	savings := []core.MonthlyGoalSaving{}
	for rows.Next() {
		s, err := scanSaving(rows)
		if err != nil {
			return nil, err
		}
		savings = append(savings, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate savings: %w", err)
	}
	return savings, nil
}

func scanSaving(s rowScanner) (core.MonthlyGoalSaving, error) {
	var (
		saving    core.MonthlyGoalSaving
		createdAt string
	)
	if err := s.Scan(&saving.ID, &saving.GoalID, &saving.Amount.Cents, &saving.Description, &createdAt); err != nil {
		return core.MonthlyGoalSaving{}, fmt.Errorf("scan saving: %w", err)
	}
	t, err := parseTimestamp(createdAt)
	if err != nil {
		return core.MonthlyGoalSaving{}, err
	}
	saving.CreatedAt = t
	return saving, nil
}

// CreateSaving attaches a saving to an existing goal. CreatedAt is set here.
func (r *SQLiteRepository) CreateSaving(ctx context.Context, s core.MonthlyGoalSaving) (core.MonthlyGoalSaving, error) {
	s.ID = newID()
	s.CreatedAt = r.now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO monthly_goal_savings (id, monthly_goal_id, amount_cents, description, created_at) VALUES (?, ?, ?, ?, ?)`,
		s.ID, s.GoalID, s.Amount.Cents, s.Description, s.CreatedAt.Format(timestampLayout))
	if err != nil {
		return core.MonthlyGoalSaving{}, mapError("create saving", err)
	}

	slog.InfoContext(ctx, "Saving saved to SQLite", "id", s.ID, "goal_id", s.GoalID, "amount_cents", s.Amount.Cents)
	return s, nil
}

// GetSaving returns a saving together with the period of its goal.
func (r *SQLiteRepository) GetSaving(ctx context.Context, id string) (core.MonthlyGoalSaving, core.Period, error) {
	var p core.Period
	row := r.db.QueryRowContext(ctx,
		`SELECT s.id, s.monthly_goal_id, s.amount_cents, s.description, s.created_at, g.year, g.month
		 FROM monthly_goal_savings s JOIN monthly_goals g ON g.id = s.monthly_goal_id
		 WHERE s.id = ?`, id)

	var (
		saving    core.MonthlyGoalSaving
		createdAt string
	)
	err := row.Scan(&saving.ID, &saving.GoalID, &saving.Amount.Cents, &saving.Description, &createdAt, &p.Year, &p.Month)
	if err != nil {
		return core.MonthlyGoalSaving{}, core.Period{}, mapError("get saving", err)
	}
	t, err := parseTimestamp(createdAt)
	if err != nil {
		return core.MonthlyGoalSaving{}, core.Period{}, err
	}
	saving.CreatedAt = t
	return saving, p, nil
}

// UpdateSaving changes amount and description only.
func (r *SQLiteRepository) UpdateSaving(ctx context.Context, id string, amount core.Money, description string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE monthly_goal_savings SET amount_cents = ?, description = ? WHERE id = ?`,
		amount.Cents, description, id)
	if err != nil {
		return mapError("update saving", err)
	}
	if err := expectOne(res); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Saving updated in SQLite", "id", id, "amount_cents", amount.Cents)
	return nil
}

func (r *SQLiteRepository) DeleteSaving(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM monthly_goal_savings WHERE id = ?`, id)
	if err != nil {
		return mapError("delete saving", err)
	}
	if err := expectOne(res); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Saving deleted from SQLite", "id", id)
	return nil
}

// SumSavings is the invested amount of a period: every saving attached to
// the period goal, regardless of when it was created.
func (r *SQLiteRepository) SumSavings(ctx context.Context, p core.Period) (core.Money, error) {
	var total core.Money
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(s.amount_cents), 0)
		 FROM monthly_goal_savings s JOIN monthly_goals g ON g.id = s.monthly_goal_id
		 WHERE g.year = ? AND g.month = ?`,
		p.Year, p.Month).
		Scan(&total.Cents)
	if err != nil {
		return core.Money{}, mapError("sum savings", err)
	}
	return total, nil
}
