package storage

import (
	"context"
	"fmt"
	"log/slog"

	"bilancio/internal/core"
)

func (r *SQLiteRepository) GetBudget(ctx context.Context, p core.Period, categoryID string) (core.Budget, error) {
	b := core.Budget{Period: p, CategoryID: categoryID}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, amount_cents FROM budgets WHERE year = ? AND month = ? AND category_id = ?`,
		p.Year, p.Month, categoryID).
		Scan(&b.ID, &b.Amount.Cents)
	if err != nil {
		return core.Budget{}, mapError("get budget", err)
	}
	return b, nil
}

func (r *SQLiteRepository) CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	b.ID = newID()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO budgets (id, year, month, category_id, amount_cents, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		b.ID, b.Period.Year, b.Period.Month, b.CategoryID, b.Amount.Cents, r.timestamp())
	if err != nil {
		return core.Budget{}, mapError("create budget", err)
	}

	slog.InfoContext(ctx, "Budget saved to SQLite",
		"id", b.ID,
		"period", b.Period.Key(),
		"category_id", b.CategoryID,
		"amount_cents", b.Amount.Cents)
	return b, nil
}

func (r *SQLiteRepository) UpdateBudgetAmount(ctx context.Context, id string, amount core.Money) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE budgets SET amount_cents = ?, updated_at = ? WHERE id = ?`,
		amount.Cents, r.timestamp(), id)
	if err != nil {
		return mapError("update budget", err)
	}
	if err := expectOne(res); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Budget updated in SQLite", "id", id, "amount_cents", amount.Cents)
	return nil
}

// ListBudgets returns the budget lines of a period joined with category names.
func (r *SQLiteRepository) ListBudgets(ctx context.Context, p core.Period) ([]core.BudgetLine, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT b.category_id, c.name, b.amount_cents
		 FROM budgets b JOIN categories c ON c.id = b.category_id
		 WHERE b.year = ? AND b.month = ?
		 ORDER BY c.name`,
		p.Year, p.Month)
	if err != nil {
		return nil, mapError("list budgets", err)
	}
	defer rows.Close()

	lines := []core.BudgetLine{}
	for rows.Next() {
		var l core.BudgetLine
		if err := rows.Scan(&l.CategoryID, &l.CategoryName, &l.Amount.Cents); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate budgets: %w", err)
	}
	return lines, nil
}
