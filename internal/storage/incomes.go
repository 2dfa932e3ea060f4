package storage

import (
	"context"
	"log/slog"

	"bilancio/internal/core"
)

func (r *SQLiteRepository) GetIncome(ctx context.Context, p core.Period) (core.MonthlyIncome, error) {
	inc := core.MonthlyIncome{Period: p}
	err := r.db.QueryRowContext(ctx,
		`SELECT amount_cents FROM monthly_incomes WHERE year = ? AND month = ?`, p.Year, p.Month).
		Scan(&inc.Amount.Cents)
	if err != nil {
		return core.MonthlyIncome{}, mapError("get income", err)
	}
	return inc, nil
}

// CreateIncome inserts the income row of a period. A second row for the
// same period fails with ErrDuplicate.
func (r *SQLiteRepository) CreateIncome(ctx context.Context, inc core.MonthlyIncome) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO monthly_incomes (id, year, month, amount_cents, updated_at) VALUES (?, ?, ?, ?, ?)`,
		newID(), inc.Period.Year, inc.Period.Month, inc.Amount.Cents, r.timestamp())
	if err != nil {
		return mapError("create income", err)
	}

	slog.InfoContext(ctx, "Income saved to SQLite", "period", inc.Period.Key(), "amount_cents", inc.Amount.Cents)
	return nil
}

func (r *SQLiteRepository) UpdateIncome(ctx context.Context, inc core.MonthlyIncome) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE monthly_incomes SET amount_cents = ?, updated_at = ? WHERE year = ? AND month = ?`,
		inc.Amount.Cents, r.timestamp(), inc.Period.Year, inc.Period.Month)
	if err != nil {
		return mapError("update income", err)
	}
	if err := expectOne(res); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Income updated in SQLite", "period", inc.Period.Key(), "amount_cents", inc.Amount.Cents)
	return nil
}
