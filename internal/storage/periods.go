package storage

import (
	"context"
	"fmt"

	"bilancio/internal/core"
)

// ListActivePeriods returns every period holding at least one transaction,
// income, budget or goal, oldest first.
func (r *SQLiteRepository) ListActivePeriods(ctx context.Context) ([]core.Period, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT y, m FROM (
		   SELECT CAST(substr(date, 1, 4) AS INTEGER) AS y, CAST(substr(date, 6, 2) AS INTEGER) AS m FROM transactions
		   UNION SELECT year, month FROM monthly_incomes
		   UNION SELECT year, month FROM budgets
		   UNION SELECT year, month FROM monthly_goals
		 ) ORDER BY y, m`)
	if err != nil {
		return nil, mapError("list active periods", err)
	}
	defer rows.Close()

	periods := []core.Period{}
	for rows.Next() {
		var p core.Period
		if err := rows.Scan(&p.Year, &p.Month); err != nil {
			return nil, fmt.Errorf("scan period: %w", err)
		}
		periods = append(periods, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate periods: %w", err)
	}
	return periods, nil
}
