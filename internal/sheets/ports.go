package sheets

import (
	"context"
	"fmt"
	"strings"

	"bilancio/internal/core"
)

// SummaryWriter is the outbound port for monthly summary exports. Writing
// the same period twice overwrites the previous row.
type SummaryWriter interface {
	WriteSummary(ctx context.Context, s core.MonthlySummary) error
}

// Header is the first row of every yearly summary sheet.
var Header = []string{"Period", "Income", "Expense", "Balance", "Expenses by category"}

// SummaryRow renders a summary as the cells of one sheet row.
func SummaryRow(s core.MonthlySummary) []string {
	parts := make([]string, 0, len(s.ExpensesByCategory))
	for _, c := range s.ExpensesByCategory {
		parts = append(parts, fmt.Sprintf("%s: %s", c.Category, c.Total))
	}
	return []string{
		s.Period.Key(),
		s.Income.String(),
		s.Expense.String(),
		s.Balance.String(),
		strings.Join(parts, "; "),
	}
}
