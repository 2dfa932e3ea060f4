package core

import (
	"sort"

	"github.com/shopspring/decimal"
)

// BudgetUsage compares the budget of an expense category with what was spent.
type BudgetUsage struct {
	CategoryID   string
	CategoryName string
	Budget       Money
	Spent        Money
	Percent      float64 // spent/budget*100, two decimals; 0 when no budget
	Exceeded     bool
}

// ComputeBudgetUsage builds one row per expense category, sorted by name.
// Categories without a budget line get a zero budget.
func ComputeBudgetUsage(categories []Category, budgets []BudgetLine, summary MonthlySummary) []BudgetUsage {
	limits := make(map[string]Money, len(budgets))
	for _, b := range budgets {
		limits[b.CategoryID] = b.Amount
	}

	rows := make([]BudgetUsage, 0, len(categories))
	for _, c := range categories {
		if c.Type != Expense {
			continue
		}
		limit := limits[c.ID]
		spent := summary.SpentIn(c.Name)
		rows = append(rows, BudgetUsage{
			CategoryID:   c.ID,
			CategoryName: c.Name,
			Budget:       limit,
			Spent:        spent,
			Percent:      percentOf(spent, limit),
			Exceeded:     limit.Cents > 0 && spent.Cents > limit.Cents,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].CategoryName < rows[j].CategoryName
	})
	return rows
}

// percentOf returns part/whole*100 rounded to two decimals, 0 when whole <= 0.
func percentOf(part, whole Money) float64 {
	if whole.Cents <= 0 {
		return 0
	}
	pct := decimal.NewFromInt(part.Cents).
		Mul(decimal.NewFromInt(100)).
		DivRound(decimal.NewFromInt(whole.Cents), 2)
	return pct.InexactFloat64()
}
