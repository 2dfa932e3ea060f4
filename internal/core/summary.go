package core

import "sort"

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Category string
	Total    Money
}

// MonthlySummary is the financial picture of a single period.
type MonthlySummary struct {
	Period             Period
	Income             Money
	Expense            Money
	Invested           Money
	Balance            Money
	ExpensesByCategory []CategoryAmount
}

// SummarizeMonth aggregates a period.
//
// Only expense transactions dated inside the period contribute to expense.
// Expenses without a category name count toward the total but not toward
// the per-category breakdown. Invested is the sum of the period goal's
// savings and is deducted from the balance like an expense:
//
//	balance = income - expense - invested
func SummarizeMonth(p Period, income Money, txs []TransactionView, invested Money) MonthlySummary {
	s := MonthlySummary{
		Period:             p,
		Income:             income,
		Invested:           invested,
		ExpensesByCategory: []CategoryAmount{},
	}

	byName := make(map[string]Money)
	for _, tx := range txs {
		if tx.Type != Expense || !p.Contains(tx.Date) {
			continue
		}
		s.Expense = s.Expense.Add(tx.Amount)
		if tx.CategoryName != nil {
			byName[*tx.CategoryName] = byName[*tx.CategoryName].Add(tx.Amount)
		}
	}

	for name, total := range byName {
		s.ExpensesByCategory = append(s.ExpensesByCategory, CategoryAmount{Category: name, Total: total})
	}
	sort.Slice(s.ExpensesByCategory, func(i, j int) bool {
		a, b := s.ExpensesByCategory[i], s.ExpensesByCategory[j]
		if a.Total.Cents != b.Total.Cents {
			return a.Total.Cents > b.Total.Cents
		}
		return a.Category < b.Category
	})

	s.Balance = income.Sub(s.Expense).Sub(invested)
	return s
}

// SpentIn returns the total spent in the named category, zero if absent.
func (s MonthlySummary) SpentIn(category string) Money {
	for _, c := range s.ExpensesByCategory {
		if c.Category == category {
			return c.Total
		}
	}
	return Money{}
}
