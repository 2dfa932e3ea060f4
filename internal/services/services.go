package services

import (
	"bilancio/internal/cache"
	"bilancio/internal/core"
)

// Services groups every command handler over one store.
type Services struct {
	Categories   *CategoryService
	Transactions *TransactionService
	Incomes      *IncomeService
	Budgets      *BudgetService
	Goals        *GoalService
	Summaries    *SummaryService
}

// New wires the services. Every write invalidates the summary cache before
// it reaches the extra notifiers (typically the event publisher).
func New(store Store, summaries cache.Cache[core.MonthlySummary], extra ...ChangeNotifier) *Services {
	summary := NewSummaryService(store, summaries)
	notify := append(Notifiers{summary}, extra...)

	return &Services{
		Categories:   NewCategoryService(store, notify),
		Transactions: NewTransactionService(store, notify),
		Incomes:      NewIncomeService(store, notify),
		Budgets:      NewBudgetService(store, notify),
		Goals:        NewGoalService(store, notify),
		Summaries:    summary,
	}
}
