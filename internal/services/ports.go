package services

import (
	"context"

	"bilancio/internal/core"
)

// CategoryStore is the persistence surface needed by CategoryService.
type CategoryStore interface {
	CreateCategory(ctx context.Context, c core.Category) (core.Category, error)
	GetCategory(ctx context.Context, id string) (core.Category, error)
	FindCategory(ctx context.Context, name string, t core.EntryType) (core.Category, error)
	ListCategories(ctx context.Context) ([]core.Category, error)
	DeleteCategory(ctx context.Context, id string) error
}

type TransactionStore interface {
	GetCategory(ctx context.Context, id string) (core.Category, error)
	CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error)
	GetTransaction(ctx context.Context, id string) (core.TransactionView, error)
	UpdateTransaction(ctx context.Context, tx core.Transaction) error
	DeleteTransaction(ctx context.Context, id string) error
	ListTransactions(ctx context.Context, p *core.Period) ([]core.TransactionView, error)
}

type IncomeStore interface {
	GetIncome(ctx context.Context, p core.Period) (core.MonthlyIncome, error)
	CreateIncome(ctx context.Context, inc core.MonthlyIncome) error
	UpdateIncome(ctx context.Context, inc core.MonthlyIncome) error
}

type BudgetStore interface {
	GetCategory(ctx context.Context, id string) (core.Category, error)
	GetBudget(ctx context.Context, p core.Period, categoryID string) (core.Budget, error)
	CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error)
	UpdateBudgetAmount(ctx context.Context, id string, amount core.Money) error
	ListBudgets(ctx context.Context, p core.Period) ([]core.BudgetLine, error)
}

type GoalStore interface {
	GetGoal(ctx context.Context, p core.Period) (core.MonthlyGoal, error)
	CreateGoal(ctx context.Context, g core.MonthlyGoal) (core.MonthlyGoal, error)
	UpdateGoalTarget(ctx context.Context, id string, target core.Money) error
	ListSavings(ctx context.Context, goalID string) ([]core.MonthlyGoalSaving, error)
	CreateSaving(ctx context.Context, s core.MonthlyGoalSaving) (core.MonthlyGoalSaving, error)
	GetSaving(ctx context.Context, id string) (core.MonthlyGoalSaving, core.Period, error)
	UpdateSaving(ctx context.Context, id string, amount core.Money, description string) error
	DeleteSaving(ctx context.Context, id string) error
}

// SummaryStore is the read side used to aggregate a month.
type SummaryStore interface {
	GetIncome(ctx context.Context, p core.Period) (core.MonthlyIncome, error)
	ListTransactions(ctx context.Context, p *core.Period) ([]core.TransactionView, error)
	SumSavings(ctx context.Context, p core.Period) (core.Money, error)
	ListCategories(ctx context.Context) ([]core.Category, error)
	ListBudgets(ctx context.Context, p core.Period) ([]core.BudgetLine, error)
	ListActivePeriods(ctx context.Context) ([]core.Period, error)
}

// Store is implemented by storage.SQLiteRepository.
type Store interface {
	CategoryStore
	TransactionStore
	IncomeStore
	BudgetStore
	GoalStore
	SummaryStore
	Ping(ctx context.Context) error
	Close() error
}
