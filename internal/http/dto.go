package http

import (
	"time"

	"bilancio/internal/core"
	"bilancio/internal/services"
)

// Request bodies.

type createCategoryRequest struct {
	Name string         `json:"name"`
	Type core.EntryType `json:"type"`
}

type transactionRequest struct {
	Type        core.EntryType `json:"type"`
	Amount      core.Money     `json:"amount"`
	Year        int            `json:"year"`
	Month       int            `json:"month"`
	Day         int            `json:"day"`
	CategoryID  *string        `json:"categoryId"`
	Description *string        `json:"description"`
}

func (t transactionRequest) input() services.TransactionInput {
	return services.TransactionInput{
		Type:        t.Type,
		Amount:      t.Amount,
		Year:        t.Year,
		Month:       t.Month,
		Day:         t.Day,
		CategoryID:  t.CategoryID,
		Description: t.Description,
	}
}

type upsertIncomeRequest struct {
	Year   int        `json:"year"`
	Month  int        `json:"month"`
	Amount core.Money `json:"amount"`
}

type upsertBudgetRequest struct {
	Year       int        `json:"year"`
	Month      int        `json:"month"`
	CategoryID string     `json:"categoryId"`
	Amount     core.Money `json:"amount"`
}

type upsertGoalRequest struct {
	Year         int        `json:"year"`
	Month        int        `json:"month"`
	TargetAmount core.Money `json:"targetAmount"`
}

type addSavingRequest struct {
	Year        int        `json:"year"`
	Month       int        `json:"month"`
	Amount      core.Money `json:"amount"`
	Description string     `json:"description"`
}

type updateSavingRequest struct {
	Amount      core.Money `json:"amount"`
	Description string     `json:"description"`
}

// Response bodies.

type categoryDTO struct {
	ID   string         `json:"id"`
	Name string         `json:"name"`
	Type core.EntryType `json:"type"`
}

func toCategoryDTOs(cats []core.Category) []categoryDTO {
	out := make([]categoryDTO, 0, len(cats))
	for _, c := range cats {
		out = append(out, categoryDTO{ID: c.ID, Name: c.Name, Type: c.Type})
	}
	return out
}

type transactionDTO struct {
	ID           string         `json:"id"`
	Type         core.EntryType `json:"type"`
	Amount       core.Money     `json:"amount"`
	Date         string         `json:"date"`
	CategoryID   *string        `json:"categoryId"`
	CategoryName *string        `json:"categoryName"`
	Description  *string        `json:"description"`
}

func toTransactionDTOs(txs []core.TransactionView) []transactionDTO {
	out := make([]transactionDTO, 0, len(txs))
	for _, t := range txs {
		out = append(out, transactionDTO{
			ID:           t.ID,
			Type:         t.Type,
			Amount:       t.Amount,
			Date:         t.Date.String(),
			CategoryID:   t.CategoryID,
			CategoryName: t.CategoryName,
			Description:  t.Description,
		})
	}
	return out
}

type incomeDTO struct {
	Year   int        `json:"year"`
	Month  int        `json:"month"`
	Amount core.Money `json:"amount"`
}

type budgetDTO struct {
	CategoryID   string     `json:"categoryId"`
	CategoryName string     `json:"categoryName"`
	Amount       core.Money `json:"amount"`
}

func toBudgetDTOs(lines []core.BudgetLine) []budgetDTO {
	out := make([]budgetDTO, 0, len(lines))
	for _, l := range lines {
		out = append(out, budgetDTO{CategoryID: l.CategoryID, CategoryName: l.CategoryName, Amount: l.Amount})
	}
	return out
}

type budgetUsageDTO struct {
	CategoryID   string     `json:"categoryId"`
	CategoryName string     `json:"categoryName"`
	Budget       core.Money `json:"budget"`
	Spent        core.Money `json:"spent"`
	Percent      float64    `json:"percent"`
	Exceeded     bool       `json:"exceeded"`
}

func toBudgetUsageDTOs(rows []core.BudgetUsage) []budgetUsageDTO {
	out := make([]budgetUsageDTO, 0, len(rows))
	for _, u := range rows {
		out = append(out, budgetUsageDTO{
			CategoryID:   u.CategoryID,
			CategoryName: u.CategoryName,
			Budget:       u.Budget,
			Spent:        u.Spent,
			Percent:      u.Percent,
			Exceeded:     u.Exceeded,
		})
	}
	return out
}

type savingDTO struct {
	ID           string     `json:"id"`
	Amount       core.Money `json:"amount"`
	Description  string     `json:"description"`
	CreatedAtUTC string     `json:"createdAtUtc"`
}

type goalDTO struct {
	Year         int         `json:"year"`
	Month        int         `json:"month"`
	TargetAmount core.Money  `json:"targetAmount"`
	SavedAmount  core.Money  `json:"savedAmount"`
	Savings      []savingDTO `json:"savings"`
	Percent      float64     `json:"percent"`
	Remaining    core.Money  `json:"remaining"`
	Reached      bool        `json:"reached"`
}

func toGoalDTO(v core.MonthlyGoalView) goalDTO {
	progress := v.Progress()
	dto := goalDTO{
		Year:         v.Period.Year,
		Month:        v.Period.Month,
		TargetAmount: v.Target,
		SavedAmount:  v.Saved,
		Savings:      make([]savingDTO, 0, len(v.Savings)),
		Percent:      progress.Percent,
		Remaining:    progress.Remaining,
		Reached:      progress.Reached,
	}
	for _, s := range v.Savings {
		dto.Savings = append(dto.Savings, savingDTO{
			ID:           s.ID,
			Amount:       s.Amount,
			Description:  s.Description,
			CreatedAtUTC: s.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return dto
}

type categoryTotalDTO struct {
	Category string     `json:"category"`
	Total    core.Money `json:"total"`
}

type summaryDTO struct {
	Year               int                `json:"year"`
	Month              int                `json:"month"`
	Income             core.Money         `json:"income"`
	Expense            core.Money         `json:"expense"`
	Invested           core.Money         `json:"invested"`
	Balance            core.Money         `json:"balance"`
	ExpensesByCategory []categoryTotalDTO `json:"expensesByCategory"`
}

func toSummaryDTO(s core.MonthlySummary) summaryDTO {
	dto := summaryDTO{
		Year:               s.Period.Year,
		Month:              s.Period.Month,
		Income:             s.Income,
		Expense:            s.Expense,
		Invested:           s.Invested,
		Balance:            s.Balance,
		ExpensesByCategory: make([]categoryTotalDTO, 0, len(s.ExpensesByCategory)),
	}
	for _, c := range s.ExpensesByCategory {
		dto.ExpensesByCategory = append(dto.ExpensesByCategory, categoryTotalDTO{Category: c.Category, Total: c.Total})
	}
	return dto
}
