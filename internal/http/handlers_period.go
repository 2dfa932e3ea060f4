package http

import (
	"net/http"

	"bilancio/internal/log"
)

func (s *Server) handleGetIncome(w http.ResponseWriter, r *http.Request) {
	p, err := ParseMonthParams(r.URL.Query())
	if err != nil {
		s.writeServiceError(w, r, log.ComponentIncome, log.OpRead, err)
		return
	}

	income, err := s.services.Incomes.Get(r.Context(), p.Year, p.Month)
	if err != nil {
		s.writeServiceError(w, r, log.ComponentIncome, log.OpRead, err)
		return
	}
	OK(incomeDTO{Year: income.Period.Year, Month: income.Period.Month, Amount: income.Amount}).Write(w)
}

func (s *Server) handleUpsertIncome(w http.ResponseWriter, r *http.Request) {
	var req upsertIncomeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeServiceError(w, r, log.ComponentIncome, log.OpUpsert, err)
		return
	}

	if err := s.services.Incomes.Upsert(r.Context(), req.Year, req.Month, req.Amount); err != nil {
		s.writeServiceError(w, r, log.ComponentIncome, log.OpUpsert, err)
		return
	}
	s.mutated()
	NoContent().Write(w)
}

func (s *Server) handleGetBudgets(w http.ResponseWriter, r *http.Request) {
	p, err := ParseMonthParams(r.URL.Query())
	if err != nil {
		s.writeServiceError(w, r, log.ComponentBudget, log.OpRead, err)
		return
	}

	lines, err := s.services.Budgets.Get(r.Context(), p.Year, p.Month)
	if err != nil {
		s.writeServiceError(w, r, log.ComponentBudget, log.OpRead, err)
		return
	}
	OK(toBudgetDTOs(lines)).Write(w)
}

func (s *Server) handleUpsertBudget(w http.ResponseWriter, r *http.Request) {
	var req upsertBudgetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeServiceError(w, r, log.ComponentBudget, log.OpUpsert, err)
		return
	}

	if err := s.services.Budgets.Upsert(r.Context(), req.Year, req.Month, req.CategoryID, req.Amount); err != nil {
		s.writeServiceError(w, r, log.ComponentBudget, log.OpUpsert, err)
		return
	}
	s.mutated()
	NoContent().Write(w)
}

func (s *Server) handleBudgetUsage(w http.ResponseWriter, r *http.Request) {
	p, err := ParseMonthParams(r.URL.Query())
	if err != nil {
		s.writeServiceError(w, r, log.ComponentBudget, log.OpRead, err)
		return
	}

	usage, err := s.services.Summaries.BudgetUsage(r.Context(), p.Year, p.Month)
	if err != nil {
		s.writeServiceError(w, r, log.ComponentBudget, log.OpRead, err)
		return
	}
	OK(toBudgetUsageDTOs(usage)).Write(w)
}

func (s *Server) handleGetGoal(w http.ResponseWriter, r *http.Request) {
	p, err := ParseMonthParams(r.URL.Query())
	if err != nil {
		s.writeServiceError(w, r, log.ComponentGoal, log.OpRead, err)
		return
	}

	view, err := s.services.Goals.GetMonthly(r.Context(), p.Year, p.Month)
	if err != nil {
		s.writeServiceError(w, r, log.ComponentGoal, log.OpRead, err)
		return
	}
	OK(toGoalDTO(view)).Write(w)
}

func (s *Server) handleUpsertGoal(w http.ResponseWriter, r *http.Request) {
	var req upsertGoalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeServiceError(w, r, log.ComponentGoal, log.OpUpsert, err)
		return
	}

	if err := s.services.Goals.UpsertTarget(r.Context(), req.Year, req.Month, req.TargetAmount); err != nil {
		s.writeServiceError(w, r, log.ComponentGoal, log.OpUpsert, err)
		return
	}
	s.mutated()
	NoContent().Write(w)
}

func (s *Server) handleAddSaving(w http.ResponseWriter, r *http.Request) {
	var req addSavingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeServiceError(w, r, log.ComponentGoal, log.OpCreate, err)
		return
	}

	id, err := s.services.Goals.AddSaving(r.Context(), req.Year, req.Month, req.Amount, req.Description)
	if err != nil {
		s.writeServiceError(w, r, log.ComponentGoal, log.OpCreate, err)
		return
	}
	s.mutated()
	Created(location("/api/goals/monthly/savings/%s", id), id).Write(w)
}

func (s *Server) handleUpdateSaving(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "saving")
	if err != nil {
		s.writeServiceError(w, r, log.ComponentGoal, log.OpUpdate, err)
		return
	}

	var req updateSavingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeServiceError(w, r, log.ComponentGoal, log.OpUpdate, err)
		return
	}

	if err := s.services.Goals.UpdateSaving(r.Context(), id, req.Amount, req.Description); err != nil {
		s.writeServiceError(w, r, log.ComponentGoal, log.OpUpdate, err)
		return
	}
	s.mutated()
	NoContent().Write(w)
}

func (s *Server) handleDeleteSaving(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "saving")
	if err == nil {
		err = s.services.Goals.DeleteSaving(r.Context(), id)
	}
	if err != nil {
		s.writeServiceError(w, r, log.ComponentGoal, log.OpDelete, err)
		return
	}
	s.mutated()
	NoContent().Write(w)
}

func (s *Server) handleGetSummary(w http.ResponseWriter, r *http.Request) {
	p, err := ParseMonthParams(r.URL.Query())
	if err != nil {
		s.writeServiceError(w, r, log.ComponentSummary, log.OpRead, err)
		return
	}

	summary, err := s.services.Summaries.GetMonthly(r.Context(), p.Year, p.Month)
	if err != nil {
		s.writeServiceError(w, r, log.ComponentSummary, log.OpRead, err)
		return
	}
	OK(toSummaryDTO(summary)).Write(w)
}
