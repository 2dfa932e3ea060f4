package http

import (
	"net/http"

	"bilancio/internal/log"
)

// handleListTransactions filters by period only when both year and month
// are given; otherwise every transaction is returned.
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	year, month, err := ParseOptionalMonthParams(r.URL.Query())
	if err != nil {
		s.writeServiceError(w, r, log.ComponentTransaction, log.OpList, err)
		return
	}

	views, err := s.services.Transactions.List(r.Context(), year, month)
	if err != nil {
		s.writeServiceError(w, r, log.ComponentTransaction, log.OpList, err)
		return
	}
	OK(toTransactionDTOs(views)).Write(w)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeServiceError(w, r, log.ComponentTransaction, log.OpCreate, err)
		return
	}

	id, err := s.services.Transactions.Create(r.Context(), req.input())
	if err != nil {
		s.writeServiceError(w, r, log.ComponentTransaction, log.OpCreate, err)
		return
	}
	s.mutated()
	Created(location("/api/transactions/%s", id), id).Write(w)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "transaction")
	if err != nil {
		s.writeServiceError(w, r, log.ComponentTransaction, log.OpUpdate, err)
		return
	}

	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeServiceError(w, r, log.ComponentTransaction, log.OpUpdate, err)
		return
	}

	if err := s.services.Transactions.Update(r.Context(), id, req.input()); err != nil {
		s.writeServiceError(w, r, log.ComponentTransaction, log.OpUpdate, err)
		return
	}
	s.mutated()
	NoContent().Write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "transaction")
	if err == nil {
		err = s.services.Transactions.Delete(r.Context(), id)
	}
	if err != nil {
		s.writeServiceError(w, r, log.ComponentTransaction, log.OpDelete, err)
		return
	}
	s.mutated()
	NoContent().Write(w)
}
