package http

import (
	"net/http"

	"bilancio/internal/log"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.services.Categories.List(r.Context())
	if err != nil {
		s.writeServiceError(w, r, log.ComponentCategory, log.OpList, err)
		return
	}
	OK(toCategoryDTOs(cats)).Write(w)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeServiceError(w, r, log.ComponentCategory, log.OpCreate, err)
		return
	}

	id, err := s.services.Categories.Create(r.Context(), req.Name, req.Type)
	if err != nil {
		s.writeServiceError(w, r, log.ComponentCategory, log.OpCreate, err)
		return
	}
	s.mutated()
	Created(location("/api/categories/%s", id), id).Write(w)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "category")
	if err == nil {
		err = s.services.Categories.Delete(r.Context(), id)
	}
	if err != nil {
		s.writeServiceError(w, r, log.ComponentCategory, log.OpDelete, err)
		return
	}
	s.mutated()
	NoContent().Write(w)
}
