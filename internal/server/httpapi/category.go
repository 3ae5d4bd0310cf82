package httpapi

import (
	"encoding/json"
	"net/http"

	"stashbox/internal/server/models"
)

type createCategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *Server) createCategory(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeBadRequest(w, r, "invalid request body")
		return
	}

	c, err := s.categories.Create(r.Context(), req.Name, req.Description)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusCreated, c)
}

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	result, err := s.categories.List(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if result == nil {
		result = []*models.Category{}
	}
	s.writeJSON(w, r, http.StatusOK, result)
}

type updateCategoryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func (s *Server) updateCategory(w http.ResponseWriter, r *http.Request) {
	var req updateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeBadRequest(w, r, "invalid request body")
		return
	}

	c, err := s.categories.Update(r.Context(), r.PathValue("id"), req.Name, req.Description)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, c)
}

func (s *Server) deleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.categories.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
