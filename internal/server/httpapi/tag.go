package httpapi

import (
	"encoding/json"
	"net/http"

	"stashbox/internal/server/models"
)

type createTagRequest struct {
	Name string `json:"name"`
}

func (s *Server) createTag(w http.ResponseWriter, r *http.Request) {
	var req createTagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeBadRequest(w, r, "invalid request body")
		return
	}

	t, err := s.tags.Create(r.Context(), req.Name)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusCreated, t)
}

func (s *Server) listTags(w http.ResponseWriter, r *http.Request) {
	result, err := s.tags.List(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if result == nil {
		result = []*models.Tag{}
	}
	s.writeJSON(w, r, http.StatusOK, result)
}

func (s *Server) deleteTag(w http.ResponseWriter, r *http.Request) {
	if err := s.tags.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
