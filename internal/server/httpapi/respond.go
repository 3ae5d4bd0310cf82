package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"stashbox/internal/common"
)

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error(r.Context(), "failed to encode response", "error", err)
	}
}

// writeServiceError maps the core error taxonomy onto HTTP statuses.
// Validation details are caller-visible; storage failures are not.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrorValidation):
		s.writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, common.ErrorNotFound):
		s.writeJSON(w, r, http.StatusNotFound, errorResponse{Error: "resource not found"})
	case errors.Is(err, common.ErrorAlreadyExists):
		s.writeJSON(w, r, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, common.ErrorUnauthorized):
		s.writeJSON(w, r, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
	default:
		s.logger.Error(r.Context(), "internal failure", "error", err)
		s.writeJSON(w, r, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

func (s *Server) writeBadRequest(w http.ResponseWriter, r *http.Request, msg string) {
	s.writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: msg})
}
