package httpapi

import (
	"net/http"
	"strings"
)

// requireAPIKey guards a handler with the configured static API key,
// accepted either as "Authorization: Bearer <key>" or "X-Api-Key: <key>".
// With no key configured the check is disabled.
func (s *Server) requireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey == "" {
			next.ServeHTTP(w, r)
			return
		}

		provided, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok {
			provided = r.Header.Get("X-Api-Key")
		}

		if provided != s.apiKey {
			s.writeJSON(w, r, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
