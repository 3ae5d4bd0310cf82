package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"stashbox/internal/server/models"
	"stashbox/internal/server/repositories/entries"
	"stashbox/internal/server/services"
	"stashbox/internal/textx"
)

type createEntryRequest struct {
	Title  string   `json:"title"`
	Kind   string   `json:"kind"`
	Status string   `json:"status"`
	Notes  string   `json:"notes"`
	URL    *string  `json:"url"`
	Source string   `json:"source"`
	Tags   []string `json:"tags"`
}

func (s *Server) createEntry(w http.ResponseWriter, r *http.Request) {
	var req createEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeBadRequest(w, r, "invalid request body")
		return
	}

	entry, err := s.entries.Create(r.Context(), services.CreateEntryParams{
		Title:  req.Title,
		Kind:   req.Kind,
		Status: req.Status,
		Notes:  req.Notes,
		URL:    req.URL,
		Source: req.Source,
		Tags:   req.Tags,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusCreated, entry)
}

func (s *Server) listEntries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := entries.Filter{
		Kind:   q.Get("kind"),
		Status: q.Get("status"),
		Tag:    q.Get("tag"),
		Search: q.Get("search"),
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			s.writeBadRequest(w, r, "invalid limit")
			return
		}
		f.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			s.writeBadRequest(w, r, "invalid offset")
			return
		}
		f.Offset = n
	}

	result, err := s.entries.List(r.Context(), f)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if result == nil {
		result = []*models.Entry{}
	}
	s.writeJSON(w, r, http.StatusOK, result)
}

func (s *Server) getEntry(w http.ResponseWriter, r *http.Request) {
	entry, err := s.entries.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, entry)
}

type updateEntryRequest struct {
	Title  *string  `json:"title"`
	Kind   *string  `json:"kind"`
	Status *string  `json:"status"`
	Notes  *string  `json:"notes"`
	URL    *string  `json:"url"`
	Source *string  `json:"source"`
	Tags   []string `json:"tags"`
}

func (s *Server) updateEntry(w http.ResponseWriter, r *http.Request) {
	var req updateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeBadRequest(w, r, "invalid request body")
		return
	}

	entry, err := s.entries.Update(r.Context(), r.PathValue("id"), &models.EntryPatch{
		Title:  req.Title,
		Kind:   req.Kind,
		Status: req.Status,
		Notes:  req.Notes,
		URL:    req.URL,
		Source: req.Source,
		Tags:   req.Tags,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, entry)
}

func (s *Server) deleteEntry(w http.ResponseWriter, r *http.Request) {
	if err := s.entries.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type quickCaptureRequest struct {
	Text   string   `json:"text"`
	Title  *string  `json:"title"`
	Kind   string   `json:"kind"`
	Status string   `json:"status"`
	Source string   `json:"source"`
	Tags   []string `json:"tags"`
	URL    *string  `json:"url"`
}

// quickCapture files free text as an entry with capture defaults: the title
// is the first line unless given, the URL is pulled from the text, and the
// kind falls back to "note".
func (s *Server) quickCapture(w http.ResponseWriter, r *http.Request) {
	var req quickCaptureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeBadRequest(w, r, "invalid request body")
		return
	}

	p := services.CreateEntryParams{
		Kind:   req.Kind,
		Status: req.Status,
		Notes:  req.Text,
		URL:    req.URL,
		Source: req.Source,
		Tags:   req.Tags,
	}
	if p.Kind == "" {
		p.Kind = "note"
	}
	if p.Source == "" {
		p.Source = "quick-capture"
	}
	if req.Title != nil {
		p.Title = *req.Title
	} else {
		p.Title = textx.SummarizeTitle(req.Text)
	}
	if p.URL == nil {
		if url := textx.ExtractURL(req.Text); url != "" {
			p.URL = &url
		}
	}

	entry, err := s.entries.Create(r.Context(), p)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusCreated, entry)
}
