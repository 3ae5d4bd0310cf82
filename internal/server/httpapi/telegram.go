package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"stashbox/internal/server/models"
	"stashbox/internal/server/services"
	"stashbox/internal/textx"
)

type telegramUpdate struct {
	Message       *telegramMessage `json:"message"`
	EditedMessage *telegramMessage `json:"edited_message"`
}

type telegramMessage struct {
	Text    string       `json:"text"`
	Caption string       `json:"caption"`
	Chat    telegramChat `json:"chat"`
}

type telegramChat struct {
	ID int64 `json:"id"`
}

type acceptedResponse struct {
	Status  string `json:"status"`
	EntryID string `json:"entry_id"`
}

// telegramUpdate captures a Telegram bot update as a note entry. The
// webhook shares the entry create path with the primary API; only the
// authentication and payload shape differ.
func (s *Server) telegramUpdate(w http.ResponseWriter, r *http.Request) {
	if s.telegramSecret != "" &&
		r.Header.Get("X-Telegram-Bot-Api-Secret-Token") != s.telegramSecret {
		s.writeJSON(w, r, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
		return
	}

	var update telegramUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		s.writeBadRequest(w, r, "invalid request body")
		return
	}

	msg := update.Message
	if msg == nil {
		msg = update.EditedMessage
	}
	if msg == nil {
		s.writeBadRequest(w, r, "telegram update does not contain a message payload")
		return
	}

	text := msg.Text
	if text == "" {
		text = msg.Caption
	}
	if text == "" {
		s.writeBadRequest(w, r, "telegram message does not contain text")
		return
	}

	p := services.CreateEntryParams{
		Title:  textx.SummarizeTitle(text),
		Kind:   "note",
		Status: models.StatusPlanned,
		Notes:  text,
		Source: fmt.Sprintf("telegram:%d", msg.Chat.ID),
	}
	if url := textx.ExtractURL(text); url != "" {
		p.URL = &url
	}

	entry, err := s.entries.Create(r.Context(), p)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusAccepted, acceptedResponse{Status: "accepted", EntryID: entry.ID})
}
