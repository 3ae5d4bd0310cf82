package httpapi

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stashbox/internal/logging"
	"stashbox/internal/server/models"
	"stashbox/internal/server/repositories/repomanager"
	"stashbox/internal/server/services"

	_ "modernc.org/sqlite"
)

func newTestServer(t *testing.T, apiKey, telegramSecret string) *Server {
	t.Helper()
	db, err := sql.Open("sqlite", "file::memory:?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	rm := repomanager.NewSQLiteRepositoryManager()
	require.NoError(t, rm.RunMigrations(context.Background(), db))

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	return NewServer("127.0.0.1:0", logger,
		services.NewEntryService(db, rm),
		services.NewCategoryService(db, rm),
		services.NewTagService(db, rm),
		rm.Engine(), apiKey, telegramSecret)
}

func doJSON(t *testing.T, h http.Handler, method, target, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeEntry(t *testing.T, body *bytes.Buffer) models.Entry {
	t.Helper()
	var e models.Entry
	require.NoError(t, json.Unmarshal(body.Bytes(), &e))
	return e
}

func TestHealth(t *testing.T) {
	h := newTestServer(t, "", "").routes()

	rr := doJSON(t, h, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok","database":"sqlite"}`, rr.Body.String())
}

func TestAPIKeyMiddleware(t *testing.T) {
	h := newTestServer(t, "secret", "").routes()

	t.Run("missing key", func(t *testing.T) {
		rr := doJSON(t, h, http.MethodGet, "/api/v1/entries", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("wrong key", func(t *testing.T) {
		rr := doJSON(t, h, http.MethodGet, "/api/v1/entries", "",
			map[string]string{"Authorization": "Bearer nope"})
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("bearer", func(t *testing.T) {
		rr := doJSON(t, h, http.MethodGet, "/api/v1/entries", "",
			map[string]string{"Authorization": "Bearer secret"})
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("x-api-key", func(t *testing.T) {
		rr := doJSON(t, h, http.MethodGet, "/api/v1/entries", "",
			map[string]string{"X-Api-Key": "secret"})
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("health stays open", func(t *testing.T) {
		rr := doJSON(t, h, http.MethodGet, "/health", "", nil)
		assert.Equal(t, http.StatusOK, rr.Code)
	})
}

func TestAPIKeyMiddleware_DisabledWithoutKey(t *testing.T) {
	h := newTestServer(t, "", "").routes()

	rr := doJSON(t, h, http.MethodGet, "/api/v1/entries", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestEntryLifecycle(t *testing.T) {
	h := newTestServer(t, "", "").routes()

	rr := doJSON(t, h, http.MethodPost, "/api/v1/entries",
		`{"title":"Dune","kind":"book","tags":["sci-fi"]}`, nil)
	require.Equal(t, http.StatusCreated, rr.Code)
	created := decodeEntry(t, rr.Body)
	assert.Equal(t, "Dune", created.Title)
	assert.Equal(t, []string{"sci-fi"}, created.Tags)

	rr = doJSON(t, h, http.MethodGet, "/api/v1/entries/"+created.ID, "", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doJSON(t, h, http.MethodPatch, "/api/v1/entries/"+created.ID,
		`{"status":"completed"}`, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	updated := decodeEntry(t, rr.Body)
	assert.Equal(t, models.StatusCompleted, updated.Status)
	assert.Equal(t, []string{"sci-fi"}, updated.Tags)

	rr = doJSON(t, h, http.MethodGet, "/api/v1/entries?kind=book&tag=sci-fi", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var list []models.Entry
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	require.Len(t, list, 1)

	rr = doJSON(t, h, http.MethodDelete, "/api/v1/entries/"+created.ID, "", nil)
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = doJSON(t, h, http.MethodGet, "/api/v1/entries/"+created.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"error":"resource not found"}`, rr.Body.String())
}

func TestEntryErrors(t *testing.T) {
	h := newTestServer(t, "", "").routes()

	t.Run("invalid body", func(t *testing.T) {
		rr := doJSON(t, h, http.MethodPost, "/api/v1/entries", `{not json`, nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("unknown kind", func(t *testing.T) {
		rr := doJSON(t, h, http.MethodPost, "/api/v1/entries",
			`{"title":"Dune","kind":"comic"}`, nil)
		require.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), `invalid kind \"comic\"`)
	})

	t.Run("invalid limit", func(t *testing.T) {
		rr := doJSON(t, h, http.MethodGet, "/api/v1/entries?limit=abc", "", nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("empty list is a json array", func(t *testing.T) {
		rr := doJSON(t, h, http.MethodGet, "/api/v1/entries", "", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `[]`, rr.Body.String())
	})
}

func TestCategoryEndpoints(t *testing.T) {
	h := newTestServer(t, "", "").routes()

	rr := doJSON(t, h, http.MethodPost, "/api/v1/categories",
		`{"name":"podcast","description":"Podcast episodes"}`, nil)
	require.Equal(t, http.StatusCreated, rr.Code)
	var c models.Category
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &c))

	rr = doJSON(t, h, http.MethodPost, "/api/v1/categories", `{"name":"podcast"}`, nil)
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = doJSON(t, h, http.MethodPatch, "/api/v1/categories/"+c.ID,
		`{"description":"updated"}`, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doJSON(t, h, http.MethodDelete, "/api/v1/categories/"+c.ID, "", nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestTagEndpoints(t *testing.T) {
	h := newTestServer(t, "", "").routes()

	rr := doJSON(t, h, http.MethodPost, "/api/v1/tags", `{"name":"sci-fi"}`, nil)
	require.Equal(t, http.StatusCreated, rr.Code)
	var tag models.Tag
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &tag))

	rr = doJSON(t, h, http.MethodGet, "/api/v1/tags", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doJSON(t, h, http.MethodDelete, "/api/v1/tags/"+tag.ID, "", nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = doJSON(t, h, http.MethodDelete, "/api/v1/tags/"+tag.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestQuickCapture(t *testing.T) {
	h := newTestServer(t, "", "").routes()

	rr := doJSON(t, h, http.MethodPost, "/api/v1/quick-capture",
		`{"text":"Read the borrow checker post\nhttps://example.com/post later"}`, nil)
	require.Equal(t, http.StatusCreated, rr.Code)

	e := decodeEntry(t, rr.Body)
	assert.Equal(t, "Read the borrow checker post", e.Title)
	assert.Equal(t, "note", e.Kind)
	assert.Equal(t, "quick-capture", e.Source)
	require.NotNil(t, e.URL)
	assert.Equal(t, "https://example.com/post", *e.URL)
}

func TestQuickCapture_ExplicitFieldsWin(t *testing.T) {
	h := newTestServer(t, "", "").routes()

	rr := doJSON(t, h, http.MethodPost, "/api/v1/quick-capture",
		`{"text":"some text","title":"My Title","kind":"link","source":"cli","tags":["later"]}`, nil)
	require.Equal(t, http.StatusCreated, rr.Code)

	e := decodeEntry(t, rr.Body)
	assert.Equal(t, "My Title", e.Title)
	assert.Equal(t, "link", e.Kind)
	assert.Equal(t, "cli", e.Source)
	assert.Equal(t, []string{"later"}, e.Tags)
}

func TestTelegramWebhook(t *testing.T) {
	h := newTestServer(t, "api-key", "hook-secret").routes()

	update := `{"message":{"text":"Watch Dune part two https://example.com/dune","chat":{"id":42}}}`

	t.Run("wrong secret", func(t *testing.T) {
		rr := doJSON(t, h, http.MethodPost, "/api/v1/integrations/telegram/update", update,
			map[string]string{"X-Telegram-Bot-Api-Secret-Token": "nope"})
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("accepted", func(t *testing.T) {
		rr := doJSON(t, h, http.MethodPost, "/api/v1/integrations/telegram/update", update,
			map[string]string{"X-Telegram-Bot-Api-Secret-Token": "hook-secret"})
		require.Equal(t, http.StatusAccepted, rr.Code)

		var resp acceptedResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "accepted", resp.Status)
		require.NotEmpty(t, resp.EntryID)

		// The API key, not the webhook secret, guards the read path.
		get := doJSON(t, h, http.MethodGet, "/api/v1/entries/"+resp.EntryID, "",
			map[string]string{"X-Api-Key": "api-key"})
		require.Equal(t, http.StatusOK, get.Code)
		e := decodeEntry(t, get.Body)
		assert.Equal(t, "Watch Dune part two https://example.com/dune", e.Title)
		assert.Equal(t, "note", e.Kind)
		assert.Equal(t, "telegram:42", e.Source)
		require.NotNil(t, e.URL)
		assert.Equal(t, "https://example.com/dune", *e.URL)
	})

	t.Run("caption fallback", func(t *testing.T) {
		rr := doJSON(t, h, http.MethodPost, "/api/v1/integrations/telegram/update",
			`{"message":{"caption":"photo caption","chat":{"id":7}}}`,
			map[string]string{"X-Telegram-Bot-Api-Secret-Token": "hook-secret"})
		assert.Equal(t, http.StatusAccepted, rr.Code)
	})

	t.Run("no message", func(t *testing.T) {
		rr := doJSON(t, h, http.MethodPost, "/api/v1/integrations/telegram/update",
			`{}`, map[string]string{"X-Telegram-Bot-Api-Secret-Token": "hook-secret"})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
